package narrate

// Config holds explanation generation settings.
type Config struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// RecentTurns caps how much conversation history goes into the prompt.
	RecentTurns int `yaml:"recent_turns"`
}

// DefaultConfig returns the stock explanation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.4,
		RecentTurns: 6,
	}
}
