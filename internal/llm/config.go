package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone       = ""
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the model provider. An empty Provider
// disables model calls; narration then falls back to static text.
type Config struct {
	Provider   string           `yaml:"provider"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds one call including retries.
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// DefaultConfig has no provider selected and the stock models and retry
// policy filled in.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// ApplyEnv overlays FOAMTUTOR_LLM_PROVIDER and the per-provider
// FOAMTUTOR_<PROVIDER>_API_KEY / _MODEL variables. getenv is os.Getenv in
// production.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, "FOAMTUTOR_LLM_PROVIDER")
	set(&c.Anthropic.APIKey, "FOAMTUTOR_ANTHROPIC_API_KEY")
	set(&c.Anthropic.Model, "FOAMTUTOR_ANTHROPIC_MODEL")
	set(&c.OpenAI.APIKey, "FOAMTUTOR_OPENAI_API_KEY")
	set(&c.OpenAI.Model, "FOAMTUTOR_OPENAI_MODEL")
	set(&c.OpenAI.BaseURL, "FOAMTUTOR_OPENAI_BASE_URL")
	set(&c.Gemini.APIKey, "FOAMTUTOR_GEMINI_API_KEY")
	set(&c.Gemini.Model, "FOAMTUTOR_GEMINI_MODEL")
	set(&c.OpenRouter.APIKey, "FOAMTUTOR_OPENROUTER_API_KEY")
	set(&c.OpenRouter.Model, "FOAMTUTOR_OPENROUTER_MODEL")
}

// Discover picks a provider from the vendors' own key variables when none
// is configured, in the order Gemini, OpenAI, Anthropic, OpenRouter. It
// reports whether a provider was chosen.
func (c *Config) Discover(getenv func(string) string) bool {
	if c.Provider != ProviderNone {
		return false
	}
	candidates := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &c.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &c.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &c.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &c.OpenRouter.APIKey},
	}
	for _, cand := range candidates {
		if k := getenv(cand.env); k != "" {
			c.Provider = cand.provider
			*cand.key = k
			return true
		}
	}
	return false
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool { return c.Provider != ProviderNone }

// Validate checks that the selected provider has a key.
func (c Config) Validate() error {
	missing := func(name string) error {
		return fmt.Errorf("llm: %s provider needs an API key (FOAMTUTOR_%s_API_KEY)", name, strings.ToUpper(name))
	}
	switch c.Provider {
	case ProviderNone, ProviderMock:
		return nil
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return missing(c.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return missing(c.Provider)
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return missing(c.Provider)
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return missing(c.Provider)
		}
	default:
		return fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("llm: negative timeout %s", c.Timeout)
	}
	return nil
}
