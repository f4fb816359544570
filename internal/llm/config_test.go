package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"mock", Config{Provider: ProviderMock}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k"}}, false},
		{"unknown", Config{Provider: "watson"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(envMap(map[string]string{
		"FOAMTUTOR_LLM_PROVIDER":    "openai",
		"FOAMTUTOR_OPENAI_API_KEY":  "sk-1",
		"FOAMTUTOR_OPENAI_BASE_URL": "http://localhost:1234/v1",
	}))
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-1", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model, "unset variables keep defaults")
	assert.Equal(t, "http://localhost:1234/v1", cfg.OpenAI.BaseURL)
}

func TestConfig_Discover(t *testing.T) {
	cfg := DefaultConfig()
	ok := cfg.Discover(envMap(map[string]string{"ANTHROPIC_API_KEY": "a", "OPENAI_API_KEY": "o"}))
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, cfg.Provider, "OpenAI outranks Anthropic")
	assert.Equal(t, "o", cfg.OpenAI.APIKey)

	cfg = DefaultConfig()
	cfg.Provider = ProviderMock
	assert.False(t, cfg.Discover(envMap(map[string]string{"GEMINI_API_KEY": "g"})), "explicit provider wins")

	cfg = DefaultConfig()
	assert.False(t, cfg.Discover(envMap(nil)))
	assert.False(t, cfg.Enabled())
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), DefaultConfig(), zap.NewNop())
	assert.True(t, errors.Is(err, ErrDisabled))

	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	cfg.Provider = ProviderAnthropic
	cfg.Anthropic.APIKey = "k"
	p, err = New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	cfg.Anthropic.APIKey = ""
	_, err = New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
