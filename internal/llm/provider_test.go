package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var explanationSchema = &Schema{
	Name: "test-explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string"},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 8},
	}
}

func testAnthropic(t *testing.T, h http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestAnthropic_Structured(t *testing.T) {
	p := testAnthropic(t, jsonHandler(http.StatusOK,
		anthropicMessage(`{"explanation":"Re compares inertia with viscosity."}`, "end_turn")))

	resp, err := p.Generate(context.Background(), Prompt("tutor", "explain Re", explanationSchema, 200))
	require.NoError(t, err)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, 20, resp.Usage.TotalTokens)

	var out struct{ Explanation string }
	require.NoError(t, resp.Decode(&out))
	assert.Contains(t, out.Explanation, "inertia")
}

func TestAnthropic_SchemaViolation(t *testing.T) {
	p := testAnthropic(t, jsonHandler(http.StatusOK, anthropicMessage(`{"text":"wrong key"}`, "end_turn")))

	_, err := p.Generate(context.Background(), Prompt("", "explain", explanationSchema, 200))
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestAnthropic_Truncated(t *testing.T) {
	p := testAnthropic(t, jsonHandler(http.StatusOK, anthropicMessage(`{"explanation":"Re com`, "max_tokens")))

	_, err := p.Generate(context.Background(), Prompt("", "explain", explanationSchema, 5))
	var trunc *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &trunc)
	assert.False(t, Retryable(err))
}

func TestAnthropic_StatusMapping(t *testing.T) {
	errBody := map[string]any{"type": "error", "error": map[string]any{"type": "x", "message": "nope"}}

	p := testAnthropic(t, jsonHandler(http.StatusTooManyRequests, errBody))
	_, err := p.Generate(context.Background(), Prompt("", "hi", nil, 10))
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	p = testAnthropic(t, jsonHandler(http.StatusBadGateway, errBody))
	_, err = p.Generate(context.Background(), Prompt("", "hi", nil, 10))
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down)
}

func testOpenAI(t *testing.T, h http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 10, "total_tokens": 40},
	}
}

func TestOpenAI_FreeText(t *testing.T) {
	p := testOpenAI(t, jsonHandler(http.StatusOK, chatCompletion("Boundary conditions close the problem.", "stop")))

	resp, err := p.Generate(context.Background(), Prompt("tutor", "explain BCs", nil, 100))
	require.NoError(t, err)
	assert.Equal(t, "Boundary conditions close the problem.", string(resp.Content))
	assert.Equal(t, 40, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
}

func TestOpenAI_NoChoices(t *testing.T) {
	body := chatCompletion("", "stop")
	body["choices"] = []any{}
	p := testOpenAI(t, jsonHandler(http.StatusOK, body))

	_, err := p.Generate(context.Background(), Prompt("", "hi", nil, 10))
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestOpenAI_RateLimit(t *testing.T) {
	p := testOpenAI(t, jsonHandler(http.StatusTooManyRequests,
		map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}}))

	_, err := p.Generate(context.Background(), Prompt("", "hi", nil, 10))
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestOpenRouter_PassesModelThrough(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "anthropic/claude-3-haiku"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID())

	_, err = NewOpenRouterProvider(OpenRouterConfig{Model: "x"})
	assert.Error(t, err)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "my-finetune", resolveModel("my-finetune", openaiModels))
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "description": "prose"},
			"level":       map[string]any{"type": "string", "enum": []any{"beginner", "expert"}},
			"steps":       map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			"odd":         map[string]any{"type": "mystery"},
		},
		"required": []string{"explanation"},
	})

	assert.EqualValues(t, "OBJECT", s.Type)
	assert.Len(t, s.Properties, 4)
	assert.Equal(t, "prose", s.Properties["explanation"].Description)
	assert.Equal(t, []string{"beginner", "expert"}, s.Properties["level"].Enum)
	assert.EqualValues(t, "INTEGER", s.Properties["steps"].Items.Type)
	assert.EqualValues(t, "STRING", s.Properties["odd"].Type)
	assert.Equal(t, []string{"explanation"}, s.Required)
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider(
		MockText(map[string]string{"explanation": "ok"}),
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := m.Generate(context.Background(), Prompt("sys", "one", explanationSchema, 10))
	require.NoError(t, err)
	assert.JSONEq(t, `{"explanation":"ok"}`, string(resp.Content))

	_, err = m.Generate(context.Background(), Prompt("sys", "two", nil, 10))
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = m.Generate(context.Background(), Prompt("sys", "three", nil, 10))
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down)

	calls := m.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "two", calls[1].Messages[0].Content)
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	m := NewMockProvider(MockText(map[string]int{"explanation": 3}))
	_, err := m.Generate(context.Background(), Prompt("", "x", explanationSchema, 10))
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first try", []MockResponse{MockText("a")}, false, 1},
		{"transient then ok", []MockResponse{{Err: &ErrProviderUnavailable{}}, MockText("a")}, false, 2},
		{"exhausted", []MockResponse{{Err: &ErrProviderUnavailable{}}, {Err: &ErrProviderUnavailable{}}, {Err: &ErrProviderUnavailable{}}}, true, 3},
		{"invalid retried once", []MockResponse{{Err: &ErrInvalidResponse{Err: errors.New("x")}}, {Err: &ErrInvalidResponse{Err: errors.New("x")}}, MockText("a")}, true, 2},
		{"truncation not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, MockText("a")}, true, 1},
		{"canceled not retried", []MockResponse{{Err: context.Canceled}, MockText("a")}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMockProvider(tt.script...)
			_, err := WithRetry(m, fastRetry()).Generate(context.Background(), Request{})
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
			assert.Len(t, m.Calls(), tt.wantCalls)
		})
	}
}

func TestRetry_HonorsContext(t *testing.T) {
	m := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}}, MockText("a"))
	cfg := RetryConfig{MaxAttempts: 2, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := WithRetry(m, cfg).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetry_Backoff(t *testing.T) {
	r := &retryProvider{
		cfg:    RetryConfig{MaxAttempts: 5, InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2},
		jitter: func() float64 { return 0 },
	}
	transient := &ErrProviderUnavailable{}
	assert.Equal(t, 100*time.Millisecond, r.wait(0, transient))
	assert.Equal(t, 200*time.Millisecond, r.wait(1, transient))
	assert.Equal(t, 300*time.Millisecond, r.wait(4, transient))
	assert.Equal(t, 7*time.Second, r.wait(0, &ErrRateLimit{RetryAfter: 7 * time.Second}))
}

type blockingProvider struct{}

func (blockingProvider) ModelID() string { return "blocking" }

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeout(t *testing.T) {
	_, err := WithTimeout(blockingProvider{}, 10*time.Millisecond).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var p Provider = blockingProvider{}
	assert.Equal(t, p, WithTimeout(p, 0), "zero timeout leaves the provider unwrapped")
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`"hi"`), Usage: Usage{InputTokens: 3}}, MockResponse{Err: errors.New("boom")})
	p := WithLogging(m, zap.New(core))
	ctx := WithPurpose(context.Background(), "explain")

	_, err := p.Generate(ctx, Request{})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Equal(t, 2, logs.Len())
	ok := logs.FilterMessage("llm request").All()
	require.Len(t, ok, 1)
	assert.Equal(t, "explain", ok[0].ContextMap()["purpose"])
	assert.Equal(t, 1, logs.FilterMessage("llm request failed").Len())
}

func TestPurpose(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "explain", PurposeFrom(WithPurpose(context.Background(), "explain")))
}

func TestPrice(t *testing.T) {
	p, ok := PriceOf("gpt-4o-mini")
	require.True(t, ok)
	assert.InDelta(t, 0.15+0.6, p.Cost(Usage{InputTokens: 1e6, OutputTokens: 1e6}), 1e-9)
	_, ok = PriceOf("unknown-model")
	assert.False(t, ok)
}
