package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizPayload = `{"quiz":[{"question":"What is 1/2 of 8?","options":["4","2","6"],"correctAnswer":"4","explanation":"8 / 2 = 4"}]}`

func quizRequest() Request {
	return Request{
		System:    "You write quiz questions for children.",
		Messages:  UserMessage("Write one fractions question."),
		MaxTokens: 512,
	}
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  "gpt-4o-mini",
		name:   "openai",
	}
}

func errorHandler(status int, body map[string]any, header map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for k, v := range header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": quizPayload},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	})

	resp, err := p.Generate(context.Background(), quizRequest())
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Usage.InputTokens)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.JSONEq(t, quizPayload, string(resp.Content))
	assert.Equal(t, "anthropic", p.Name())
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limit with retry-after",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "7"},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				require.True(t, errors.As(err, &rl), "got %T", err)
				assert.Equal(t, "7s", rl.RetryAfter.String())
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				assert.True(t, errors.As(err, &unavail), "got %T", err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, errorHandler(tt.status, map[string]any{
				"type":  "error",
				"error": map[string]any{"type": "api_error", "message": "nope"},
			}, tt.header))
			_, err := p.Generate(context.Background(), quizRequest())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": quizPayload},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	})

	resp, err := p.Generate(context.Background(), quizRequest())
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 25, resp.Usage.OutputTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAIProvider_SchemaViolationIsInvalidResponse(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "x", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `{"quiz":"nope"}`},
				"finish_reason": "stop",
			}},
		})
	})

	req := quizRequest()
	req.Schema = &Schema{
		Name: "test-quiz-envelope",
		Definition: map[string]any{
			"type":       "object",
			"properties": map[string]any{"quiz": map[string]any{"type": "array"}},
			"required":   []any{"quiz"},
		},
	}
	_, err := p.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	require.True(t, errors.As(err, &inv), "got %T", err)
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	rl := newTestOpenAIProvider(t, errorHandler(http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"type": "tokens", "message": "Rate limit exceeded", "code": "rate_limit_exceeded"},
	}, nil))
	_, err := rl.Generate(context.Background(), quizRequest())
	var rateErr *ErrRateLimit
	assert.True(t, errors.As(err, &rateErr), "got %T", err)

	down := newTestOpenAIProvider(t, errorHandler(http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"type": "server_error", "message": "Internal server error"},
	}, nil))
	_, err = down.Generate(context.Background(), quizRequest())
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "got %T", err)
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"})
	require.Error(t, err)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"})
	require.NoError(t, err)
	assert.Equal(t, "openrouter", p.Name())
	assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID(), "model IDs pass through unmapped")
}

func TestModelMapping(t *testing.T) {
	tests := []struct {
		models map[string]string
		input  string
		want   string
	}{
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{anthropicModels, "claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
		{geminiModels, "gemini-flash", "gemini-2.5-flash"},
		{geminiModels, "gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveModel(tt.input, tt.models), tt.input)
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(quizSchemaDefinition())

	require.Equal(t, "OBJECT", string(schema.Type))
	quiz := schema.Properties["quiz"]
	require.NotNil(t, quiz)
	assert.Equal(t, "ARRAY", string(quiz.Type))
	item := quiz.Items
	require.NotNil(t, item)
	assert.Equal(t, "STRING", string(item.Properties["question"].Type))
	assert.Equal(t, "ARRAY", string(item.Properties["options"].Type))
	assert.Equal(t, "STRING", string(item.Properties["options"].Items.Type))
	assert.ElementsMatch(t, []string{"question", "options", "correctAnswer", "explanation"}, item.Required)
	assert.Len(t, item.Properties["difficulty"].Enum, 3)
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("claude-haiku")
	require.NotNil(t, c, "friendly names resolve")
	assert.InDelta(t, 6.0, c.Cost(1_000_000, 1_000_000), 1e-9)

	_, ok := EstimateCost("some/unpriced-model", 10, 10)
	assert.False(t, ok)
}

func openAIChoiceHandler(content, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "x", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	}
}

func TestOpenAIProvider_FencedJSONAccepted(t *testing.T) {
	p := newTestOpenAIProvider(t, openAIChoiceHandler("```json\n"+quizPayload+"\n```", "stop"))
	req := quizRequest()
	req.Schema = &Schema{Name: "fenced-quiz", Definition: map[string]any{
		"type":     "object",
		"required": []any{"quiz"},
		"properties": map[string]any{
			"quiz": map[string]any{"type": "array"},
		},
	}}

	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, quizPayload, string(resp.Content))
}

func TestOpenAIProvider_ContentFilterIsBlocked(t *testing.T) {
	p := newTestOpenAIProvider(t, openAIChoiceHandler("", "content_filter"))

	_, err := p.Generate(context.Background(), quizRequest())
	var blocked *ErrContentBlocked
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "openai", blocked.Provider)
}

func TestOpenAIProvider_LengthIsMaxTokens(t *testing.T) {
	p := newTestOpenAIProvider(t, openAIChoiceHandler(`{"quiz":[{"question":"Wha`, "length"))

	_, err := p.Generate(context.Background(), quizRequest())
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
}

func TestAnthropicProvider_RefusalIsBlocked(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "refusal",
			"usage":       map[string]any{"input_tokens": 5, "output_tokens": 0},
		})
	})

	_, err := p.Generate(context.Background(), quizRequest())
	var blocked *ErrContentBlocked
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "anthropic", blocked.Provider)
}

func TestOpenAIProvider_EnvelopeReplacesDefinitionForChecks(t *testing.T) {
	const batch = `{"quiz":[` +
		`{"question":"What is 2 + 2?","options":["4","3","5"],"correctAnswer":"4","explanation":"Add them."},` +
		`{"question":"What is 3 + 3?","options":["6","5","7","8","9","10","11"],"correctAnswer":"6"}]}`
	strict := map[string]any{
		"type":     "object",
		"required": []any{"quiz"},
		"properties": map[string]any{
			"quiz": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"question", "options", "correctAnswer", "explanation"},
					"properties": map[string]any{
						"options": map[string]any{"type": "array", "maxItems": 6},
					},
				},
			},
		},
	}

	p := newTestOpenAIProvider(t, openAIChoiceHandler(batch, "stop"))
	req := quizRequest()
	req.Schema = &Schema{Name: "strict-quiz", Definition: strict}
	if _, err := p.Generate(context.Background(), req); err == nil {
		t.Fatal("strict definition accepted a batch with a bad item")
	}

	req.Schema = &Schema{
		Name:       "enveloped-quiz",
		Definition: strict,
		Envelope: map[string]any{
			"type":       "object",
			"required":   []any{"quiz"},
			"properties": map[string]any{"quiz": map[string]any{"type": "array"}},
		},
	}
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() with envelope: %v", err)
	}
	var out struct {
		Quiz []json.RawMessage `json:"quiz"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil || len(out.Quiz) != 2 {
		t.Errorf("content = %s, want both items", resp.Content)
	}
}
