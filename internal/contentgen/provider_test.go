package contentgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/abhisek/quizengine/internal/llm"
)

// chatCompletion serves payload as the single choice of an OpenAI chat
// completion.
func chatCompletion(t *testing.T, payload any) http.HandlerFunc {
	t.Helper()
	content, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": string(content)},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 900, "total_tokens": 1020},
		})
	}
}

func additionItems(n int) []any {
	items := make([]any, n)
	for i := range items {
		answer := strconv.Itoa(i + 1)
		items[i] = item(fmt.Sprintf("What is %d + 1?", i),
			[]string{answer, strconv.Itoa(i + 2), strconv.Itoa(i + 3)}, answer)
	}
	return items
}

func TestGenerateQuiz_OpenAIBatchKeepsGoodItems(t *testing.T) {
	tests := []struct {
		name    string
		bad     map[string]any
		wantWhy string
	}{
		{
			name:    "seven options",
			bad:     item("Which is a primary colour?", []string{"Red", "Pink", "Grey", "Brown", "Teal", "Lime", "Navy"}, "Red"),
			wantWhy: "has 7 options",
		},
		{
			name: "missing explanation",
			bad: map[string]any{
				"question":      "Which is a primary colour?",
				"options":       []string{"Red", "Pink", "Grey"},
				"correctAnswer": "Red",
			},
			wantWhy: "explanation is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := append(additionItems(9), tt.bad)
			server := httptest.NewServer(chatCompletion(t, map[string]any{"quiz": items}))
			t.Cleanup(server.Close)

			provider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
				APIKey:  "test-key",
				Model:   "gpt-4o-mini",
				BaseURL: server.URL + "/v1",
			})
			if err != nil {
				t.Fatalf("NewOpenAIProvider() error: %v", err)
			}
			c := New(provider, nil, nil, DefaultConfig())

			outcomes, err := c.GenerateQuiz(context.Background(), fractionsRequest())
			if err != nil {
				t.Fatalf("GenerateQuiz() error: %v", err)
			}
			if len(outcomes) != 10 {
				t.Fatalf("got %d outcomes, want 10", len(outcomes))
			}
			if got := len(Accepted(outcomes)); got != 9 {
				t.Errorf("accepted %d questions, want 9", got)
			}
			last := outcomes[9]
			if last.Valid() {
				t.Fatal("bad item was accepted")
			}
			if why := strings.Join(last.Reasons, "; "); !strings.Contains(why, tt.wantWhy) {
				t.Errorf("reasons %q do not mention %q", why, tt.wantWhy)
			}
		})
	}
}

func TestQuizSchema_EnvelopeStillRequiresQuizArray(t *testing.T) {
	for _, raw := range []string{`{"quiz": "nope"}`, `{"questions": []}`} {
		if err := llm.ValidateResponse(QuizSchema, json.RawMessage(raw)); err == nil {
			t.Errorf("ValidateResponse(%s) = nil, want error", raw)
		}
	}
	if err := llm.ValidateResponse(QuizSchema, json.RawMessage(`{"quiz": [{"question": 42}]}`)); err != nil {
		t.Errorf("item-level problem rejected the whole response: %v", err)
	}
}
