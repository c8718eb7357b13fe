package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"quiz":[]}`, `{"quiz":[]}`},
		{"padded", "\n  {\"quiz\":[]}\n", `{"quiz":[]}`},
		{"fenced with info string", "```json\n{\"quiz\":[]}\n```", `{"quiz":[]}`},
		{"fenced bare", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"fenced single line", "```json {\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(extractJSON(tt.in)); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckStop(t *testing.T) {
	if err := checkStop("openai", StopEnd, "", json.RawMessage(`{}`)); err != nil {
		t.Errorf("checkStop(end) = %v, want nil", err)
	}

	err := checkStop("gemini", StopBlocked, "SAFETY", nil)
	var blocked *ErrContentBlocked
	if !errors.As(err, &blocked) {
		t.Fatalf("checkStop(blocked) = %v, want *ErrContentBlocked", err)
	}
	if blocked.Provider != "gemini" || !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("blocked error = %v", err)
	}

	err = checkStop("anthropic", StopMaxTokens, "", json.RawMessage(`{"quiz":[`))
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("checkStop(max_tokens) = %v, want *ErrMaxTokensExceeded", err)
	}
	if string(maxTok.Content) != `{"quiz":[` {
		t.Errorf("partial content = %s", maxTok.Content)
	}
}

func TestMaxTokensDefault(t *testing.T) {
	if got := maxTokens(Request{}); got != DefaultMaxTokens {
		t.Errorf("maxTokens(zero) = %d, want %d", got, DefaultMaxTokens)
	}
	if got := maxTokens(Request{MaxTokens: 512}); got != 512 {
		t.Errorf("maxTokens(512) = %d", got)
	}
}
