package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for generative content services.
// Callers send a Request and receive JSON that has already been checked
// against the request schema.
type Provider interface {
	// Generate sends a prompt and returns the response. When req.Schema is
	// set the provider uses its native structured output mechanism and the
	// returned Content conforms to the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider name, e.g. "anthropic".
	Name() string

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt: role, tone and safety constraints.
	System string

	// Messages is the conversation. Content generation is single-turn,
	// so this normally holds one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil
	// the response Content is the raw text.
	Schema *Schema

	// MaxTokens caps the response length. Zero means DefaultMaxTokens.
	MaxTokens int

	// Temperature controls randomness in 0.0 - 1.0. Zero leaves the
	// provider default in place.
	Temperature float64
}

// DefaultMaxTokens is used when a Request leaves MaxTokens unset. A full
// quiz of ten questions with explanations fits comfortably.
const DefaultMaxTokens = 4096

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, in kebab-case, e.g. "quiz-questions".
	// Compiled schemas are cached by name.
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any

	// Envelope, when set, replaces Definition when responses are checked.
	// It lets a batch through with some bad items so the caller can drop
	// them one at a time.
	Envelope map[string]any
}

// checked returns the document responses are validated against.
func (s *Schema) checked() map[string]any {
	if s.Envelope != nil {
		return s.Envelope
	}
	return s.Definition
}

// Response holds the model output.
type Response struct {
	// Content is the validated JSON object when a schema was requested,
	// or the raw text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to StopEnd or StopMaxTokens. Blocked
	// responses surface as *ErrContentBlocked instead.
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
