package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	From    time.Time // timestamp >= From
	Purpose string    // LLM events only; empty matches all
	Kind    string    // validation events only; empty matches all
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a purpose or a model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ValidationEventData summarizes one validation pass over generated content.
type ValidationEventData struct {
	Kind       string // "quiz", "lesson", "topics"
	Subject    string
	Topic      string
	Accepted   int
	Rejected   int
	WasBlocked bool
	Issues     []string
}

// ValidationEventRecord is a stored validation event.
type ValidationEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	ValidationEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendValidationEvent records the outcome of a content validation pass.
	AppendValidationEvent(ctx context.Context, data ValidationEventData) error

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns the event with the given ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	QueryValidationEvents(ctx context.Context, opts QueryOpts) ([]ValidationEventRecord, error)
}
