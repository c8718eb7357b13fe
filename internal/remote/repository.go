// Package remote is the client for the shared question repository. The
// repository is eventually consistent: concurrent writers on different
// devices may insert the same question text, and callers must tolerate it.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/quizengine/internal/quiz"
)

// Query selects questions by exact subject, topic, difficulty and age.
type Query struct {
	Subject    string
	Topic      string
	Difficulty quiz.Difficulty
	Age        int
	Limit      int
}

// TextQuery is the pre-write duplicate check: exact subject, topic and
// question text.
type TextQuery struct {
	Subject  string
	Topic    string
	Question string
}

// NewQuestion is a question to add to the repository.
type NewQuestion struct {
	Subject    string
	Topic      string
	Difficulty quiz.Difficulty
	Age        int
	quiz.Question
	CreatedAt time.Time
}

// SourceError describes a failed repository operation. It is carried as a
// value so callers decide whether to continue.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a read.
type Result struct {
	Questions []quiz.Question
	Err       *SourceError
}

// OK reports whether the read succeeded.
func (r Result) OK() bool { return r.Err == nil }

// WriteResult is the outcome of an insert.
type WriteResult struct {
	ID  string
	Err *SourceError
}

// OK reports whether the write succeeded.
func (r WriteResult) OK() bool { return r.Err == nil }

// Repository is the shared question store.
type Repository interface {
	// Query returns up to q.Limit matching questions.
	Query(ctx context.Context, q Query) Result

	// FindByText returns at most one question matching q.
	FindByText(ctx context.Context, q TextQuery) Result

	// Add inserts q and returns its new ID.
	Add(ctx context.Context, q NewQuestion) WriteResult
}

func sourceErr(op string, err error) *SourceError {
	return &SourceError{Op: op, Err: err}
}
