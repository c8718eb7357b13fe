// Package contentgen produces quiz questions, lessons and topic suggestions
// through an llm.Provider. Every response is parsed item by item and
// re-validated; nothing the model returns is trusted as-is.
package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/quizengine/internal/contentcheck"
	"github.com/abhisek/quizengine/internal/llm"
	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/store"
)

// Outcome is the result of validating one generated question: either
// Valid with a usable Question, or rejected with the reasons why.
type Outcome struct {
	Question quiz.Question
	Rejected bool
	Reasons  []string
}

// Valid reports whether the question passed validation.
func (o Outcome) Valid() bool { return !o.Rejected }

// Accepted returns the questions of all valid outcomes, in order.
func Accepted(outcomes []Outcome) []quiz.Question {
	var out []quiz.Question
	for _, o := range outcomes {
		if o.Valid() {
			out = append(out, o.Question)
		}
	}
	return out
}

// RejectedError is returned when a lesson fails validation as a whole.
type RejectedError struct {
	Kind       string
	Issues     []string
	WasBlocked bool
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("generated %s rejected: %s", e.Kind, strings.Join(e.Issues, "; "))
}

// Client generates content through a provider.
type Client struct {
	provider llm.Provider
	events   store.EventRepo
	logger   *slog.Logger
	cfg      Config
}

// New creates a Client. events may be nil, in which case validation
// results are only logged.
func New(provider llm.Provider, events store.EventRepo, logger *slog.Logger, cfg Config) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QuizSize <= 0 {
		cfg.QuizSize = DefaultConfig().QuizSize
	}
	return &Client{provider: provider, events: events, logger: logger, cfg: cfg}
}

type quizOutput struct {
	Quiz []json.RawMessage `json:"quiz"`
}

// GenerateQuiz asks for a quiz for req and validates every returned item.
// An error means the call itself failed or the response had no quiz array;
// invalid items are reported as rejected outcomes.
func (c *Client) GenerateQuiz(ctx context.Context, req quiz.Request) ([]Outcome, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      quizSystemPrompt,
		Messages:    llm.UserMessage(buildQuizMessage(req, c.cfg.QuizSize)),
		Schema:      QuizSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		c.noteBlocked(ctx, "quiz", req.Subject, req.Topic, err)
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	var out quizOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	outcomes := make([]Outcome, len(out.Quiz))
	var (
		parsed  []quiz.Question
		indexes []int
	)
	for i, raw := range out.Quiz {
		q, err := parseQuestion(raw)
		if err != nil {
			outcomes[i] = Outcome{Rejected: true, Reasons: []string{fmt.Sprintf("question %d: %v", i+1, err)}}
			continue
		}
		parsed = append(parsed, q)
		indexes = append(indexes, i)
	}

	report := contentcheck.ValidateQuiz(parsed)
	rejected := make(map[int]contentcheck.Rejection, len(report.Rejected))
	for _, r := range report.Rejected {
		rejected[r.Index] = r
	}
	for j, q := range parsed {
		i := indexes[j]
		if r, ok := rejected[j]; ok {
			outcomes[i] = Outcome{Question: q, Rejected: true, Reasons: r.Report.Issues}
			continue
		}
		outcomes[i] = Outcome{Question: q}
	}

	var issues []string
	accepted := 0
	for _, o := range outcomes {
		if o.Valid() {
			accepted++
			continue
		}
		issues = append(issues, o.Reasons...)
	}
	c.recordValidation(ctx, store.ValidationEventData{
		Kind:       "quiz",
		Subject:    req.Subject,
		Topic:      req.Topic,
		Accepted:   accepted,
		Rejected:   len(outcomes) - accepted,
		WasBlocked: report.WasBlocked,
		Issues:     issues,
	})

	return outcomes, nil
}

// parseQuestion decodes one item without trusting its shape.
func parseQuestion(raw json.RawMessage) (quiz.Question, error) {
	var q quiz.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return quiz.Question{}, fmt.Errorf("malformed item: %w", err)
	}
	q.ID = ""
	q.Question = strings.TrimSpace(q.Question)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	q.Explanation = strings.TrimSpace(q.Explanation)
	for i, o := range q.Options {
		q.Options[i] = strings.TrimSpace(o)
	}
	return q, nil
}

// LessonInput describes what a lesson should cover.
type LessonInput struct {
	Subject    string
	Topic      string
	StudentAge int
	Mistakes   []string
}

// Lesson is a short validated lesson.
type Lesson struct {
	Subject  string
	Topic    string
	Title    string
	Body     string
	Examples []string
	Practice quiz.Question
}

type lessonOutput struct {
	Title    string        `json:"title"`
	Body     string        `json:"body"`
	Examples []string      `json:"examples"`
	Practice quiz.Question `json:"practice"`
}

// GenerateLesson produces a lesson for in. A lesson that fails validation
// is returned as a *RejectedError.
func (c *Client) GenerateLesson(ctx context.Context, in LessonInput) (*Lesson, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      lessonSystemPrompt,
		Messages:    llm.UserMessage(buildLessonMessage(in)),
		Schema:      LessonSchema,
		MaxTokens:   2048,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		c.noteBlocked(ctx, "lesson", in.Subject, in.Topic, err)
		return nil, fmt.Errorf("lesson generation: %w", err)
	}

	var out lessonOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse lesson response: %w", err)
	}

	report := contentcheck.ValidateLesson(out.Title, out.Body, out.Examples)
	practice := contentcheck.ValidateQuestion(out.Practice)
	for _, issue := range practice.Issues {
		report.Issues = append(report.Issues, "practice: "+issue)
	}
	report.WasBlocked = report.WasBlocked || practice.WasBlocked

	ev := store.ValidationEventData{
		Kind:       "lesson",
		Subject:    in.Subject,
		Topic:      in.Topic,
		WasBlocked: report.WasBlocked,
		Issues:     report.Issues,
	}
	if !report.OK() {
		ev.Rejected = 1
		c.recordValidation(ctx, ev)
		return nil, &RejectedError{Kind: "lesson", Issues: report.Issues, WasBlocked: report.WasBlocked}
	}
	ev.Accepted = 1
	c.recordValidation(ctx, ev)

	return &Lesson{
		Subject:  in.Subject,
		Topic:    in.Topic,
		Title:    strings.TrimSpace(out.Title),
		Body:     strings.TrimSpace(out.Body),
		Examples: out.Examples,
		Practice: out.Practice,
	}, nil
}

type topicsOutput struct {
	Topics []string `json:"topics"`
}

// SuggestTopics asks for up to MaxTopics new topics within subject. Invalid,
// unsafe and repeated topics are dropped.
func (c *Client) SuggestTopics(ctx context.Context, subject string, age int, existing []string) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTopics)

	n := c.cfg.MaxTopics
	if n <= 0 {
		n = DefaultConfig().MaxTopics
	}
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      topicsSystemPrompt,
		Messages:    llm.UserMessage(buildTopicsMessage(subject, age, n, existing)),
		Schema:      TopicsSchema,
		MaxTokens:   512,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		c.noteBlocked(ctx, "topics", subject, "", err)
		return nil, fmt.Errorf("topic suggestion: %w", err)
	}

	var out topicsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse topics response: %w", err)
	}

	seen := make(map[string]bool, len(existing)+len(out.Topics))
	for _, t := range existing {
		seen[quiz.NormalizeText(t)] = true
	}

	ev := store.ValidationEventData{Kind: "topics", Subject: subject}
	var topics []string
	for _, t := range out.Topics {
		t = strings.TrimSpace(t)
		r := contentcheck.ValidateTopic(t)
		if !r.OK() {
			ev.Rejected++
			ev.Issues = append(ev.Issues, r.Issues...)
			ev.WasBlocked = ev.WasBlocked || r.WasBlocked
			continue
		}
		key := quiz.NormalizeText(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		topics = append(topics, t)
		if len(topics) == n {
			break
		}
	}
	ev.Accepted = len(topics)
	c.recordValidation(ctx, ev)

	return topics, nil
}

// noteBlocked records a provider-side safety block as a rejected, blocked
// validation event. Other errors are left to the caller.
func (c *Client) noteBlocked(ctx context.Context, kind, subject, topic string, err error) {
	var blocked *llm.ErrContentBlocked
	if !errors.As(err, &blocked) {
		return
	}
	c.recordValidation(ctx, store.ValidationEventData{
		Kind:       kind,
		Subject:    subject,
		Topic:      topic,
		Rejected:   1,
		WasBlocked: true,
		Issues:     []string{blocked.Error()},
	})
}

// recordValidation logs rejections as one warning and appends the
// validation event. Event write failures are logged, never returned.
func (c *Client) recordValidation(ctx context.Context, ev store.ValidationEventData) {
	if ev.Rejected > 0 {
		c.logger.Warn("generated content rejected",
			"kind", ev.Kind,
			"subject", ev.Subject,
			"topic", ev.Topic,
			"accepted", ev.Accepted,
			"rejected", ev.Rejected,
			"issues", ev.Issues,
			"was_blocked", ev.WasBlocked,
		)
	}
	if c.events == nil {
		return
	}
	if err := c.events.AppendValidationEvent(ctx, ev); err != nil {
		c.logger.Warn("failed to record validation event", "kind", ev.Kind, "error", err)
	}
}
