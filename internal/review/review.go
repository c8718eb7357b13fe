// Package review connects quiz results to the spaced-repetition scheduler
// and builds review quizzes for due topics.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/resolver"
	"github.com/abhisek/quizengine/internal/srs"
)

// Answer is a learner's answer to one quiz question.
type Answer struct {
	Question quiz.Question
	Given    string
}

// Correct reports whether the given answer matches, ignoring case and
// surrounding space.
func (a Answer) Correct() bool {
	return strings.EqualFold(strings.TrimSpace(a.Given), strings.TrimSpace(a.Question.CorrectAnswer))
}

// Recorder feeds quiz results into the scheduler.
type Recorder struct {
	scheduler *srs.Scheduler
	logger    *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(s *srs.Scheduler, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{scheduler: s, logger: logger}
}

// Summary is the outcome of recording one quiz.
type Summary struct {
	Correct   int
	Incorrect int
	Items     []srs.ReviewItem // items created or updated for wrong answers
}

// RecordResults adds a review item for every incorrect answer.
func (r *Recorder) RecordResults(ctx context.Context, subject, topic string, answers []Answer) (Summary, error) {
	var sum Summary
	for _, a := range answers {
		if a.Correct() {
			sum.Correct++
			continue
		}
		sum.Incorrect++
		it, err := r.scheduler.AddWrongAnswer(ctx, subject, topic, a.Question.Question, a.Question.CorrectAnswer)
		if err != nil {
			return sum, fmt.Errorf("record wrong answer: %w", err)
		}
		sum.Items = append(sum.Items, it)
	}
	r.logger.Info("quiz results recorded",
		"subject", subject, "topic", topic,
		"correct", sum.Correct, "incorrect", sum.Incorrect)
	return sum, nil
}

// Quality maps a review answer to an SM-2 grade: 5 for a first-try correct
// answer, 4 for correct after retries, 1 for incorrect.
func Quality(correct bool, attempts int) int {
	switch {
	case !correct:
		return 1
	case attempts <= 1:
		return 5
	default:
		return 4
	}
}

// Recall is a learner's attempt to recall the answer to a due item.
type Recall struct {
	Item     srs.ReviewItem
	Correct  bool
	Attempts int
}

// Recalled reports whether given matches the item's answer.
func Recalled(it srs.ReviewItem, given string) bool {
	a := Answer{Question: quiz.Question{Question: it.Question, CorrectAnswer: it.CorrectAnswer}, Given: given}
	return a.Correct()
}

// RecordRecalls grades each recall with Quality and reschedules its item.
// Items deleted since the review was built are skipped.
func (r *Recorder) RecordRecalls(ctx context.Context, recalls []Recall) ([]srs.ReviewItem, error) {
	var updated []srs.ReviewItem
	for _, rc := range recalls {
		it, err := r.scheduler.RecordReview(ctx, rc.Item.ID, Quality(rc.Correct, rc.Attempts))
		if err != nil {
			return updated, fmt.Errorf("record review %s: %w", rc.Item.ID, err)
		}
		if it == nil {
			r.logger.Debug("review item no longer exists", "id", rc.Item.ID)
			continue
		}
		updated = append(updated, *it)
	}
	r.logger.Info("review recorded", "items", len(updated))
	return updated, nil
}

// Resolver fetches questions for a topic.
type Resolver interface {
	Resolve(ctx context.Context, req quiz.Request) resolver.Result
}

// BuilderConfig controls review quiz building.
type BuilderConfig struct {
	// MaxTopics caps how many due topics one review covers.
	MaxTopics int

	Difficulty quiz.Difficulty
	StudentAge int
}

// DefaultBuilderConfig returns recommended defaults.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{MaxTopics: 3, Difficulty: quiz.DifficultyMedium, StudentAge: 9}
}

// Section is the review content for one due topic.
type Section struct {
	Subject   string
	Topic     string
	Due       []srs.ReviewItem
	Questions []quiz.Question
	Source    quiz.Source
}

// Builder assembles review quizzes.
type Builder struct {
	scheduler *srs.Scheduler
	resolver  Resolver
	cfg       BuilderConfig
}

// NewBuilder creates a Builder.
func NewBuilder(s *srs.Scheduler, r Resolver, cfg BuilderConfig) *Builder {
	if cfg.MaxTopics <= 0 {
		cfg.MaxTopics = DefaultBuilderConfig().MaxTopics
	}
	return &Builder{scheduler: s, resolver: r, cfg: cfg}
}

// Build groups due items by topic, most urgent first, and resolves
// questions for each topic. subject may be empty for all subjects.
func (b *Builder) Build(ctx context.Context, subject string) ([]Section, error) {
	due, err := b.scheduler.GetDueItems(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("load due items: %w", err)
	}

	var sections []Section
	index := make(map[string]int)
	for _, it := range due {
		k := strings.ToLower(it.Subject) + "|" + strings.ToLower(it.Topic)
		if i, ok := index[k]; ok {
			sections[i].Due = append(sections[i].Due, it)
			continue
		}
		if len(sections) == b.cfg.MaxTopics {
			continue
		}
		index[k] = len(sections)
		sections = append(sections, Section{Subject: it.Subject, Topic: it.Topic, Due: []srs.ReviewItem{it}})
	}

	for i := range sections {
		s := &sections[i]
		res := b.resolver.Resolve(ctx, quiz.Request{
			Subject:    s.Subject,
			Topic:      s.Topic,
			Difficulty: b.cfg.Difficulty,
			StudentAge: b.cfg.StudentAge,
		})
		s.Questions = res.Questions
		s.Source = res.Source
	}
	return sections, nil
}
