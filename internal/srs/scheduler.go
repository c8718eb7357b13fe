// Package srs schedules re-testing of questions a learner answered
// incorrectly, using the SM-2 algorithm.
package srs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizengine/internal/store"
)

// itemsKey is the content store key holding every review item.
const itemsKey = "srs:items"

// itemNamespace scopes item IDs derived from question text.
var itemNamespace = uuid.MustParse("6f1c2a3e-8b0d-4e55-9a71-3c2f0d5e9b14")

// ItemID derives the stable item ID for a question.
func ItemID(subject, topic, question string) string {
	name := strings.ToLower(strings.TrimSpace(subject)) + "|" +
		strings.ToLower(strings.TrimSpace(topic)) + "|" +
		strings.TrimSpace(question)
	return uuid.NewSHA1(itemNamespace, []byte(name)).String()
}

// Scheduler owns all review item mutation. Items are persisted as one JSON
// map in a ContentStore and read back on every call.
type Scheduler struct {
	store  store.ContentStore
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New creates a scheduler over cs.
func New(cs store.ContentStore, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{store: cs, logger: logger, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) load(ctx context.Context) (map[string]*ReviewItem, error) {
	raw, err := s.store.Get(ctx, itemsKey)
	if errors.Is(err, store.ErrNotFound) {
		return make(map[string]*ReviewItem), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load review items: %w", err)
	}
	items := make(map[string]*ReviewItem)
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode review items: %w", err)
	}
	return items, nil
}

func (s *Scheduler) save(ctx context.Context, items map[string]*ReviewItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode review items: %w", err)
	}
	if err := s.store.Set(ctx, itemsKey, string(data)); err != nil {
		return fmt.Errorf("save review items: %w", err)
	}
	return nil
}

// AddWrongAnswer records an incorrect answer. A new item starts due now;
// an existing item is reviewed with quality 1.
func (s *Scheduler) AddWrongAnswer(ctx context.Context, subject, topic, question, correctAnswer string) (ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return ReviewItem{}, err
	}

	now := s.now()
	id := ItemID(subject, topic, question)
	it, ok := items[id]
	if ok {
		apply(it, 1, now)
	} else {
		it = &ReviewItem{
			ID:            id,
			Subject:       subject,
			Topic:         topic,
			Question:      question,
			CorrectAnswer: correctAnswer,
			EaseFactor:    InitialEaseFactor,
			Interval:      1,
			NextReview:    now,
			WrongCount:    1,
			CreatedAt:     now,
		}
		items[id] = it
	}

	if err := s.save(ctx, items); err != nil {
		return ReviewItem{}, err
	}
	s.logger.Debug("review item recorded", "id", id, "subject", subject, "topic", topic, "wrong_count", it.WrongCount)
	return *it, nil
}

// RecordReview grades a review of item id with quality 0-5 (clamped).
// It returns nil if no such item exists.
func (s *Scheduler) RecordReview(ctx context.Context, id string, quality int) (*ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	it, ok := items[id]
	if !ok {
		return nil, nil
	}
	apply(it, quality, s.now())
	if err := s.save(ctx, items); err != nil {
		return nil, err
	}
	out := *it
	return &out, nil
}

// GetItem returns a snapshot of item id, or nil if absent.
func (s *Scheduler) GetItem(ctx context.Context, id string) (*ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	it, ok := items[id]
	if !ok {
		return nil, nil
	}
	out := *it
	return &out, nil
}

// snapshot returns copies of the items accepted by keep, sorted by ID.
func (s *Scheduler) snapshot(ctx context.Context, keep func(*ReviewItem) bool) ([]ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []ReviewItem
	for _, it := range items {
		if keep == nil || keep(it) {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AllItems returns every item.
func (s *Scheduler) AllItems(ctx context.Context) ([]ReviewItem, error) {
	return s.snapshot(ctx, nil)
}

// GetDueItems returns items due now, optionally for one subject, most
// urgent first.
func (s *Scheduler) GetDueItems(ctx context.Context, subject string) ([]ReviewItem, error) {
	now := s.now()
	due, err := s.snapshot(ctx, func(it *ReviewItem) bool {
		if subject != "" && !strings.EqualFold(it.Subject, subject) {
			return false
		}
		return it.IsDue(now)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Urgency(now) > due[j].Urgency(now)
	})
	return due, nil
}

// GetStrugglingItems returns items the learner keeps missing.
func (s *Scheduler) GetStrugglingItems(ctx context.Context) ([]ReviewItem, error) {
	return s.snapshot(ctx, (*ReviewItem).IsStruggling)
}

// GetMasteredItems returns items recalled reliably.
func (s *Scheduler) GetMasteredItems(ctx context.Context) ([]ReviewItem, error) {
	return s.snapshot(ctx, (*ReviewItem).IsMastered)
}

// Stats summarizes the item set.
type Stats struct {
	Total      int
	Due        int
	Struggling int
	Mastered   int
}

// Stats counts items by state.
func (s *Scheduler) Stats(ctx context.Context) (Stats, error) {
	all, err := s.AllItems(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := s.now()
	st := Stats{Total: len(all)}
	for i := range all {
		it := &all[i]
		if it.IsDue(now) {
			st.Due++
		}
		if it.IsStruggling() {
			st.Struggling++
		}
		if it.IsMastered() {
			st.Mastered++
		}
	}
	return st, nil
}

// ClearAll deletes every review item.
func (s *Scheduler) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, itemsKey); err != nil {
		return fmt.Errorf("clear review items: %w", err)
	}
	s.logger.Info("review items cleared")
	return nil
}
