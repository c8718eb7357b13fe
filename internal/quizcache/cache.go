// Package quizcache stores the last successfully resolved question set per
// resolution key.
package quizcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/store"
)

const keyPrefix = "quizcache:"

// Entry is a cached resolution result.
type Entry struct {
	Questions []quiz.Question `json:"questions"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
	Source    quiz.Source     `json:"source"`

	// Legacy is true when the entry was decoded from the old bare-array
	// form. Legacy entries carry no timestamp or source.
	Legacy bool `json:"-"`
}

// Cache reads and writes entries through a ContentStore.
type Cache struct {
	store  store.ContentStore
	logger *slog.Logger
}

// New creates a cache over cs.
func New(cs store.ContentStore, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: cs, logger: logger}
}

func storeKey(key string) string {
	return keyPrefix + key
}

// Get returns the entry for key, or nil when there is none. Both the
// current object form and the legacy bare question array are accepted.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := c.store.Get(ctx, storeKey(key))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry %q: %w", key, err)
	}

	entry, err := decode([]byte(raw))
	if err != nil {
		c.logger.Debug("ignoring unreadable cache entry", "key", key, "error", err)
		return nil, nil
	}
	return entry, nil
}

// Put writes questions under key in the current schema. The legacy form is
// never written.
func (c *Cache) Put(ctx context.Context, key string, questions []quiz.Question, source quiz.Source, now time.Time) error {
	data, err := json.Marshal(Entry{
		Questions: questions,
		Timestamp: now.UnixMilli(),
		Source:    source,
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.store.Set(ctx, storeKey(key), string(data)); err != nil {
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, storeKey(key))
}

// Clear removes every cache entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("clear quiz cache: %w", err)
	}
	return n, nil
}

func decode(raw []byte) (*Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty cache value")
	}

	if raw[0] == '[' {
		var questions []quiz.Question
		if err := json.Unmarshal(raw, &questions); err != nil {
			return nil, fmt.Errorf("decode legacy cache entry: %w", err)
		}
		return &Entry{Questions: questions, Legacy: true}, nil
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}
