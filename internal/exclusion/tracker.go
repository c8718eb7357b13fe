// Package exclusion tracks, per resolution key, which questions have already
// been served in the current learning cycle.
package exclusion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/quizengine/internal/store"
)

// keyPrefix namespaces exclusion records inside the shared content store.
const keyPrefix = "exclusion:"

// Tracker persists exclusion records through a ContentStore. A record only
// grows until Reset is called for its key.
type Tracker struct {
	store  store.ContentStore
	logger *slog.Logger
}

// NewTracker creates a tracker over cs.
func NewTracker(cs store.ContentStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: cs, logger: logger}
}

func storeKey(key string) string {
	return keyPrefix + key
}

// Used returns the ordered list of question keys already served for key.
// A missing or unreadable record is treated as empty.
func (t *Tracker) Used(ctx context.Context, key string) ([]string, error) {
	raw, err := t.store.Get(ctx, storeKey(key))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read exclusion record %q: %w", key, err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		t.logger.Debug("discarding corrupt exclusion record", "key", key, "error", err)
		return nil, nil
	}
	return ids, nil
}

// UsedSet is Used as a set.
func (t *Tracker) UsedSet(ctx context.Context, key string) (map[string]bool, error) {
	ids, err := t.Used(ctx, key)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Add merges ids into the record for key, keeping first-seen order and
// dropping duplicates.
func (t *Tracker) Add(ctx context.Context, key string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	existing, err := t.Used(ctx, key)
	if err != nil {
		return err
	}

	merged := mergeUnique(existing, ids)
	if len(merged) == len(existing) {
		return nil
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal exclusion record: %w", err)
	}
	if err := t.store.Set(ctx, storeKey(key), string(data)); err != nil {
		return fmt.Errorf("write exclusion record %q: %w", key, err)
	}
	return nil
}

// Reset clears the record for key.
func (t *Tracker) Reset(ctx context.Context, key string) error {
	if err := t.store.Delete(ctx, storeKey(key)); err != nil {
		return fmt.Errorf("reset exclusion record %q: %w", key, err)
	}
	return nil
}

// ResetAll clears every exclusion record and returns how many were removed.
func (t *Tracker) ResetAll(ctx context.Context) (int, error) {
	n, err := t.store.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("reset exclusion records: %w", err)
	}
	return n, nil
}

func mergeUnique(existing, add []string) []string {
	seen := make(map[string]bool, len(existing)+len(add))
	out := make([]string, 0, len(existing)+len(add))
	for _, list := range [][]string{existing, add} {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
