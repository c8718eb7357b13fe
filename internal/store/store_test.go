package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"kv_entries", "llm_request_events", "content_validation_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestEventSequenceSharedAcrossTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	repo := s.EventRepo()

	for i := range 2 {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "m", Purpose: "quiz-gen", Success: true}); err != nil {
			t.Fatalf("llm event %d: %v", i, err)
		}
		if err := repo.AppendValidationEvent(ctx, ValidationEventData{Kind: "quiz", Subject: "Math", Topic: "Add"}); err != nil {
			t.Fatalf("validation event %d: %v", i, err)
		}
	}
	s.Close()

	// Reopening must not reset the counter.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	repo = s.EventRepo()
	if err := repo.AppendValidationEvent(ctx, ValidationEventData{Kind: "topics", Subject: "Math"}); err != nil {
		t.Fatalf("after reopen: %v", err)
	}

	llmEvents, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query llm: %v", err)
	}
	valEvents, err := repo.QueryValidationEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query validation: %v", err)
	}

	// Both queries return newest first.
	var gotLLM, gotVal []int64
	for _, e := range llmEvents {
		gotLLM = append(gotLLM, e.Sequence)
	}
	for _, e := range valEvents {
		gotVal = append(gotVal, e.Sequence)
	}
	if want := []int64{3, 1}; !slices.Equal(gotLLM, want) {
		t.Errorf("llm sequences = %v, want %v", gotLLM, want)
	}
	if want := []int64{5, 4, 2}; !slices.Equal(gotVal, want) {
		t.Errorf("validation sequences = %v, want %v", gotVal, want)
	}
}

func contentStoreContract(t *testing.T, cs ContentStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := cs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := cs.Set(ctx, "exclusion:a", `["1"]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cs.Set(ctx, "exclusion:a", `["1","2"]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := cs.Get(ctx, "exclusion:a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `["1","2"]` {
		t.Errorf("Get = %q, want overwritten value", got)
	}

	if err := cs.Set(ctx, "exclusion:b", "[]"); err != nil {
		t.Fatalf("set b: %v", err)
	}
	if err := cs.Set(ctx, "cache:a", "{}"); err != nil {
		t.Fatalf("set cache: %v", err)
	}

	n, err := cs.DeletePrefix(ctx, "exclusion:")
	if err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	if n != 2 {
		t.Errorf("DeletePrefix removed %d, want 2", n)
	}
	if _, err := cs.Get(ctx, "cache:a"); err != nil {
		t.Errorf("cache:a should survive prefix delete: %v", err)
	}

	if err := cs.Delete(ctx, "cache:a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := cs.Delete(ctx, "cache:a"); err != nil {
		t.Fatalf("delete absent key: %v", err)
	}
	if _, err := cs.Get(ctx, "cache:a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryContentStore(t *testing.T) {
	contentStoreContract(t, NewMemoryContentStore())
}

func TestSQLContentStore(t *testing.T) {
	contentStoreContract(t, openTestStore(t).ContentStore())
}

func TestSQLContentStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.ContentStore().Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.ContentStore().Get(ctx, "k")
	if err != nil || got != "v" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestLLMEvents_AppendQueryAndUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "quiz-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 10, Success: true},
		{Provider: "mock", Model: "m1", Purpose: "quiz-gen", InputTokens: 200, OutputTokens: 70, LatencyMs: 30, Success: true},
		{Provider: "mock", Model: "m2", Purpose: "lesson", InputTokens: 10, OutputTokens: 5, LatencyMs: 5, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Purpose != "lesson" || got[0].Success {
		t.Errorf("newest event = %+v, want failed lesson", got[0])
	}

	quizOnly, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz-gen", Limit: 5})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(quizOnly) != 2 {
		t.Errorf("quiz-gen events = %d, want 2", len(quizOnly))
	}

	one, err := repo.GetLLMEvent(ctx, got[0].ID)
	if err != nil || one == nil {
		t.Fatalf("get: %v %v", one, err)
	}
	if one.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q", one.ErrorMessage)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("GetLLMEvent(9999) = %v, %v; want nil, nil", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "quiz-gen" || byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 300 {
		t.Errorf("usage by purpose = %+v", byPurpose)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Model != "m1" {
		t.Errorf("usage by model = %+v, want only successful m1", byModel)
	}
}

func TestValidationEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendValidationEvent(ctx, ValidationEventData{
		Kind: "quiz", Subject: "Maths", Topic: "Fractions",
		Accepted: 8, Rejected: 2, WasBlocked: true,
		Issues: []string{"question 3: correct answer not among options", "question 7: unsafe content"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.QueryValidationEvents(ctx, QueryOpts{From: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !got[0].WasBlocked || len(got[0].Issues) != 2 || got[0].Rejected != 2 {
		t.Errorf("event = %+v", got[0])
	}

	lessons, err := repo.QueryValidationEvents(ctx, QueryOpts{Kind: "lesson"})
	if err != nil {
		t.Fatalf("query by kind: %v", err)
	}
	if len(lessons) != 0 {
		t.Errorf("lesson events = %d, want 0", len(lessons))
	}
}
