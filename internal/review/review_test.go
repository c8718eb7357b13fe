package review

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/resolver"
	"github.com/abhisek/quizengine/internal/srs"
	"github.com/abhisek/quizengine/internal/store"
)

func q(text, answer string) quiz.Question {
	return quiz.Question{Question: text, Options: []string{answer, "x", "y"}, CorrectAnswer: answer}
}

type recordingResolver struct {
	requests []quiz.Request
}

func (r *recordingResolver) Resolve(_ context.Context, req quiz.Request) resolver.Result {
	r.requests = append(r.requests, req)
	return resolver.Result{Questions: []quiz.Question{q("Review "+req.Topic+"?", "a")}, Source: quiz.SourcePartial}
}

func newScheduler(now *time.Time) *srs.Scheduler {
	return srs.New(store.NewMemoryContentStore(), nil).WithClock(func() time.Time { return *now })
}

func TestRecordResults(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newScheduler(&now)
	rec := NewRecorder(s, nil)
	ctx := context.Background()

	sum, err := rec.RecordResults(ctx, "Science", "Forces", []Answer{
		{Question: q("What pulls things down?", "Gravity"), Given: " gravity "},
		{Question: q("What slows a sliding box?", "Friction"), Given: "Magnetism"},
		{Question: q("What do magnets attract?", "Iron"), Given: ""},
	})
	if err != nil {
		t.Fatalf("RecordResults() error: %v", err)
	}
	if sum.Correct != 1 || sum.Incorrect != 2 || len(sum.Items) != 2 {
		t.Fatalf("summary = %+v, want 1 correct, 2 incorrect", sum)
	}

	all, err := s.AllItems(ctx)
	if err != nil {
		t.Fatalf("AllItems() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("AllItems() = %d items, want 2", len(all))
	}

	// The same mistake again updates rather than duplicates.
	sum, err = rec.RecordResults(ctx, "Science", "Forces", []Answer{
		{Question: q("What slows a sliding box?", "Friction"), Given: "Air"},
	})
	if err != nil {
		t.Fatalf("RecordResults() error: %v", err)
	}
	if sum.Items[0].WrongCount != 2 {
		t.Errorf("WrongCount = %d, want 2", sum.Items[0].WrongCount)
	}
	all, err = s.AllItems(ctx)
	if err != nil {
		t.Fatalf("AllItems() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("AllItems() = %d items, want 2", len(all))
	}
}

func TestQuality(t *testing.T) {
	tests := []struct {
		correct  bool
		attempts int
		want     int
	}{
		{true, 1, 5},
		{true, 2, 4},
		{false, 1, 1},
		{false, 2, 1},
	}
	for _, tt := range tests {
		if got := Quality(tt.correct, tt.attempts); got != tt.want {
			t.Errorf("Quality(%v, %d) = %d, want %d", tt.correct, tt.attempts, got, tt.want)
		}
	}
}

func TestRecalled(t *testing.T) {
	it := srs.ReviewItem{Question: "What pulls things down?", CorrectAnswer: "Gravity"}
	if !Recalled(it, "  GRAVITY ") {
		t.Error("case and space should not matter")
	}
	if Recalled(it, "Friction") {
		t.Error("wrong answer recalled")
	}
}

func TestRecordRecalls_GradesThroughQuality(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newScheduler(&now)
	rec := NewRecorder(s, nil)
	ctx := context.Background()

	var items []srs.ReviewItem
	for _, text := range []string{"What pulls things down?", "What slows a sliding box?", "What do magnets attract?"} {
		it, err := s.AddWrongAnswer(ctx, "Science", "Forces", text, "a")
		if err != nil {
			t.Fatalf("AddWrongAnswer() error: %v", err)
		}
		items = append(items, it)
	}
	now = now.Add(2 * 24 * time.Hour)

	gone := srs.ReviewItem{ID: "missing"}
	updated, err := rec.RecordRecalls(ctx, []Recall{
		{Item: items[0], Correct: true, Attempts: 1},
		{Item: items[1], Correct: true, Attempts: 2},
		{Item: items[2], Correct: false, Attempts: 2},
		{Item: gone, Correct: true, Attempts: 1},
	})
	if err != nil {
		t.Fatalf("RecordRecalls() error: %v", err)
	}
	if len(updated) != 3 {
		t.Fatalf("updated %d items, want 3", len(updated))
	}

	want := []struct {
		score, wrong, reps int
	}{
		{5, 1, 1},
		{4, 1, 1},
		{1, 2, 0},
	}
	for i, w := range want {
		got, err := s.GetItem(ctx, items[i].ID)
		if err != nil || got == nil {
			t.Fatalf("GetItem(%s) = %v, %v", items[i].ID, got, err)
		}
		if got.LastReviewScore != w.score || got.WrongCount != w.wrong || got.Repetitions != w.reps {
			t.Errorf("item %d: score %d wrong %d reps %d, want %d %d %d",
				i, got.LastReviewScore, got.WrongCount, got.Repetitions, w.score, w.wrong, w.reps)
		}
		if !got.LastReviewed.Equal(now) {
			t.Errorf("item %d: LastReviewed = %v, want %v", i, got.LastReviewed, now)
		}
	}

	due, err := s.GetDueItems(ctx, "")
	if err != nil {
		t.Fatalf("GetDueItems() error: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("%d items still due right after review", len(due))
	}
}

func TestBuild_GroupsDueTopicsByUrgency(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newScheduler(&now)
	ctx := context.Background()

	for _, it := range []struct{ subject, topic, question string }{
		{"Maths", "Fractions", "F1"},
		{"Maths", "Fractions", "F1"},
		{"Maths", "Fractions", "F2"},
		{"Science", "Forces", "S1"},
		{"Science", "Forces", "S1"},
		{"Science", "Forces", "S1"},
		{"Maths", "Decimals", "D1"},
		{"Geography", "Continents", "G1"},
	} {
		if _, err := s.AddWrongAnswer(ctx, it.subject, it.topic, it.question, "a"); err != nil {
			t.Fatalf("AddWrongAnswer() error: %v", err)
		}
	}
	now = now.Add(3 * 24 * time.Hour)

	res := &recordingResolver{}
	b := NewBuilder(s, res, BuilderConfig{MaxTopics: 2, Difficulty: quiz.DifficultyEasy, StudentAge: 8})

	sections, err := b.Build(ctx, "")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("Build() = %d sections, want 2", len(sections))
	}
	if sections[0].Topic != "Forces" || sections[1].Topic != "Fractions" {
		t.Errorf("topics = %s, %s; want Forces, Fractions", sections[0].Topic, sections[1].Topic)
	}
	if len(sections[1].Due) != 2 {
		t.Errorf("Fractions due = %d, want 2", len(sections[1].Due))
	}
	if len(res.requests) != 2 {
		t.Fatalf("resolver called %d times, want 2", len(res.requests))
	}
	wantReq := quiz.Request{Subject: "Science", Topic: "Forces", Difficulty: quiz.DifficultyEasy, StudentAge: 8}
	if res.requests[0] != wantReq {
		t.Errorf("first request = %+v, want %+v", res.requests[0], wantReq)
	}
	if len(sections[0].Questions) != 1 {
		t.Errorf("Forces questions = %d, want 1", len(sections[0].Questions))
	}

	maths, err := b.Build(ctx, "Maths")
	if err != nil {
		t.Fatalf("Build(Maths) error: %v", err)
	}
	if len(maths) != 2 {
		t.Fatalf("Build(Maths) = %d sections, want 2", len(maths))
	}
	for _, sec := range maths {
		if sec.Subject != "Maths" {
			t.Errorf("section subject = %s, want Maths", sec.Subject)
		}
	}
}

func TestBuild_NothingDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newScheduler(&now)
	res := &recordingResolver{}

	sections, err := NewBuilder(s, res, DefaultBuilderConfig()).Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(sections) != 0 || len(res.requests) != 0 {
		t.Errorf("sections = %d, requests = %d; want none", len(sections), len(res.requests))
	}
}
