package contentcheck

import (
	"slices"
	"strings"
	"testing"

	"github.com/abhisek/quizengine/internal/quiz"
)

func validQuestion() quiz.Question {
	return quiz.Question{
		Question:      "What is 1/2 + 1/4?",
		Options:       []string{"3/4", "2/6", "1/8", "2/4"},
		CorrectAnswer: "3/4",
		Explanation:   "1/2 is 2/4, and 2/4 + 1/4 = 3/4.",
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(q *quiz.Question)
		wantIssue   string
		wantBlocked bool
	}{
		{"valid", func(q *quiz.Question) {}, "", false},
		{"empty question", func(q *quiz.Question) { q.Question = "  " }, "question is empty", false},
		{"too long", func(q *quiz.Question) { q.Question = strings.Repeat("a", 501) }, "exceeds 500", false},
		{"one option", func(q *quiz.Question) { q.Options = []string{"3/4"} }, "has 1 options", false},
		{"two options", func(q *quiz.Question) { q.Options = []string{"3/4", "2/6"} }, "has 2 options, want 3-6", false},
		{"seven options", func(q *quiz.Question) { q.Options = []string{"3/4", "a", "b", "c", "d", "e", "f"} }, "has 7 options", false},
		{"blank option", func(q *quiz.Question) { q.Options[1] = " " }, "option 2 is empty", false},
		{"duplicate options", func(q *quiz.Question) { q.Options[1] = " 3/4" }, "duplicates", false},
		{"answer missing", func(q *quiz.Question) { q.CorrectAnswer = "5/8"; q.Question = "Pick one" }, "not among the options", false},
		{"empty answer", func(q *quiz.Question) { q.CorrectAnswer = "" }, "correct answer is empty", false},
		{"missing explanation", func(q *quiz.Question) { q.Explanation = " " }, "explanation is empty", false},
		{"long explanation", func(q *quiz.Question) { q.Explanation = strings.Repeat("z", 1001) }, "explanation exceeds 1000", false},
		{"wrong arithmetic", func(q *quiz.Question) { q.CorrectAnswer = "2/4" }, "computed 3/4", false},
		{"unsafe explanation", func(q *quiz.Question) { q.Explanation = "Don't shoot the messenger, or kill time." }, "blocked term", true},
		{"unsafe option", func(q *quiz.Question) { q.Options[3] = "beer" }, `"beer"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			r := ValidateQuestion(q)
			if tt.wantIssue == "" {
				if !r.OK() {
					t.Errorf("unexpected issues: %v", r.Issues)
				}
				return
			}
			if r.OK() {
				t.Fatal("ValidateQuestion() passed, want an issue")
			}
			if got := strings.Join(r.Issues, "\n"); !strings.Contains(got, tt.wantIssue) {
				t.Errorf("issues %q do not contain %q", got, tt.wantIssue)
			}
			if r.WasBlocked != tt.wantBlocked {
				t.Errorf("WasBlocked = %v, want %v", r.WasBlocked, tt.wantBlocked)
			}
		})
	}
}

func TestSafety_WholeWordsOnly(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"The class went to see a shell and a skillful hellebore.", true},
		{"Your heart pumps blood around your body.", true},
		{"What does HELL mean?", false},
		{"Tell me your home address", false},
	}
	for _, tt := range tests {
		if got := IsSafe(tt.text); got != tt.want {
			t.Errorf("IsSafe(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestValidateQuiz_PartialFailure(t *testing.T) {
	good := validQuestion()
	dup := validQuestion()
	dup.Question = "what is  1/2 + 1/4?"
	bad := validQuestion()
	bad.Options = []string{"a", "b"}
	unsafe := validQuestion()
	unsafe.Question = "How many guns are there?"
	unsafe.CorrectAnswer = "3/4"

	r := ValidateQuiz([]quiz.Question{good, bad, dup, unsafe})
	if len(r.Valid) != 1 || r.Valid[0].Question != good.Question {
		t.Fatalf("Valid = %+v, want only the first question", r.Valid)
	}
	var idx []int
	for _, rej := range r.Rejected {
		idx = append(idx, rej.Index)
	}
	if !slices.Equal(idx, []int{1, 2, 3}) {
		t.Errorf("rejected indexes = %v, want [1 2 3]", idx)
	}
	if !r.WasBlocked {
		t.Error("WasBlocked = false, want true")
	}
	issues := strings.Join(r.Issues, "\n")
	for _, want := range []string{"question 3: duplicate", "question 2: options"} {
		if !strings.Contains(issues, want) {
			t.Errorf("issues missing %q:\n%s", want, issues)
		}
	}
}

func TestValidateQuiz_Empty(t *testing.T) {
	r := ValidateQuiz(nil)
	if !r.OK() || len(r.Valid) != 0 {
		t.Errorf("ValidateQuiz(nil) = %+v", r)
	}
}

func TestValidateTopic(t *testing.T) {
	if r := ValidateTopic("Equivalent Fractions"); !r.OK() {
		t.Errorf("valid topic rejected: %v", r.Issues)
	}
	if ValidateTopic("").OK() {
		t.Error("empty topic accepted")
	}
	if ValidateTopic(strings.Repeat("x", 81)).OK() {
		t.Error("81-character topic accepted")
	}
	if r := ValidateTopic("Famous murder mysteries"); !r.WasBlocked {
		t.Error("unsafe topic not flagged as blocked")
	}
}

func TestValidateLesson(t *testing.T) {
	if r := ValidateLesson("Adding fractions", "Make the bottoms match, then add the tops.", []string{"1/4 + 2/4 = 3/4"}); !r.OK() {
		t.Errorf("valid lesson rejected: %v", r.Issues)
	}

	if r := ValidateLesson("", "", nil); len(r.Issues) != 2 {
		t.Errorf("empty lesson issues = %v, want 2", r.Issues)
	}

	r := ValidateLesson("Fun facts", "Some text", []string{"a vodka example"})
	if !r.WasBlocked {
		t.Error("unsafe example not flagged as blocked")
	}
	if len(r.Issues) != 1 || !strings.HasPrefix(r.Issues[0], "example 1: ") {
		t.Errorf("issues = %v, want one example issue", r.Issues)
	}

	r = ValidateLesson("Fun facts", "Some text", []string{"Two halves make one.", ""})
	if r.OK() || r.WasBlocked {
		t.Errorf("blank example: OK=%v blocked=%v", r.OK(), r.WasBlocked)
	}
}

func TestValidateExplanation(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"Seven groups of eight make 56.", true},
		{"", false},
		{strings.Repeat("y", 1001), false},
		{"Never play with a gun.", false},
	}
	for _, tt := range tests {
		if got := ValidateExplanation(tt.text).OK(); got != tt.ok {
			t.Errorf("ValidateExplanation(%.20q).OK() = %v, want %v", tt.text, got, tt.ok)
		}
	}
}
