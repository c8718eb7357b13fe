// Package contentcheck validates generated topics, lessons, questions and
// explanations. Every function is pure: problems are reported as issues,
// never returned as errors or panics.
package contentcheck

import (
	"fmt"

	"github.com/abhisek/quizengine/internal/quiz"
)

// Issue describes one failed check.
type Issue struct {
	Check   string // Name of the check that failed
	Message string // Human-readable description
	Unsafe  bool   // Content was blocked by the safety scan
}

func (i *Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Check, i.Message)
}

// Report is the result of validating one piece of content.
type Report struct {
	Issues     []string
	WasBlocked bool
}

// OK reports whether no issues were found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

func (r *Report) add(prefix string, issue *Issue) {
	if issue == nil {
		return
	}
	msg := issue.Error()
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	r.Issues = append(r.Issues, msg)
	if issue.Unsafe {
		r.WasBlocked = true
	}
}

// QuestionCheck inspects a single question.
// Implementations must be stateless and safe for concurrent use.
type QuestionCheck interface {
	// Name is a short identifier used in issue messages, e.g. "options".
	Name() string

	// Check returns nil if q passes.
	Check(q quiz.Question) *Issue
}

// DefaultChecks is the check chain applied to generated questions.
func DefaultChecks() []QuestionCheck {
	return []QuestionCheck{
		&StructuralCheck{},
		&OptionsCheck{MinOptions: quiz.MinOptions, MaxOptions: quiz.MaxOptions},
		&SafetyCheck{},
		&ArithmeticCheck{},
	}
}

// ValidateQuestion runs the default chain over q. All checks run so the
// report lists every problem, not just the first.
func ValidateQuestion(q quiz.Question) Report {
	return validateWith(q, DefaultChecks(), "")
}

func validateWith(q quiz.Question, checks []QuestionCheck, prefix string) Report {
	var r Report
	for _, c := range checks {
		r.add(prefix, c.Check(q))
	}
	return r
}

// Rejection records a question that failed validation.
type Rejection struct {
	Index    int
	Question quiz.Question
	Report   Report
}

// QuizReport is the result of validating a batch of generated questions.
type QuizReport struct {
	Report
	Valid    []quiz.Question
	Rejected []Rejection
}

// ValidateQuiz validates every question independently and also rejects
// repeats of a question already accepted in the same batch. Invalid items
// are reported, never fatal.
func ValidateQuiz(qs []quiz.Question) QuizReport {
	var out QuizReport
	checks := DefaultChecks()
	seen := make(map[string]bool, len(qs))

	for i, q := range qs {
		prefix := fmt.Sprintf("question %d", i+1)
		r := validateWith(q, checks, prefix)

		key := quiz.NormalizeText(q.Question)
		if r.OK() && seen[key] {
			r.add(prefix, &Issue{Check: "duplicate", Message: "repeats an earlier question"})
		}

		out.Issues = append(out.Issues, r.Issues...)
		out.WasBlocked = out.WasBlocked || r.WasBlocked
		if !r.OK() {
			out.Rejected = append(out.Rejected, Rejection{Index: i, Question: q, Report: r})
			continue
		}
		seen[key] = true
		out.Valid = append(out.Valid, q)
	}
	return out
}
