package contentcheck

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizengine/internal/quiz"
)

const (
	maxQuestionLen    = 500
	maxOptionLen      = 200
	maxExplanationLen = 1000
	maxTopicLen       = 80
	maxLessonTitleLen = 120
	maxLessonLen      = 6000
)

// StructuralCheck verifies required fields are present and within length
// limits.
type StructuralCheck struct{}

func (c *StructuralCheck) Name() string { return "structural" }

func (c *StructuralCheck) Check(q quiz.Question) *Issue {
	text := strings.TrimSpace(q.Question)
	switch {
	case text == "":
		return &Issue{Check: c.Name(), Message: "question is empty"}
	case len(text) > maxQuestionLen:
		return &Issue{Check: c.Name(), Message: fmt.Sprintf("question exceeds %d characters", maxQuestionLen)}
	case strings.TrimSpace(q.CorrectAnswer) == "":
		return &Issue{Check: c.Name(), Message: "correct answer is empty"}
	}
	return explanationIssue(c.Name(), q.Explanation)
}

func explanationIssue(check, text string) *Issue {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return &Issue{Check: check, Message: "explanation is empty"}
	case len(t) > maxExplanationLen:
		return &Issue{Check: check, Message: fmt.Sprintf("explanation exceeds %d characters", maxExplanationLen)}
	}
	return nil
}

// OptionsCheck verifies the option set: count bounds, no blank or
// duplicate options, and the correct answer among them.
type OptionsCheck struct {
	MinOptions int
	MaxOptions int
}

func (c *OptionsCheck) Name() string { return "options" }

func (c *OptionsCheck) Check(q quiz.Question) *Issue {
	n := len(q.Options)
	if n < c.MinOptions || n > c.MaxOptions {
		return &Issue{Check: c.Name(), Message: fmt.Sprintf("has %d options, want %d-%d", n, c.MinOptions, c.MaxOptions)}
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return &Issue{Check: c.Name(), Message: fmt.Sprintf("option %d is empty", i+1)}
		}
		if len(o) > maxOptionLen {
			return &Issue{Check: c.Name(), Message: fmt.Sprintf("option %d exceeds %d characters", i+1, maxOptionLen)}
		}
	}
	if !quiz.HasUniqueOptions(q.Options) {
		return &Issue{Check: c.Name(), Message: "options contain duplicates"}
	}
	if !quiz.ContainsAnswer(q.Options, q.CorrectAnswer) {
		return &Issue{Check: c.Name(), Message: fmt.Sprintf("correct answer %q is not among the options", q.CorrectAnswer)}
	}
	return nil
}

// ValidateTopic checks a suggested topic name.
func ValidateTopic(topic string) Report {
	var r Report
	t := strings.TrimSpace(topic)
	switch {
	case t == "":
		r.add("", &Issue{Check: "topic", Message: "topic is empty"})
	case len(t) > maxTopicLen:
		r.add("", &Issue{Check: "topic", Message: fmt.Sprintf("topic exceeds %d characters", maxTopicLen)})
	}
	r.add("", scanText("topic", t))
	return r
}

// ValidateExplanation checks a standalone explanation, e.g. one shown
// after a wrong answer.
func ValidateExplanation(text string) Report {
	var r Report
	r.add("", explanationIssue("explanation", text))
	r.add("", scanText("explanation", text))
	return r
}

// ValidateLesson checks a generated lesson's title and body, and each
// worked example as an explanation.
func ValidateLesson(title, body string, examples []string) Report {
	var r Report
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	switch {
	case title == "":
		r.add("", &Issue{Check: "lesson", Message: "title is empty"})
	case len(title) > maxLessonTitleLen:
		r.add("", &Issue{Check: "lesson", Message: fmt.Sprintf("title exceeds %d characters", maxLessonTitleLen)})
	}
	switch {
	case body == "":
		r.add("", &Issue{Check: "lesson", Message: "body is empty"})
	case len(body) > maxLessonLen:
		r.add("", &Issue{Check: "lesson", Message: fmt.Sprintf("body exceeds %d characters", maxLessonLen)})
	}

	r.add("", scanText("lesson", title+"\n"+body))

	for i, ex := range examples {
		er := ValidateExplanation(ex)
		for _, issue := range er.Issues {
			r.Issues = append(r.Issues, fmt.Sprintf("example %d: %s", i+1, issue))
		}
		r.WasBlocked = r.WasBlocked || er.WasBlocked
	}
	return r
}
