package contentcheck

import (
	"regexp"
	"strings"

	"github.com/abhisek/quizengine/internal/quiz"
)

// blockedTerms are whole words that must never appear in content shown to
// children.
var blockedTerms = []string{
	// violence
	"kill", "killing", "murder", "suicide", "gun", "guns", "shooting",
	"stab", "bomb", "torture", "gore",
	// substances
	"cocaine", "heroin", "beer", "vodka", "cigarette", "vape",
	// adult content and profanity
	"sex", "sexy", "porn", "nude", "naked", "damn", "hell", "crap",
	"shit", "fuck", "bitch", "bastard",
	// hate
	"racist", "slur",
	// personal data requests
	"home address", "phone number",
}

var blockedRe = regexp.MustCompile(`(?i)\b(` + joinQuoted(blockedTerms) + `)\b`)

func joinQuoted(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

// SafetyCheck scans the question, its options and its explanation for
// blocked terms.
type SafetyCheck struct{}

func (c *SafetyCheck) Name() string { return "safety" }

func (c *SafetyCheck) Check(q quiz.Question) *Issue {
	parts := append([]string{q.Question, q.CorrectAnswer, q.Explanation}, q.Options...)
	return scanText(c.Name(), strings.Join(parts, "\n"))
}

// scanText returns an unsafe issue naming the first blocked term in text.
func scanText(check, text string) *Issue {
	m := blockedRe.FindString(text)
	if m == "" {
		return nil
	}
	return &Issue{Check: check, Message: "contains blocked term " + `"` + strings.ToLower(m) + `"`, Unsafe: true}
}

// IsSafe reports whether text passes the safety scan.
func IsSafe(text string) bool {
	return scanText("safety", text) == nil
}
