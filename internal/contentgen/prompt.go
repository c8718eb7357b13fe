package contentgen

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/quizengine/internal/contentcheck"
	"github.com/abhisek/quizengine/internal/quiz"
)

const quizSystemPrompt = `You are a friendly teacher writing multiple-choice quiz questions for children.

Rules:
- Every question must be appropriate for the learner's age: no violence, adult themes, brand names or personal data.
- Each question has between 3 and 6 options. Exactly one option is correct and the options must all be different.
- correctAnswer must be copied exactly from the options.
- Distractors should reflect common mistakes, not random values.
- Explanations are one or two short sentences a child can follow.
- Use plain text. No LaTeX or markdown.
- Do not repeat a question within the set.`

// subjectGuidance holds authoring hints per normalized subject.
var subjectGuidance = map[string]string{
	"maths":     "Use numbers suited to the age. Give fractions as a/b and keep answers in simplest form. Mix plain calculations with short word problems.",
	"math":      "Use numbers suited to the age. Give fractions as a/b and keep answers in simplest form. Mix plain calculations with short word problems.",
	"science":   "Ask about observable, everyday phenomena. Prefer 'why' and 'what happens when' questions over memorized definitions.",
	"english":   "Cover spelling, grammar and vocabulary with example sentences. Keep sentences short.",
	"history":   "Focus on people, places and how life was different. Avoid graphic detail about wars or disasters.",
	"geography": "Use maps, continents, countries, landmarks and weather. Avoid politically contested topics.",
	"computing": "Use everyday examples of algorithms, online safety and how computers work.",
}

const languageGuidance = "Questions teach the target language to an English speaker. Write the question in English and put target-language words in quotes. Stay within the named topic."

// phrasingStyles varies how questions are framed between requests.
var phrasingStyles = []string{
	"Phrase most questions as direct questions.",
	"Phrase some questions as short scenarios about a child at school or at home.",
	"Include a few 'Which of these...' questions.",
	"Include a few fill-in-the-blank questions written as 'The ___ is...'.",
}

func guidanceFor(subject string) string {
	if quiz.IsLanguageSubject(subject) {
		return languageGuidance
	}
	if g, ok := subjectGuidance[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return g
	}
	return "Keep questions factual with a single clearly correct answer."
}

// buildQuizMessage builds the user message for a quiz request.
func buildQuizMessage(req quiz.Request, n int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "Learner age: %d\n", req.StudentAge)
	fmt.Fprintf(&b, "Number of questions: %d\n", n)

	b.WriteString("\nGuidance:\n")
	b.WriteString(guidanceFor(req.Subject))
	b.WriteString("\n")
	b.WriteString(phrasingStyles[rand.IntN(len(phrasingStyles))])
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nReturn exactly %d questions in the quiz array.", n)
	return b.String()
}

const lessonSystemPrompt = `You are a patient, encouraging teacher for children. A learner needs a short, clear lesson on a topic before trying more questions. Keep the tone warm and the content age-appropriate. Use plain text.`

func buildLessonMessage(in LessonInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Learner age: %d\n", in.StudentAge)

	// Mistakes are learner text; unsafe ones never reach the prompt.
	var mistakes []string
	for _, m := range in.Mistakes {
		if m = strings.TrimSpace(m); m != "" && contentcheck.IsSafe(m) {
			mistakes = append(mistakes, m)
		}
	}
	b.WriteString("\nRecent mistakes:\n")
	if len(mistakes) == 0 {
		b.WriteString("None\n")
	}
	for _, m := range mistakes {
		fmt.Fprintf(&b, "- %s\n", m)
	}

	b.WriteString(`
Instructions:
1. Explain the topic in 3-6 sentences, addressing the mistakes above if any.
2. Give 1-3 worked examples with numbered steps.
3. Add one practice question that is easier than the mistakes above, with 3-4 options and exactly one correct.`)

	return b.String()
}

const topicsSystemPrompt = `You suggest quiz topics for children. Topics are short, specific and age-appropriate.`

func buildTopicsMessage(subject string, age, n int, existing []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Learner age: %d\n", age)
	fmt.Fprintf(&b, "Number of topics: %d\n", n)
	if len(existing) > 0 {
		fmt.Fprintf(&b, "Already available, do not repeat: %s\n", strings.Join(existing, ", "))
	}
	return b.String()
}
