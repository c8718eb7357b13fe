package quiz

// Question is a single multiple-choice quiz question.
// Once returned by a source it is treated as immutable.
type Question struct {
	// ID is set for bank and remote questions. Freshly generated
	// questions have no ID until they are written to the repository.
	ID string `json:"id,omitempty"`

	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Option count bounds for a question that can be shown.
const (
	MinOptions = 3
	MaxOptions = 6
)

// Key returns the identifier used for deduplication and exclusion tracking.
// Questions without an ID are keyed by a hash of their normalized text.
func (q Question) Key() string {
	if q.ID != "" {
		return q.ID
	}
	return TextKey(q.Question)
}

// Keys returns Key and, when it differs, the text key. A generated question
// keeps its text key after it is stored under a new ID.
func (q Question) Keys() []string {
	text := TextKey(q.Question)
	if q.ID == "" || q.ID == text {
		return []string{text}
	}
	return []string{q.ID, text}
}

// Difficulty is the requested difficulty band.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty maps a case-insensitive label to a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch normalizeWord(s) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return "", false
}

// Request identifies what to resolve.
type Request struct {
	Subject    string
	Topic      string
	Difficulty Difficulty
	StudentAge int
}

// Key returns the normalized resolution key shared by the cache and
// the exclusion tracker.
func (r Request) Key() string {
	return ResolutionKey(r.Subject, r.Topic, r.Difficulty, r.StudentAge)
}

// Source labels where a resolved set of questions came from.
type Source string

const (
	SourceHybridBank  Source = "hybrid-bank"
	SourceAIGenerated Source = "ai-generated"
	SourceCache       Source = "cache"
	SourcePartial     Source = "partial"
	SourceEmpty       Source = "empty"
)
