package contentgen

// Config controls generation requests.
type Config struct {
	// QuizSize is how many questions a quiz request asks for.
	QuizSize int

	// MaxTokens is the token budget for quiz responses. Lessons and
	// topic lists use fixed smaller budgets.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MaxTopics caps the number of topics SuggestTopics asks for.
	MaxTopics int
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		QuizSize:    10,
		MaxTokens:   4096,
		Temperature: 0.8,
		MaxTopics:   8,
	}
}
