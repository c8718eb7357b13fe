package contentgen

import "github.com/abhisek/quizengine/internal/llm"

// QuizSchema is the response shape for quiz generation.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A set of multiple-choice quiz questions for a child learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    3,
							"maxItems":    6,
							"description": "Answer options, exactly one of them correct",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The correct option, copied exactly from options",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the answer",
						},
					},
					"required":             []any{"question", "options", "correctAnswer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"quiz"},
		"additionalProperties": false,
	},
	// Items are checked one by one after parsing.
	Envelope: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz": map[string]any{"type": "array"},
		},
		"required": []any{"quiz"},
	},
}

// LessonSchema is the response shape for lesson generation.
var LessonSchema = &llm.Schema{
	Name:        "topic-lesson",
	Description: "A short lesson with worked examples and one practice question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title for the lesson (3-8 words)",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Clear, age-appropriate explanation of the topic (3-6 sentences)",
			},
			"examples": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 worked examples",
			},
			"practice": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":      map[string]any{"type": "string"},
					"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"correctAnswer": map[string]any{"type": "string"},
					"explanation":   map[string]any{"type": "string"},
				},
				"required":             []any{"question", "options", "correctAnswer", "explanation"},
				"additionalProperties": false,
			},
		},
		"required":             []any{"title", "body", "examples", "practice"},
		"additionalProperties": false,
	},
}

// TopicsSchema is the response shape for topic suggestions.
var TopicsSchema = &llm.Schema{
	Name:        "topic-suggestions",
	Description: "Suggested quiz topics within a subject",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Short topic names (1-5 words each)",
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}
