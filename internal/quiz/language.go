package quiz

import "strings"

// languageSubjects is the fixed set of subjects whose bank topics are
// stored as "Language: Topic" composites.
var languageSubjects = map[string]string{
	"spanish":    "Spanish",
	"french":     "French",
	"german":     "German",
	"italian":    "Italian",
	"portuguese": "Portuguese",
	"mandarin":   "Mandarin",
	"japanese":   "Japanese",
	"arabic":     "Arabic",
	"hindi":      "Hindi",
}

// IsLanguageSubject reports whether subject is one of the language subjects.
func IsLanguageSubject(subject string) bool {
	_, ok := languageSubjects[normalizeWord(subject)]
	return ok
}

// LanguageTopicKey returns the composite bank topic for a language subject,
// e.g. ("spanish", "Greetings") -> "Spanish: Greetings". A topic that
// already carries the language prefix is returned with canonical casing.
func LanguageTopicKey(subject, topic string) string {
	lang, ok := languageSubjects[normalizeWord(subject)]
	if !ok {
		return topic
	}
	topic = strings.TrimSpace(topic)
	if prefix, rest, found := strings.Cut(topic, ":"); found && normalizeWord(prefix) == normalizeWord(lang) {
		topic = strings.TrimSpace(rest)
	}
	return lang + ": " + topic
}

// LanguagePrefix returns "Language:" for a language subject, or "".
func LanguagePrefix(subject string) string {
	lang, ok := languageSubjects[normalizeWord(subject)]
	if !ok {
		return ""
	}
	return lang + ":"
}
