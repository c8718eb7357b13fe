package quiz

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ResolutionKey builds the case-normalized, non-alphanumeric-stripped key
// for a (subject, topic, difficulty, age) tuple.
func ResolutionKey(subject, topic string, difficulty Difficulty, age int) string {
	return fmt.Sprintf("%s_%s_%s_%d",
		normalizeWord(subject),
		normalizeWord(topic),
		normalizeWord(string(difficulty)),
		age,
	)
}

// normalizeWord lowercases s and drops everything that is not a letter or digit.
func normalizeWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeText collapses whitespace and lowercases question text for
// duplicate comparison.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TextKey derives a stable identifier from question text.
func TextKey(text string) string {
	sum := sha1.Sum([]byte(NormalizeText(text)))
	return "gen-" + hex.EncodeToString(sum[:8])
}
