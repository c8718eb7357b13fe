package quiz

import (
	"math/rand/v2"
	"strings"
)

// HasUniqueOptions reports whether no two options are equal after trimming
// and case folding.
func HasUniqueOptions(options []string) bool {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		k := strings.ToLower(strings.TrimSpace(o))
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}

// ContainsAnswer reports whether answer is one of the options.
func ContainsAnswer(options []string, answer string) bool {
	answer = strings.TrimSpace(answer)
	for _, o := range options {
		if strings.TrimSpace(o) == answer {
			return true
		}
	}
	return false
}

// ShuffleOptions returns a copy of q with its options permuted.
func ShuffleOptions(q Question, rng *rand.Rand) Question {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	q.Options = opts
	return q
}

// Shuffle permutes qs in place.
func Shuffle(qs []Question, rng *rand.Rand) {
	rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}
