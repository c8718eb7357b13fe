// Package bank provides the embedded, read-only static question bank.
package bank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/abhisek/quizengine/internal/quiz"
)

//go:embed data/bank.json
var bankJSON []byte

// SupportedMajor is the bank data format major version this build reads.
const SupportedMajor = "v1"

// Entry is one authored question with its catalogue metadata.
type Entry struct {
	quiz.Question

	Subject    string          `json:"subject"`
	Topic      string          `json:"topic"`
	Difficulty quiz.Difficulty `json:"difficulty"`
	MinAge     int             `json:"minAge"`
	MaxAge     int             `json:"maxAge"`
}

// Bank is an immutable question catalogue.
type Bank struct {
	version string
	entries []Entry
}

type bankFile struct {
	Version   string  `json:"version"`
	Questions []Entry `json:"questions"`
}

// Load parses the bank embedded in the binary.
func Load() (*Bank, error) {
	return Parse(bankJSON)
}

// Parse decodes bank data and checks its version is readable by this build.
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	v := canonicalVersion(f.Version)
	if !semver.IsValid(v) {
		return nil, fmt.Errorf("question bank version %q is not a valid semantic version", f.Version)
	}
	if semver.Major(v) != SupportedMajor {
		return nil, fmt.Errorf("question bank version %s is not supported (want %s.x)", f.Version, SupportedMajor)
	}

	seen := make(map[string]bool, len(f.Questions))
	for i, e := range f.Questions {
		if e.ID == "" {
			return nil, fmt.Errorf("question bank entry %d: missing id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("question bank entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
	}

	return New(v, f.Questions), nil
}

// New builds a bank from entries. Used by tests and alternate loaders.
func New(version string, entries []Entry) *Bank {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Bank{version: canonicalVersion(version), entries: cp}
}

func canonicalVersion(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Version returns the bank data version, e.g. "v1.3.0".
func (b *Bank) Version() string { return b.version }

// Len returns the number of entries.
func (b *Bank) Len() int { return len(b.entries) }

// Filter selects bank entries. Empty fields match everything.
type Filter struct {
	Subject    string
	Topic      string // exact, case-insensitive
	TopicMatch string // case-insensitive prefix or substring of the topic
	Difficulty quiz.Difficulty
	Age        int // 0 matches every age band
}

func (f Filter) matches(e *Entry) bool {
	if f.Subject != "" && !strings.EqualFold(strings.TrimSpace(e.Subject), strings.TrimSpace(f.Subject)) {
		return false
	}
	if f.Topic != "" && !strings.EqualFold(strings.TrimSpace(e.Topic), strings.TrimSpace(f.Topic)) {
		return false
	}
	if f.TopicMatch != "" && !strings.Contains(strings.ToLower(e.Topic), strings.ToLower(strings.TrimSpace(f.TopicMatch))) {
		return false
	}
	if f.Difficulty != "" && !strings.EqualFold(string(e.Difficulty), string(f.Difficulty)) {
		return false
	}
	if f.Age > 0 {
		if e.MinAge > 0 && f.Age < e.MinAge {
			return false
		}
		if e.MaxAge > 0 && f.Age > e.MaxAge {
			return false
		}
	}
	return true
}

// Query returns every entry matching f, in catalogue order.
func (b *Bank) Query(f Filter) []Entry {
	var out []Entry
	for i := range b.entries {
		if f.matches(&b.entries[i]) {
			out = append(out, b.entries[i])
		}
	}
	return out
}

// Sample returns up to n random questions matching f whose keys are not in
// exclude. Each returned question is a copy.
func (b *Bank) Sample(f Filter, n int, exclude map[string]bool, rng *rand.Rand) []quiz.Question {
	if n <= 0 {
		return nil
	}

	var candidates []quiz.Question
	for i := range b.entries {
		e := &b.entries[i]
		if !f.matches(e) || excluded(e.Question, exclude) {
			continue
		}
		q := e.Question
		q.Options = append([]string(nil), e.Options...)
		candidates = append(candidates, q)
	}

	quiz.Shuffle(candidates, rng)
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func excluded(q quiz.Question, exclude map[string]bool) bool {
	for _, k := range q.Keys() {
		if exclude[k] {
			return true
		}
	}
	return false
}

// TopicCount is the number of questions authored for a subject/topic.
type TopicCount struct {
	Subject string
	Topic   string
	Count   int
}

// Topics lists the catalogue grouped by subject and topic, sorted.
func (b *Bank) Topics() []TopicCount {
	counts := make(map[[2]string]int)
	for _, e := range b.entries {
		counts[[2]string{e.Subject, e.Topic}]++
	}

	out := make([]TopicCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, TopicCount{Subject: k[0], Topic: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}
