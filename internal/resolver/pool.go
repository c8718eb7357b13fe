package resolver

import "github.com/abhisek/quizengine/internal/quiz"

// pool is the running set of unique, well-formed candidate questions.
type pool struct {
	items []quiz.Question
	keys  map[string]bool
	texts map[string]bool
}

func newPool() *pool {
	return &pool{keys: make(map[string]bool), texts: make(map[string]bool)}
}

func (p *pool) len() int { return len(p.items) }

// add appends q unless it is malformed, excluded by ID or text key, or
// already present by key or by text.
func (p *pool) add(q quiz.Question, excluded map[string]bool) bool {
	if !wellFormed(q) {
		return false
	}
	keys, text := q.Keys(), quiz.NormalizeText(q.Question)
	for _, k := range keys {
		if excluded[k] || p.keys[k] {
			return false
		}
	}
	if p.texts[text] {
		return false
	}
	for _, k := range keys {
		p.keys[k] = true
	}
	p.texts[text] = true
	p.items = append(p.items, q)
	return true
}

// exclusions returns excluded plus every key already in the pool.
func (p *pool) exclusions(excluded map[string]bool) map[string]bool {
	out := make(map[string]bool, len(excluded)+len(p.keys))
	for k := range excluded {
		out[k] = true
	}
	for k := range p.keys {
		out[k] = true
	}
	return out
}

// snapshot returns a copy of the first n items.
func (p *pool) snapshot(n int) []quiz.Question {
	n = min(n, len(p.items))
	out := make([]quiz.Question, n)
	copy(out, p.items[:n])
	return out
}

// wellFormed reports whether q can be shown: text present, 3 to 6 unique
// options and the answer among them.
func wellFormed(q quiz.Question) bool {
	n := len(q.Options)
	return q.Question != "" && n >= quiz.MinOptions && n <= quiz.MaxOptions &&
		quiz.HasUniqueOptions(q.Options) && quiz.ContainsAnswer(q.Options, q.CorrectAnswer)
}

// keysOf returns every exclusion key of qs: IDs and text keys.
func keysOf(qs []quiz.Question) []string {
	keys := make([]string, 0, 2*len(qs))
	for _, q := range qs {
		keys = append(keys, q.Keys()...)
	}
	return keys
}
