package resolver

import (
	"testing"

	"github.com/abhisek/quizengine/internal/quiz"
)

func TestPool_ExcludesStoredCopyByTextKey(t *testing.T) {
	served := quiz.Question{
		Question:      "How many halves make a whole?",
		Options:       []string{"2", "3", "4"},
		CorrectAnswer: "2",
	}
	excluded := map[string]bool{}
	for _, k := range keysOf([]quiz.Question{served}) {
		excluded[k] = true
	}

	stored := served
	stored.ID = "3b1d2c4e-0000-4000-8000-000000000001"
	stored.Question = "How many halves make a  WHOLE?"

	p := newPool()
	if p.add(stored, excluded) {
		t.Fatal("repository copy of a served question was accepted")
	}

	other := served
	other.ID = "other"
	other.Question = "How many quarters make a whole?"
	other.Options = []string{"4", "2", "8"}
	other.CorrectAnswer = "4"
	if !p.add(other, excluded) {
		t.Fatal("unrelated question was rejected")
	}
}

func TestPool_ExclusionsCarryTextKeys(t *testing.T) {
	p := newPool()
	q := question("bank-7", "What is 6 x 7?")
	if !p.add(q, nil) {
		t.Fatal("add failed")
	}
	ex := p.exclusions(map[string]bool{"earlier": true})
	for _, k := range []string{"earlier", "bank-7", quiz.TextKey(q.Question)} {
		if !ex[k] {
			t.Errorf("exclusions missing %q", k)
		}
	}
}

func TestWellFormed_OptionBounds(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		want    bool
	}{
		{"two options", []string{"Beta", "Gamma"}, false},
		{"three options", []string{"Alpha", "Beta", "Gamma"}, true},
		{"six options", []string{"Alpha", "Beta", "Gamma", "Delta", "Eps", "Zeta"}, true},
		{"seven options", []string{"Alpha", "Beta", "Gamma", "Delta", "Eps", "Zeta", "Eta"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := question("q", "Which one?")
			q.Options = tt.options
			if got := wellFormed(q); got != tt.want {
				t.Errorf("wellFormed() = %v, want %v", got, tt.want)
			}
		})
	}
}
