package quiz

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

func TestResolutionKey_Normalizes(t *testing.T) {
	a := ResolutionKey("Maths", "Fractions & Decimals", DifficultyMedium, 9)
	b := ResolutionKey("  maths", "fractions-decimals", "medium", 9)
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if a != "maths_fractionsdecimals_medium_9" {
		t.Errorf("ResolutionKey = %q", a)
	}
}

func TestResolutionKey_AgeSeparates(t *testing.T) {
	if ResolutionKey("Maths", "Fractions", DifficultyEasy, 8) == ResolutionKey("Maths", "Fractions", DifficultyEasy, 9) {
		t.Error("ages 8 and 9 share a key")
	}
}

func TestQuestionKey(t *testing.T) {
	withID := Question{ID: "bank-1", Question: "What is 2 + 2?"}
	if got := withID.Key(); got != "bank-1" {
		t.Errorf("Key() = %q, want bank-1", got)
	}

	a := Question{Question: "What is  2 + 2?"}
	b := Question{Question: "what is 2 + 2?"}
	if a.Key() != b.Key() {
		t.Errorf("text keys differ: %q vs %q", a.Key(), b.Key())
	}
	if !strings.HasPrefix(a.Key(), "gen-") {
		t.Errorf("text key %q lacks gen- prefix", a.Key())
	}
}

func TestQuestionKeys(t *testing.T) {
	gen := Question{Question: "What is 2 + 2?"}
	if got := gen.Keys(); !slices.Equal(got, []string{gen.Key()}) {
		t.Errorf("generated Keys() = %v", got)
	}

	stored := Question{ID: "5f0c", Question: "what is  2 + 2?"}
	got := stored.Keys()
	if !slices.Equal(got, []string{"5f0c", gen.Key()}) {
		t.Errorf("stored Keys() = %v, want ID then text key %s", got, gen.Key())
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
		ok   bool
	}{
		{"easy", DifficultyEasy, true},
		{"MEDIUM", DifficultyMedium, true},
		{" Hard ", DifficultyHard, true},
		{"extreme", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDifficulty(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDifficulty(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLanguageTopicKey(t *testing.T) {
	if !IsLanguageSubject("spanish") {
		t.Error("spanish should be a language subject")
	}
	if IsLanguageSubject("Maths") {
		t.Error("Maths should not be a language subject")
	}

	tests := []struct {
		got, want string
	}{
		{LanguageTopicKey("spanish", "Greetings"), "Spanish: Greetings"},
		{LanguageTopicKey("Spanish", "spanish: Greetings"), "Spanish: Greetings"},
		{LanguageTopicKey("Science", "Forces"), "Forces"},
		{LanguagePrefix("french"), "French:"},
		{LanguagePrefix("History"), ""},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestOptions(t *testing.T) {
	if !HasUniqueOptions([]string{"a", "b", "c"}) {
		t.Error("a, b, c reported as duplicated")
	}
	if HasUniqueOptions([]string{"a", "B", " b "}) {
		t.Error("B and b reported as unique")
	}
	if !ContainsAnswer([]string{"1/2", "3/4"}, " 3/4") {
		t.Error("3/4 not found")
	}
	if ContainsAnswer([]string{"1/2", "3/4"}, "2/3") {
		t.Error("2/3 found")
	}
}

func TestShuffleOptions_KeepsSet(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	q := Question{Question: "Pick", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "c"}
	got := ShuffleOptions(q, rng)

	sorted := slices.Clone(got.Options)
	slices.Sort(sorted)
	if !slices.Equal(sorted, q.Options) {
		t.Errorf("shuffled options %v are not a permutation of %v", got.Options, q.Options)
	}
	if !slices.Equal(q.Options, []string{"a", "b", "c", "d"}) {
		t.Errorf("original mutated: %v", q.Options)
	}
	if !ContainsAnswer(got.Options, got.CorrectAnswer) {
		t.Errorf("answer %q lost", got.CorrectAnswer)
	}
}
