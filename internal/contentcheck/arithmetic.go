package contentcheck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/quizengine/internal/quiz"
)

// ArithmeticCheck recomputes simple arithmetic found in the question text
// and compares it with the claimed answer. Questions that are not plain
// arithmetic, or whose answer is not a number, pass through.
type ArithmeticCheck struct{}

func (c *ArithmeticCheck) Name() string { return "arithmetic" }

func (c *ArithmeticCheck) Check(q quiz.Question) *Issue {
	claimed, ok := parseNumber(q.CorrectAnswer)
	if !ok {
		return nil
	}
	computed, ok := computeArithmetic(q.Question)
	if !ok {
		return nil
	}
	if computed != claimed {
		return &Issue{
			Check:   c.Name(),
			Message: fmt.Sprintf("computed %s but answer claims %q", computed, q.CorrectAnswer),
		}
	}
	return nil
}

var (
	// "a/b + c/d" with +, -, *, ×, ÷
	fractionArithRe = regexp.MustCompile(`(-?\d+)\s*/\s*(\d+)\s*([+\-*×÷])\s*(-?\d+)\s*/\s*(\d+)`)

	// "a + b" for integers and decimals, not touching a fraction slash
	numberArithRe = regexp.MustCompile(`(?:^|[^\d/.])(-?\d+(?:\.\d+)?)\s*([+\-*×])\s*(-?\d+(?:\.\d+)?)(?:[^\d/.]|$)`)

	// Division needs spaces so "144 / 12" is not read as a fraction.
	numberDivRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s+[/÷]\s+(-?\d+(?:\.\d+)?)`)

	// "7 x 8" as children write it.
	timesRe = regexp.MustCompile(`(\d)\s+[xX]\s+(\d)`)
)

// rat is a reduced fraction with a positive denominator.
type rat struct {
	num, den int64
}

func (r rat) String() string {
	if r.den == 1 {
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

func newRat(num, den int64) (rat, bool) {
	if den == 0 {
		return rat{}, false
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	return rat{num / g, den / g}, true
}

// computeArithmetic extracts the first binary expression from text and
// evaluates it exactly.
func computeArithmetic(text string) (rat, bool) {
	text = timesRe.ReplaceAllString(text, "$1 × $2")

	if m := fractionArithRe.FindStringSubmatch(text); m != nil {
		a, okA := fractionFromParts(m[1], m[2])
		b, okB := fractionFromParts(m[4], m[5])
		if okA && okB {
			return apply(a, m[3], b)
		}
	}
	if m := numberArithRe.FindStringSubmatch(text); m != nil {
		a, okA := parseNumber(m[1])
		b, okB := parseNumber(m[3])
		if okA && okB {
			return apply(a, m[2], b)
		}
	}
	if m := numberDivRe.FindStringSubmatch(text); m != nil {
		a, okA := parseNumber(m[1])
		b, okB := parseNumber(m[2])
		if okA && okB {
			return apply(a, "/", b)
		}
	}
	return rat{}, false
}

func apply(a rat, op string, b rat) (rat, bool) {
	switch op {
	case "+":
		return newRat(a.num*b.den+b.num*a.den, a.den*b.den)
	case "-":
		return newRat(a.num*b.den-b.num*a.den, a.den*b.den)
	case "*", "×":
		return newRat(a.num*b.num, a.den*b.den)
	case "/", "÷":
		if b.num == 0 {
			return rat{}, false
		}
		return newRat(a.num*b.den, a.den*b.num)
	}
	return rat{}, false
}

func fractionFromParts(num, den string) (rat, bool) {
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return rat{}, false
	}
	d, err := strconv.ParseInt(den, 10, 64)
	if err != nil {
		return rat{}, false
	}
	return newRat(n, d)
}

// parseNumber reads an integer, a decimal with up to six places, or a
// fraction "a/b". Anything else is not a number.
func parseNumber(s string) (rat, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return rat{}, false
	}
	if num, den, found := strings.Cut(s, "/"); found {
		return fractionFromParts(strings.TrimSpace(num), strings.TrimSpace(den))
	}
	if whole, frac, found := strings.Cut(s, "."); found {
		if len(frac) == 0 || len(frac) > 6 {
			return rat{}, false
		}
		den := int64(1)
		for range frac {
			den *= 10
		}
		n, err := strconv.ParseInt(whole+frac, 10, 64)
		if err != nil {
			return rat{}, false
		}
		return newRat(n, den)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return rat{}, false
	}
	return rat{n, 1}, true
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
