package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/review"
	"github.com/abhisek/quizengine/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz in the terminal and schedule reviews for missed questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res := e.resolver().Resolve(cmd.Context(), req)
		if len(res.Questions) == 0 {
			fmt.Println(theme.Hint.Render("No questions available for this topic."))
			return nil
		}
		fmt.Printf("%s  %s / %s  (%s)\n\n",
			theme.Title.Render("Quiz"), req.Subject, req.Topic, theme.SourceLabel(string(res.Source)))

		answers := askAll(bufio.NewScanner(os.Stdin), res.Questions)

		sum, err := review.NewRecorder(e.scheduler(), e.logger).
			RecordResults(cmd.Context(), req.Subject, req.Topic, answers)
		if err != nil {
			return err
		}
		fmt.Printf("%s %d/%d correct\n", theme.Heading.Render("Score:"), sum.Correct, sum.Correct+sum.Incorrect)
		if sum.Incorrect > 0 {
			fmt.Println(theme.Hint.Render(fmt.Sprintf("%d question(s) added to your review queue.", sum.Incorrect)))
		}
		return nil
	},
}

// askAll prompts for each question. An answer may be the option letter or
// the option text.
func askAll(in *bufio.Scanner, qs []quiz.Question) []review.Answer {
	answers := make([]review.Answer, 0, len(qs))
	for i, q := range qs {
		printQuestion(i+1, q, false)
		fmt.Print("> ")
		var given string
		if in.Scan() {
			given = optionFor(q, in.Text())
		}
		a := review.Answer{Question: q, Given: given}
		if a.Correct() {
			fmt.Println(theme.Correct.Render("Correct!"))
		} else {
			fmt.Printf("%s %s\n", theme.Failure.Render("Not quite. Answer:"), q.CorrectAnswer)
		}
		fmt.Println()
		answers = append(answers, a)
	}
	return answers
}

func optionFor(q quiz.Question, input string) string {
	s := strings.TrimSpace(input)
	if len(s) == 1 {
		idx := int(strings.ToLower(s)[0] - 'a')
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	return s
}

func init() {
	addRequestFlags(quizCmd)
}
