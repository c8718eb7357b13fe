package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/ui/theme"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a quiz for a subject and topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res := e.resolver().Resolve(cmd.Context(), req)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Source    quiz.Source     `json:"source"`
				Questions []quiz.Question `json:"quiz"`
			}{res.Source, res.Questions})
		}

		fmt.Printf("%s  %s / %s  (%s)\n",
			theme.Title.Render("Quiz"), req.Subject, req.Topic, theme.SourceLabel(string(res.Source)))
		if len(res.Questions) == 0 {
			fmt.Println(theme.Hint.Render("No questions available."))
			return nil
		}
		fmt.Println(strings.Repeat("─", 60))
		for i, q := range res.Questions {
			printQuestion(i+1, q, true)
		}
		return nil
	},
}

func printQuestion(n int, q quiz.Question, withAnswer bool) {
	fmt.Printf("%s %s\n", theme.Heading.Render(fmt.Sprintf("%d.", n)), q.Question)
	for j, opt := range q.Options {
		fmt.Printf("   %c) %s\n", 'a'+j, opt)
	}
	if withAnswer {
		fmt.Printf("   %s %s\n", theme.Correct.Render("answer:"), q.CorrectAnswer)
		if q.Explanation != "" {
			fmt.Printf("   %s\n", theme.Hint.Render(q.Explanation))
		}
	}
	fmt.Println()
}

// requestFromFlags reads the shared quiz request flags.
func requestFromFlags(cmd *cobra.Command) (quiz.Request, error) {
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	diff, _ := cmd.Flags().GetString("difficulty")
	age, _ := cmd.Flags().GetInt("age")

	if strings.TrimSpace(subject) == "" || strings.TrimSpace(topic) == "" {
		return quiz.Request{}, fmt.Errorf("--subject and --topic are required")
	}
	d, ok := quiz.ParseDifficulty(diff)
	if !ok {
		return quiz.Request{}, fmt.Errorf("invalid difficulty %q (want easy, medium or hard)", diff)
	}
	return quiz.Request{Subject: subject, Topic: topic, Difficulty: d, StudentAge: age}, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subject", "s", "", "Subject (e.g. Math, Science, French)")
	cmd.Flags().StringP("topic", "t", "", "Topic within the subject")
	cmd.Flags().StringP("difficulty", "d", "medium", "Difficulty: easy, medium or hard")
	cmd.Flags().IntP("age", "a", 9, "Student age")
}

func init() {
	addRequestFlags(resolveCmd)
	resolveCmd.Flags().Bool("json", false, "Print the result as JSON")
}
