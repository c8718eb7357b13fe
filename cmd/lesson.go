package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/contentgen"
	"github.com/abhisek/quizengine/internal/ui/theme"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Generate a short lesson for a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		topic, _ := cmd.Flags().GetString("topic")
		age, _ := cmd.Flags().GetInt("age")
		mistakes, _ := cmd.Flags().GetStringArray("mistake")
		if subject == "" || topic == "" {
			return fmt.Errorf("--subject and --topic are required")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.gen == nil {
			return errNoProvider
		}

		l, err := e.gen.GenerateLesson(cmd.Context(), contentgen.LessonInput{
			Subject: subject, Topic: topic, StudentAge: age, Mistakes: mistakes,
		})
		if err != nil {
			return err
		}

		fmt.Println(theme.Title.Render(l.Title))
		fmt.Println(strings.Repeat("─", 60))
		fmt.Println(l.Body)
		if len(l.Examples) > 0 {
			fmt.Println()
			fmt.Println(theme.Heading.Render("Examples"))
			for _, ex := range l.Examples {
				fmt.Printf("  • %s\n", ex)
			}
		}
		fmt.Println()
		fmt.Println(theme.Heading.Render("Try it"))
		printQuestion(1, l.Practice, true)
		return nil
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics <subject>",
	Short: "Suggest new topics for a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetInt("age")
		subject := args[0]

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.gen == nil {
			return errNoProvider
		}

		var existing []string
		for _, tc := range e.bank.Topics() {
			if strings.EqualFold(tc.Subject, subject) {
				existing = append(existing, tc.Topic)
			}
		}

		topics, err := e.gen.SuggestTopics(cmd.Context(), subject, age, existing)
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println(theme.Hint.Render("No new topics suggested."))
			return nil
		}
		fmt.Println(theme.Title.Render("Suggested topics for " + subject))
		for _, t := range topics {
			fmt.Printf("  • %s\n", t)
		}
		return nil
	},
}

func init() {
	lessonCmd.Flags().StringP("subject", "s", "", "Subject")
	lessonCmd.Flags().StringP("topic", "t", "", "Topic")
	lessonCmd.Flags().IntP("age", "a", 9, "Student age")
	lessonCmd.Flags().StringArrayP("mistake", "m", nil, "A recent wrong answer to address (repeatable)")

	topicsCmd.Flags().IntP("age", "a", 9, "Student age")
}
