package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/bank"
	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/ui/theme"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect the embedded question bank",
}

var bankInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show bank version and topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bank.Load()
		if err != nil {
			return err
		}
		fmt.Printf("%s  version %s, %d questions\n", theme.Title.Render("Question bank"), b.Version(), b.Len())
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-14s  %-34s  %6s\n", "Subject", "Topic", "Count")
		for _, tc := range b.Topics() {
			fmt.Printf("%-14s  %-34s  %6d\n", truncate(tc.Subject, 14), truncate(tc.Topic, 34), tc.Count)
		}
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bank questions matching a filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		topic, _ := cmd.Flags().GetString("topic")
		diff, _ := cmd.Flags().GetString("difficulty")
		age, _ := cmd.Flags().GetInt("age")

		f := bank.Filter{Subject: subject, TopicMatch: topic, Age: age}
		if diff != "" {
			d, ok := quiz.ParseDifficulty(diff)
			if !ok {
				return fmt.Errorf("invalid difficulty %q", diff)
			}
			f.Difficulty = d
		}

		b, err := bank.Load()
		if err != nil {
			return err
		}
		entries := b.Query(f)
		if len(entries) == 0 {
			fmt.Println(theme.Hint.Render("No matching questions."))
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s / %s  %s, ages %d-%d\n",
				theme.Heading.Render(e.ID), e.Subject, e.Topic, e.Difficulty, e.MinAge, e.MaxAge)
			fmt.Printf("  %s\n", e.Question.Question)
		}
		return nil
	},
}

func init() {
	bankListCmd.Flags().StringP("subject", "s", "", "Filter by subject")
	bankListCmd.Flags().StringP("topic", "t", "", "Filter by topic (prefix or substring)")
	bankListCmd.Flags().StringP("difficulty", "d", "", "Filter by difficulty")
	bankListCmd.Flags().IntP("age", "a", 0, "Filter by student age")

	bankCmd.AddCommand(bankInfoCmd)
	bankCmd.AddCommand(bankListCmd)
}
