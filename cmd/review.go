package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/review"
	"github.com/abhisek/quizengine/internal/srs"
	"github.com/abhisek/quizengine/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Inspect and practice spaced-repetition review items",
}

var reviewDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List items due for review, most urgent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		return listItems(cmd, "Due for review", func(s *srs.Scheduler) ([]srs.ReviewItem, error) {
			return s.GetDueItems(cmd.Context(), subject)
		})
	},
}

var reviewStrugglingCmd = &cobra.Command{
	Use:   "struggling",
	Short: "List items the learner keeps missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listItems(cmd, "Struggling", func(s *srs.Scheduler) ([]srs.ReviewItem, error) {
			return s.GetStrugglingItems(cmd.Context())
		})
	},
}

var reviewMasteredCmd = &cobra.Command{
	Use:   "mastered",
	Short: "List mastered items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listItems(cmd, "Mastered", func(s *srs.Scheduler) ([]srs.ReviewItem, error) {
			return s.GetMasteredItems(cmd.Context())
		})
	},
}

var reviewRecordCmd = &cobra.Command{
	Use:   "record <id> <quality>",
	Short: "Record a review grade (0-5) for an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quality, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quality %q: %w", args[1], err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		it, err := e.scheduler().RecordReview(cmd.Context(), args[0], quality)
		if err != nil {
			return err
		}
		if it == nil {
			return fmt.Errorf("review item %s not found", args[0])
		}
		fmt.Printf("%s next review in %d day(s), ease %.2f (%s)\n",
			theme.Correct.Render("Recorded."), it.Interval, it.EaseFactor, it.Status())
		return nil
	},
}

var reviewStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize review items",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := e.scheduler().Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(theme.Title.Render("Review items"))
		fmt.Printf("  Total:       %d\n", st.Total)
		fmt.Printf("  Due:         %d\n", st.Due)
		fmt.Printf("  Struggling:  %d\n", st.Struggling)
		fmt.Printf("  Mastered:    %d\n", st.Mastered)
		return nil
	},
}

var reviewClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all review items",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to clear review items without --yes")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.scheduler().ClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(theme.Correct.Render("Review items cleared."))
		return nil
	},
}

var reviewQuizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Review the most urgent due topics and reschedule them by how well you recall",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		age, _ := cmd.Flags().GetInt("age")
		maxTopics, _ := cmd.Flags().GetInt("max-topics")
		attempts, _ := cmd.Flags().GetInt("attempts")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cfg := review.DefaultBuilderConfig()
		cfg.StudentAge = age
		cfg.MaxTopics = maxTopics
		sections, err := review.NewBuilder(e.scheduler(), e.resolver(), cfg).Build(cmd.Context(), subject)
		if err != nil {
			return err
		}
		if len(sections) == 0 {
			fmt.Println(theme.Hint.Render("Nothing due. Come back later!"))
			return nil
		}

		in := bufio.NewScanner(os.Stdin)
		rec := review.NewRecorder(e.scheduler(), e.logger)
		for _, sec := range sections {
			fmt.Printf("%s  %s / %s  (%d due, %s)\n",
				theme.Title.Render("Review"), sec.Subject, sec.Topic, len(sec.Due), theme.SourceLabel(string(sec.Source)))
			fmt.Println(strings.Repeat("─", 60))

			updated, err := rec.RecordRecalls(cmd.Context(), askRecall(in, sec.Due, attempts))
			if err != nil {
				return err
			}
			for _, it := range updated {
				fmt.Printf("  %s next review in %d day(s)\n", theme.Hint.Render(truncate(it.Question, 50)), it.Interval)
			}

			if len(sec.Questions) == 0 {
				continue
			}
			fmt.Println(theme.Heading.Render("\nPractice"))
			sum, err := rec.RecordResults(cmd.Context(), sec.Subject, sec.Topic, askAll(in, sec.Questions))
			if err != nil {
				return err
			}
			fmt.Printf("%s %d/%d correct\n\n", theme.Heading.Render("Score:"), sum.Correct, sum.Correct+sum.Incorrect)
		}
		return nil
	},
}

// askRecall asks each due item's question until it is answered correctly
// or maxAttempts runs out.
func askRecall(in *bufio.Scanner, due []srs.ReviewItem, maxAttempts int) []review.Recall {
	maxAttempts = max(maxAttempts, 1)
	recalls := make([]review.Recall, 0, len(due))
	for i, it := range due {
		fmt.Printf("%s %s\n", theme.Heading.Render(fmt.Sprintf("%d.", i+1)), it.Question)
		rc := review.Recall{Item: it}
		for rc.Attempts < maxAttempts && !rc.Correct {
			rc.Attempts++
			fmt.Print("> ")
			if !in.Scan() {
				break
			}
			rc.Correct = review.Recalled(it, in.Text())
			if !rc.Correct && rc.Attempts < maxAttempts {
				fmt.Println(theme.Hint.Render("Try again."))
			}
		}
		if rc.Correct {
			fmt.Println(theme.Correct.Render("Correct!"))
		} else {
			fmt.Printf("%s %s\n", theme.Failure.Render("Answer:"), it.CorrectAnswer)
		}
		fmt.Println()
		recalls = append(recalls, rc)
	}
	return recalls
}

func listItems(cmd *cobra.Command, title string, fetch func(*srs.Scheduler) ([]srs.ReviewItem, error)) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	items, err := fetch(e.scheduler())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println(theme.Hint.Render("No items."))
		return nil
	}

	now := time.Now()
	fmt.Println(theme.Title.Render(title))
	fmt.Printf("%-36s  %-10s  %-18s  %-10s  %5s  %6s\n", "ID", "Subject", "Topic", "Status", "Wrong", "Days")
	fmt.Println(strings.Repeat("─", 96))
	for _, it := range items {
		fmt.Printf("%-36s  %-10s  %-18s  %-10s  %5d  %6d\n",
			it.ID, truncate(it.Subject, 10), truncate(it.Topic, 18), it.Status(), it.WrongCount, it.DaysUntilReview(now))
		fmt.Printf("  %s\n", theme.Hint.Render(truncate(it.Question, 90)))
	}
	return nil
}

func init() {
	reviewDueCmd.Flags().StringP("subject", "s", "", "Only items for this subject")
	reviewClearCmd.Flags().Bool("yes", false, "Confirm deletion")
	reviewQuizCmd.Flags().StringP("subject", "s", "", "Only topics for this subject")
	reviewQuizCmd.Flags().IntP("age", "a", 9, "Student age")
	reviewQuizCmd.Flags().Int("max-topics", review.DefaultBuilderConfig().MaxTopics, "Maximum topics to review")
	reviewQuizCmd.Flags().Int("attempts", 2, "Tries allowed per due item")

	reviewCmd.AddCommand(reviewDueCmd)
	reviewCmd.AddCommand(reviewStrugglingCmd)
	reviewCmd.AddCommand(reviewMasteredCmd)
	reviewCmd.AddCommand(reviewRecordCmd)
	reviewCmd.AddCommand(reviewStatsCmd)
	reviewCmd.AddCommand(reviewClearCmd)
	reviewCmd.AddCommand(reviewQuizCmd)
}
