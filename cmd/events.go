package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/store"
	"github.com/abhisek/quizengine/internal/ui/theme"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent content validation events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")
		issues, _ := cmd.Flags().GetBool("issues")
		kind, _ := cmd.Flags().GetString("kind")

		s, err := openLocalStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, Kind: kind}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryValidationEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println(theme.Hint.Render("No validation events found."))
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-7s  %-12s  %-20s  %4s  %4s  %s\n",
			"ID", "Timestamp", "Kind", "Subject", "Topic", "OK", "Rej", "Blocked")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range events {
			blocked := ""
			if e.WasBlocked {
				blocked = theme.Failure.Render("yes")
			}
			fmt.Printf("%-5d  %-19s  %-7s  %-12s  %-20s  %4d  %4d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				truncate(e.Subject, 12),
				truncate(e.Topic, 20),
				e.Accepted,
				e.Rejected,
				blocked,
			)
			if issues {
				for _, is := range e.Issues {
					fmt.Printf("       %s\n", theme.Warning.Render(is))
				}
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().Duration("since", 0, "Only events newer than this (e.g. 24h)")
	eventsCmd.Flags().Bool("issues", false, "Print each event's issues")
	eventsCmd.Flags().StringP("kind", "k", "", "Filter by kind (quiz, lesson, topics)")
}
