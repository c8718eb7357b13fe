package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizengine",
	Short: "Adaptive quiz content engine",
	Long: "quizengine resolves validated quiz questions from a shared repository, an embedded bank and\n" +
		"generative providers, and schedules spaced-repetition reviews of missed questions.",
	SilenceUsage: true,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZENGINE_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("offline", false, "Skip network tiers")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(exclusionsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}
