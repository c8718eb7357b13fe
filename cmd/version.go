package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/bank"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("quizengine", version)
		if b, err := bank.Load(); err == nil {
			fmt.Println("question bank", b.Version())
		}
	},
}
