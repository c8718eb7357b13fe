package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/ui/theme"
)

var exclusionsCmd = &cobra.Command{
	Use:   "exclusions",
	Short: "Manage the record of questions already shown",
}

var exclusionsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget shown questions for one request, or for all with --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		tracker := e.exclusions()
		if all {
			n, err := tracker.ResetAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s %d key(s) reset.\n", theme.Correct.Render("Done."), n)
			return nil
		}

		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := tracker.Reset(cmd.Context(), req.Key()); err != nil {
			return err
		}
		fmt.Printf("%s exclusions reset for %s\n", theme.Correct.Render("Done."), req.Key())
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached quiz results",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached quiz result",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.cache().Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s %d cached result(s) removed.\n", theme.Correct.Render("Done."), n)
		return nil
	},
}

func init() {
	addRequestFlags(exclusionsResetCmd)
	exclusionsResetCmd.Flags().Bool("all", false, "Reset every request")

	exclusionsCmd.AddCommand(exclusionsResetCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
