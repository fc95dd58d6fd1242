package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagCmd = &cobra.Command{
	Use:   "flag <id> [id...]",
	Short: "Flag files for manual review",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFlag(true),
}

var unflagCmd = &cobra.Command{
	Use:   "unflag <id> [id...]",
	Short: "Clear the review flag on files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFlag(false),
}

func init() {
	rootCmd.AddCommand(flagCmd, unflagCmd)
}

func runFlag(flagged bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repo, st, err := openRepository()
		if err != nil {
			return err
		}
		defer st.Close()

		var opErr error
		if flagged {
			opErr = repo.Flag(args)
		} else {
			opErr = repo.Unflag(args)
		}
		if opErr != nil {
			return fmt.Errorf("flag: %w", opErr)
		}

		verb := "Flagged"
		if !flagged {
			verb = "Unflagged"
		}
		fmt.Printf("%s %d file(s)\n", verb, len(args))
		return nil
	}
}
