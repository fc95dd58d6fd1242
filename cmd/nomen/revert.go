package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert <id>",
	Short: "Discard pending edits and re-read a file from disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevert,
}

func init() {
	rootCmd.AddCommand(revertCmd)
}

func runRevert(cmd *cobra.Command, args []string) error {
	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := repo.Revert(args[0])
	if err != nil {
		return fmt.Errorf("revert: %w", err)
	}

	logger := newEventLogger()
	defer logger.Close()
	logger.LogRevert(rec.ID, rec.Path)

	fmt.Printf("Reverted %s to unmodified\n", rec.ID)
	return nil
}
