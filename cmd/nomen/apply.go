package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply-metadata <source-id> <target-id> [target-id...]",
	Short: "Copy metadata fields from one record onto others",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringSlice("fields", nil, "fields to copy (default: category, subcategory, cat_id, category_full, keywords)")
}

func runApply(cmd *cobra.Command, args []string) error {
	fields, _ := cmd.Flags().GetStringSlice("fields")
	if len(fields) == 0 {
		fields = []string{"category", "subcategory", "cat_id", "category_full", "keywords"}
	}

	sourceID := args[0]
	targetIDs := args[1:]

	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := repo.ApplyMetadata(sourceID, targetIDs, fields); err != nil {
		return fmt.Errorf("apply-metadata: %w", err)
	}

	logger := newEventLogger()
	defer logger.Close()
	logger.LogApply(sourceID, targetIDs, fields)

	fmt.Printf("Applied %s onto %d target(s)\n", strings.Join(fields, ", "), len(targetIDs))
	return nil
}
