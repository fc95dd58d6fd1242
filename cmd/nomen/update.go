package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id> field=value [field=value...]",
	Short: "Apply metadata field edits to a tracked file",
	Long: `Sets one or more metadata fields on a record, marking each changed field
and flipping the record's status to modified. Edits are held in the database
until 'nomen save' writes them back into the file.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]

	partial := make(map[string]string, len(args)-1)
	for _, pair := range args[1:] {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid field assignment %q, want field=value", pair)
		}
		partial[name] = value
	}

	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := repo.UpdateMetadata(id, partial); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	logger := newEventLogger()
	defer logger.Close()

	fields := make([]string, 0, len(partial))
	for name := range partial {
		fields = append(fields, name)
	}
	logger.LogUpdate(id, fields)

	fmt.Printf("Updated %d field(s) on %s\n", len(partial), id)
	return nil
}
