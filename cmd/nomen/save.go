package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/core"
)

var saveCmd = &cobra.Command{
	Use:   "save <id> [id...]",
	Short: "Write pending edits back into each file",
	Long: `Rewrites the backing WAV file for each id with its pending metadata edits,
via the atomic rewrite protocol (temp file, fsync, rename). A file changed on
disk since it was read fails with FILE_CHANGED rather than overwriting it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().Bool("rename", false, "rename the file to its suggested filename on save")
}

func runSave(cmd *cobra.Command, args []string) error {
	rename, _ := cmd.Flags().GetBool("rename")

	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := newEventLogger()
	defer logger.Close()

	result, err := repo.SaveBatch(context.Background(), args, rename)
	if err != nil {
		return fmt.Errorf("save batch: %w", err)
	}

	for _, saved := range result.Saved {
		logger.LogSave(saved.ID, saved.Path, "", saved.Technical.ByteSize, 0, nil)
	}
	for id, reason := range result.Failures {
		logger.LogSave(id, "", "", 0, 0, core.New(core.WriteFailed, reason))
	}

	fmt.Printf("Saved: %d\n", len(result.Saved))
	if len(result.Failures) > 0 {
		fmt.Printf("Failed: %d\n", len(result.Failures))
		for id, reason := range result.Failures {
			fmt.Printf("  %s: %s\n", id, reason)
		}
	}
	return nil
}
