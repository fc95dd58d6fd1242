package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/scan"
	"github.com/nomenaudio/core/internal/util"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Import WAV files from a directory into the library",
	Long: `Walk a directory for *.wav files, reading each one's technical facts and
metadata working set into the state database. Files already tracked with an
unchanged content hash are left alone; files whose backing file has
disappeared are pruned from the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolP("recursive", "r", false, "import subdirectories too")
}

func runImport(cmd *cobra.Command, args []string) error {
	directory := args[0]
	recursive, _ := cmd.Flags().GetBool("recursive")

	if _, err := os.Stat(directory); err != nil {
		return fmt.Errorf("source directory does not exist: %s", directory)
	}

	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := newEventLogger()
	defer logger.Close()

	importer := scan.New(repo, logger)

	start := time.Now()
	result, err := importer.Import(context.Background(), directory, recursive)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	duration := time.Since(start)

	util.SuccessLog("Import complete in %v", duration.Round(time.Millisecond))
	fmt.Printf("Imported: %d\nSkipped:  %d\nRemoved:  %d\n", len(result.Imported), len(result.Skipped), len(result.Removed))
	for _, s := range result.Skipped {
		fmt.Printf("  skip %s: %s\n", s.Path, s.Reason)
	}
	return nil
}
