package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/report"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Markdown summary of the library's current state",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "nomen-report.md", "path to write the report to")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := newEventLogger()
	eventLogPath := logger.Path()
	logger.Close()

	summary, err := report.GenerateSummaryReport(repo, eventLogPath)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	summary.DatabasePath, _ = resolvedDBPath()

	if err := report.WriteMarkdownReport(summary, reportOutput); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Wrote report to %s (%d files tracked, %d saved, %d flagged)\n",
		reportOutput, summary.FilesTotal, summary.FilesSaved, summary.FilesFlagged)
	return nil
}
