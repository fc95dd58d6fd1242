package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nomenaudio/core/internal/store"
)

// SummaryReport is a snapshot of one import/edit/save session, built from
// the repository's current state plus whatever the session's event log
// recorded.
type SummaryReport struct {
	GeneratedAt time.Time
	Duration    time.Duration

	FilesTotal      int
	FilesUnmodified int
	FilesModified   int
	FilesSaved      int
	FilesFlagged    int
	LibraryBytes    int64

	FilesSkipped int
	SkippedPaths []SkippedInfo

	SaveFailures int
	TopErrors    []ErrorSummary

	DatabasePath string
	EventLogPath string
	ImportPath   string
}

// ErrorSummary is one distinct error message with its occurrence count.
type ErrorSummary struct {
	Error string
	Count int
}

// SkippedInfo is one path the importer declined to ingest.
type SkippedInfo struct {
	Path   string
	Reason string
}

// GenerateSummaryReport builds a SummaryReport from the repository's
// current record set plus the session's event log (for skips and
// failures, which the repository itself does not retain).
func GenerateSummaryReport(repo *store.Repository, eventLogPath string) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt:  time.Now(),
		EventLogPath: eventLogPath,
	}

	records, err := repo.List(store.ListFilters{})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	report.FilesTotal = len(records)
	for _, rec := range records {
		switch rec.Status {
		case store.StatusUnmodified:
			report.FilesUnmodified++
		case store.StatusModified:
			report.FilesModified++
		case store.StatusSaved:
			report.FilesSaved++
		}
		if rec.Flagged {
			report.FilesFlagged++
		}
		report.LibraryBytes += rec.Technical.ByteSize
	}

	events, err := readEventLog(eventLogPath)
	if err != nil {
		return report, nil // a missing or unreadable event log degrades the report, it doesn't fail it
	}

	skipped := make([]SkippedInfo, 0)
	errorCounts := make(map[string]int)
	for _, e := range events {
		switch e.Event {
		case EventSkip:
			skipped = append(skipped, SkippedInfo{Path: e.Path, Reason: e.Extra["reason"]})
		}
		if e.Level == LevelError && e.Error != "" {
			errorCounts[e.Error]++
		}
	}
	report.FilesSkipped = len(skipped)
	report.SkippedPaths = skipped

	errs := make([]ErrorSummary, 0, len(errorCounts))
	for msg, count := range errorCounts {
		errs = append(errs, ErrorSummary{Error: msg, Count: count})
		report.SaveFailures += count
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Count > errs[j].Count })
	if len(errs) > 10 {
		errs = errs[:10]
	}
	report.TopErrors = errs

	return report, nil
}

func readEventLog(path string) ([]Event, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, scanner.Err()
}

// WriteMarkdownReport writes the summary report as Markdown.
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString("# Library Summary\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}
	md.WriteString("---\n\n")

	md.WriteString("## Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Files Tracked | %d |\n", report.FilesTotal))
	md.WriteString(fmt.Sprintf("| Unmodified | %d |\n", report.FilesUnmodified))
	md.WriteString(fmt.Sprintf("| Modified (unsaved) | %d |\n", report.FilesModified))
	md.WriteString(fmt.Sprintf("| Saved | %d |\n", report.FilesSaved))
	if report.FilesFlagged > 0 {
		md.WriteString(fmt.Sprintf("| Flagged for review | %d |\n", report.FilesFlagged))
	}
	md.WriteString(fmt.Sprintf("| Library Size | %s |\n", humanize.Bytes(uint64(report.LibraryBytes))))
	md.WriteString("\n")

	if len(report.SkippedPaths) > 0 {
		md.WriteString("## Skipped Paths\n\n")
		md.WriteString("| Path | Reason |\n")
		md.WriteString("|------|--------|\n")
		for _, s := range report.SkippedPaths {
			md.WriteString(fmt.Sprintf("| `%s` | %s |\n", truncatePath(s.Path, 80), s.Reason))
		}
		md.WriteString("\n")
	}

	if len(report.TopErrors) > 0 {
		md.WriteString("## Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, e := range report.TopErrors {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", e.Count, e.Error))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// truncatePath truncates a file path to a maximum length, keeping the
// start and end and eliding the middle.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
