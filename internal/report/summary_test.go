package report

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/wav"
)

func pcmFormatChunk(sampleRate uint32, channels, bits uint16) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[0:2], 1)
	binary.LittleEndian.PutUint16(buf[2:4], channels)
	binary.LittleEndian.PutUint32(buf[4:8], sampleRate)
	byteRate := sampleRate * uint32(channels) * uint32(bits) / 8
	binary.LittleEndian.PutUint32(buf[8:12], byteRate)
	binary.LittleEndian.PutUint16(buf[12:14], channels*bits/8)
	binary.LittleEndian.PutUint16(buf[14:16], bits)
	return buf
}

func writeTestWAV(t *testing.T, dir, name string) string {
	t.Helper()
	var body bytes.Buffer
	wav.WriteChunk(&body, "fmt ", pcmFormatChunk(48000, 1, 16))
	wav.WriteChunk(&body, "data", make([]byte, 4800))

	var out bytes.Buffer
	out.WriteString("RIFF")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+body.Len()))
	out.Write(size[:])
	out.WriteString("WAVE")
	out.Write(body.Bytes())

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func openTestRepo(t *testing.T) (*store.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return store.NewRepository(st, store.OSFilesystem{}), dir
}

func TestGenerateSummaryReport(t *testing.T) {
	repo, dir := openTestRepo(t)
	writeTestWAV(t, dir, "one.wav")
	writeTestWAV(t, dir, "two.wav")

	result, err := repo.Import(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(result.Imported) != 2 {
		t.Fatalf("expected 2 imported, got %d", len(result.Imported))
	}
	if err := repo.UpdateMetadata(result.Imported[0].ID, map[string]string{"fx_name": "Slam"}); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}

	report, err := GenerateSummaryReport(repo, "")
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}

	if report.FilesTotal != 2 {
		t.Errorf("FilesTotal = %d, want 2", report.FilesTotal)
	}
	if report.FilesModified != 1 {
		t.Errorf("FilesModified = %d, want 1", report.FilesModified)
	}
	if report.FilesUnmodified != 1 {
		t.Errorf("FilesUnmodified = %d, want 1", report.FilesUnmodified)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be set")
	}
}

func TestGenerateSummaryReportReadsEventLog(t *testing.T) {
	repo, _ := openTestRepo(t)

	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger: %v", err)
	}
	logger.LogSkip("/music/broken.wav", "unreadable")
	logger.LogSkip("/music/not-wav.txt", "not a WAV file")
	logger.LogSave("id-1", "/music/a.wav", "", 0, 0, os.ErrPermission)
	logger.LogSave("id-2", "/music/b.wav", "", 0, 0, os.ErrPermission)
	logger.Close()

	report, err := GenerateSummaryReport(repo, logger.Path())
	if err != nil {
		t.Fatalf("GenerateSummaryReport: %v", err)
	}

	if report.FilesSkipped != 2 {
		t.Errorf("FilesSkipped = %d, want 2", report.FilesSkipped)
	}
	if report.SaveFailures != 2 {
		t.Errorf("SaveFailures = %d, want 2", report.SaveFailures)
	}
	if len(report.TopErrors) != 1 {
		t.Fatalf("expected 1 distinct error, got %d", len(report.TopErrors))
	}
	if report.TopErrors[0].Count != 2 {
		t.Errorf("TopErrors[0].Count = %d, want 2", report.TopErrors[0].Count)
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "reports", "summary.md")

	report := &SummaryReport{
		GeneratedAt:     time.Now(),
		FilesTotal:      100,
		FilesUnmodified: 70,
		FilesModified:   20,
		FilesSaved:      10,
		FilesFlagged:    5,
		LibraryBytes:    500 * 1000 * 1000,
		DatabasePath:    "/test/database.db",
		EventLogPath:    "/test/events.jsonl",
		SkippedPaths: []SkippedInfo{
			{Path: "/music/broken.wav", Reason: "unreadable"},
		},
		TopErrors: []ErrorSummary{
			{Error: "file changed on disk", Count: 3},
			{Error: "permission denied", Count: 2},
		},
	}

	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	contentStr := string(content)

	if !strings.Contains(contentStr, "# Library Summary") {
		t.Error("Report missing main header")
	}
	if !strings.Contains(contentStr, "## Overview") {
		t.Error("Report missing Overview section")
	}
	if !strings.Contains(contentStr, "100") {
		t.Error("Report missing files tracked count")
	}
	if !strings.Contains(contentStr, "500 MB") {
		t.Error("Report missing library size")
	}
	if !strings.Contains(contentStr, "## Skipped Paths") {
		t.Error("Report missing Skipped Paths section")
	}
	if !strings.Contains(contentStr, "## Top Errors") {
		t.Error("Report missing Top Errors section")
	}
	if !strings.Contains(contentStr, "file changed on disk") {
		t.Error("Report missing error message")
	}
	if !strings.Contains(contentStr, "/test/database.db") {
		t.Error("Report missing database path")
	}
}

func TestTruncatePath(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		maxLen int
	}{
		{name: "Short path - no truncation", path: "/music/song.wav", maxLen: 50},
		{name: "Long path - truncate middle", path: "/very/long/path/to/some/audio/collection/fx/door/slam.wav", maxLen: 30},
		{name: "Exactly at limit", path: "/music/test.wav", maxLen: 15},
		{name: "Very long path", path: "/extremely/long/path/that/needs/significant/truncation/to/fit/within/limits/file.wav", maxLen: 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := truncatePath(tc.path, tc.maxLen)
			if len(result) > tc.maxLen {
				t.Errorf("Result length %d exceeds maxLen %d", len(result), tc.maxLen)
			}
			if len(tc.path) > tc.maxLen && !strings.Contains(result, "...") {
				t.Error("Expected truncated path to contain '...'")
			}
			if len(tc.path) <= tc.maxLen && result != tc.path {
				t.Errorf("Short path should not be truncated: expected '%s', got '%s'", tc.path, result)
			}
		})
	}
}

func TestMarkdownReportStructure(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "summary.md")

	report := &SummaryReport{
		GeneratedAt: time.Now(),
		FilesTotal:  10,
		FilesSaved:  10,
	}

	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, _ := os.ReadFile(outputPath)
	contentStr := string(content)
	lines := strings.Split(contentStr, "\n")

	headerCount := 0
	tableCount := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			headerCount++
		}
		if strings.Contains(line, "|") {
			tableCount++
		}
	}

	if headerCount < 2 {
		t.Errorf("Expected at least 2 headers, got %d", headerCount)
	}
	if tableCount < 3 {
		t.Errorf("Expected at least 3 table rows, got %d", tableCount)
	}
}

func TestReportWithEmptyData(t *testing.T) {
	repo, _ := openTestRepo(t)

	report, err := GenerateSummaryReport(repo, "")
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}
	if report.FilesTotal != 0 {
		t.Errorf("Expected 0 files for empty repository, got %d", report.FilesTotal)
	}

	outputPath := filepath.Join(t.TempDir(), "empty-summary.md")
	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed on empty data: %v", err)
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Error("Report file was not created for empty data")
	}
}
