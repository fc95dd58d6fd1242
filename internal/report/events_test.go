package report

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewEventLogger(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if logger.path == "" {
		t.Error("EventLogger path is empty")
	}

	if _, err := os.Stat(logger.path); os.IsNotExist(err) {
		t.Errorf("Event log file was not created at %s", logger.path)
	}

	filename := filepath.Base(logger.path)
	if len(filename) < len("events-20060102-150405.jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}
}

func TestEventLogger_Log(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	event := &Event{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Event:     EventImport,
		FileID:    "test-id",
		Path:      "/test/path.wav",
	}

	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	logger.Close()
	content, err := os.ReadFile(logger.path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(content) == 0 {
		t.Error("Log file is empty")
	}

	var decoded Event
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("Failed to decode JSONL: %v", err)
	}
	if decoded.FileID != "test-id" {
		t.Errorf("Expected file_id 'test-id', got '%s'", decoded.FileID)
	}
	if decoded.Path != "/test/path.wav" {
		t.Errorf("Expected path '/test/path.wav', got '%s'", decoded.Path)
	}
}

func TestEventLogger_MultipleEvents(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	events := []*Event{
		{Level: LevelInfo, Event: EventImport, FileID: "id1", Path: "/path1.wav"},
		{Level: LevelDebug, Event: EventUpdate, FileID: "id2", Fields: []string{"fx_name"}},
		{Level: LevelWarning, Event: EventSkip, Path: "/path2.wav"},
		{Level: LevelError, Event: EventError, Path: "/path3.wav", Error: "test error"},
	}

	for _, event := range events {
		if err := logger.Log(event); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	logger.Close()

	file, err := os.Open(logger.path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode line %d: %v", lineCount, err)
		}
		if decoded.Timestamp.IsZero() {
			t.Errorf("Line %d: timestamp not set", lineCount)
		}
	}

	if lineCount != len(events) {
		t.Errorf("Expected %d events, got %d", len(events), lineCount)
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	const numGoroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				event := &Event{
					Level:  LevelInfo,
					Event:  EventImport,
					FileID: "concurrent-test",
				}
				if err := logger.Log(event); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}(i)
	}

	wg.Wait()
	logger.Close()

	file, err := os.Open(logger.path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode line %d: %v", lineCount, err)
		}
	}

	expected := numGoroutines * eventsPerGoroutine
	if lineCount != expected {
		t.Errorf("Expected %d events, got %d", expected, lineCount)
	}
}

func TestEventLogger_LogImport(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if err := logger.LogImport("file123", "/audio/slam.wav", 12345678); err != nil {
		t.Fatalf("LogImport failed: %v", err)
	}

	logger.Close()

	content, _ := os.ReadFile(logger.path)
	var event Event
	json.Unmarshal(content, &event)

	if event.Event != EventImport {
		t.Errorf("Expected event type 'import', got '%s'", event.Event)
	}
	if event.FileID != "file123" {
		t.Errorf("Expected file_id 'file123', got '%s'", event.FileID)
	}
	if event.BytesWritten != 12345678 {
		t.Errorf("Expected bytes_written 12345678, got %d", event.BytesWritten)
	}
}

func TestEventLogger_LogSave(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	duration := 250 * time.Millisecond
	if err := logger.LogSave("file123", "/src/test.wav", "/src/renamed.wav", 12345678, duration, nil); err != nil {
		t.Fatalf("LogSave failed: %v", err)
	}

	logger.Close()

	content, _ := os.ReadFile(logger.path)
	var event Event
	json.Unmarshal(content, &event)

	if event.Event != EventSave {
		t.Errorf("Expected event type 'save', got '%s'", event.Event)
	}
	if event.DestPath != "/src/renamed.wav" {
		t.Errorf("Expected dest_path '/src/renamed.wav', got '%s'", event.DestPath)
	}
	if event.Duration != duration.Milliseconds() {
		t.Errorf("Expected duration %d ms, got %d ms", duration.Milliseconds(), event.Duration)
	}
}

func TestEventLogger_LogSaveError(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if err := logger.LogSave("file123", "/src/test.wav", "", 0, 0, os.ErrNotExist); err != nil {
		t.Fatalf("LogSave failed: %v", err)
	}

	logger.Close()

	content, _ := os.ReadFile(logger.path)
	var event Event
	json.Unmarshal(content, &event)

	if event.Level != LevelError {
		t.Errorf("Expected level 'error', got '%s'", event.Level)
	}
	if event.Error == "" {
		t.Error("Expected error message, got empty string")
	}
}

func TestEventLogger_LogAnalyze(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if err := logger.LogAnalyze("file123", "DOORWood", 80*time.Millisecond, nil); err != nil {
		t.Fatalf("LogAnalyze failed: %v", err)
	}

	logger.Close()

	content, _ := os.ReadFile(logger.path)
	var event Event
	json.Unmarshal(content, &event)

	if event.Event != EventAnalyze {
		t.Errorf("Expected event type 'analyze', got '%s'", event.Event)
	}
	if event.CatID != "DOORWood" {
		t.Errorf("Expected cat_id 'DOORWood', got '%s'", event.CatID)
	}
}

func TestEventLogger_LogApply(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	targets := []string{"id-a", "id-b", "id-c"}
	if err := logger.LogApply("id-source", targets, []string{"designer", "library"}); err != nil {
		t.Fatalf("LogApply failed: %v", err)
	}

	logger.Close()

	content, _ := os.ReadFile(logger.path)
	var event Event
	json.Unmarshal(content, &event)

	if event.Event != EventApply {
		t.Errorf("Expected event type 'apply', got '%s'", event.Event)
	}
	if event.FileID != "id-source" {
		t.Errorf("Expected file_id 'id-source', got '%s'", event.FileID)
	}
	if event.Extra["target_count"] != "3" {
		t.Errorf("Expected target_count '3', got '%s'", event.Extra["target_count"])
	}
}

func TestEventLogger_NullLogger(t *testing.T) {
	logger := NullLogger()

	err := logger.Log(&Event{Level: LevelInfo, Event: EventImport})
	if err != nil {
		t.Errorf("NullLogger.Log should not return error, got: %v", err)
	}

	err = logger.LogImport("id", "/path", 123)
	if err != nil {
		t.Errorf("NullLogger.LogImport should not return error, got: %v", err)
	}

	err = logger.Close()
	if err != nil {
		t.Errorf("NullLogger.Close should not return error, got: %v", err)
	}

	path := logger.Path()
	if path != "" {
		t.Errorf("NullLogger.Path should return empty string, got: %s", path)
	}
}

func TestEventLogger_AutoTimestamp(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	event := &Event{
		Level: LevelInfo,
		Event: EventImport,
	}

	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	logger.Close()

	content, _ := os.ReadFile(logger.path)
	var decoded Event
	json.Unmarshal(content, &decoded)

	if decoded.Timestamp.IsZero() {
		t.Error("Expected timestamp to be auto-set, but it's zero")
	}
	if time.Since(decoded.Timestamp) > 5*time.Second {
		t.Errorf("Timestamp is too old: %v", decoded.Timestamp)
	}
}

func TestEventLogger_JSONLFormat(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	events := []Event{
		{Level: LevelInfo, Event: EventImport, FileID: "id1"},
		{Level: LevelWarning, Event: EventSkip, Path: "/bad.wav"},
		{Level: LevelError, Event: EventError, Error: "test error"},
	}

	for _, e := range events {
		if err := logger.Log(&e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	logger.Close()

	file, err := os.Open(logger.path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		var decoded Event
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v\nLine: %s", lineNum, err, line)
		}
		if decoded.Level == "" {
			t.Errorf("Line %d: missing level", lineNum)
		}
		if decoded.Event == "" {
			t.Errorf("Line %d: missing event type", lineNum)
		}
		if decoded.Timestamp.IsZero() {
			t.Errorf("Line %d: missing timestamp", lineNum)
		}
	}

	if lineNum != len(events) {
		t.Errorf("Expected %d lines, got %d", len(events), lineNum)
	}
}

func TestEventLogger_LogLevelFiltering(t *testing.T) {
	testCases := []struct {
		name          string
		minLevel      EventLevel
		events        []Event
		expectedCount int
	}{
		{
			name:     "LevelDebug logs all",
			minLevel: LevelDebug,
			events: []Event{
				{Level: LevelDebug, Event: EventUpdate},
				{Level: LevelInfo, Event: EventImport},
				{Level: LevelWarning, Event: EventSkip},
				{Level: LevelError, Event: EventError},
			},
			expectedCount: 4,
		},
		{
			name:     "LevelInfo skips debug",
			minLevel: LevelInfo,
			events: []Event{
				{Level: LevelDebug, Event: EventUpdate},
				{Level: LevelInfo, Event: EventImport},
				{Level: LevelWarning, Event: EventSkip},
				{Level: LevelError, Event: EventError},
			},
			expectedCount: 3,
		},
		{
			name:     "LevelWarning skips debug and info",
			minLevel: LevelWarning,
			events: []Event{
				{Level: LevelDebug, Event: EventUpdate},
				{Level: LevelInfo, Event: EventImport},
				{Level: LevelWarning, Event: EventSkip},
				{Level: LevelError, Event: EventError},
			},
			expectedCount: 2,
		},
		{
			name:     "LevelError only logs errors",
			minLevel: LevelError,
			events: []Event{
				{Level: LevelDebug, Event: EventUpdate},
				{Level: LevelInfo, Event: EventImport},
				{Level: LevelWarning, Event: EventSkip},
				{Level: LevelError, Event: EventError},
			},
			expectedCount: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			logger, err := NewEventLogger(tmpDir, tc.minLevel)
			if err != nil {
				t.Fatalf("NewEventLogger failed: %v", err)
			}
			defer logger.Close()

			for _, e := range tc.events {
				if err := logger.Log(&e); err != nil {
					t.Fatalf("Log failed: %v", err)
				}
			}

			logger.Close()

			file, err := os.Open(logger.path)
			if err != nil {
				t.Fatalf("Failed to open log file: %v", err)
			}
			defer file.Close()

			scanner := bufio.NewScanner(file)
			lineCount := 0
			for scanner.Scan() {
				lineCount++
			}

			if lineCount != tc.expectedCount {
				t.Errorf("Expected %d events logged, got %d", tc.expectedCount, lineCount)
			}
		})
	}
}
