package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventImport        EventType = "import"
	EventSkip          EventType = "skip"
	EventRemoveMissing EventType = "remove_missing"
	EventUpdate        EventType = "update"
	EventSave          EventType = "save"
	EventRevert        EventType = "revert"
	EventAnalyze       EventType = "analyze"
	EventFlag          EventType = "flag"
	EventApply         EventType = "apply"
	EventError         EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the import/edit/save pipeline
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	FileID       string            `json:"file_id,omitempty"`
	Path         string            `json:"path,omitempty"`
	DestPath     string            `json:"dest_path,omitempty"`
	CatID        string            `json:"cat_id,omitempty"`
	Fields       []string          `json:"fields,omitempty"`
	BytesWritten int64             `json:"bytes_written,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Open file for writing
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	// Filter by minimum level
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil // Skip events below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogImport logs a file having been imported (or re-confirmed unchanged).
func (l *EventLogger) LogImport(fileID, path string, byteSize int64) error {
	return l.Log(&Event{
		Level:        LevelInfo,
		Event:        EventImport,
		FileID:       fileID,
		Path:         path,
		BytesWritten: byteSize,
	})
}

// LogSkip logs a path the importer could not ingest (unreadable, not WAV).
func (l *EventLogger) LogSkip(path, reason string) error {
	return l.Log(&Event{
		Level: LevelWarning,
		Event: EventSkip,
		Path:  path,
		Extra: map[string]string{"reason": reason},
	})
}

// LogRemoveMissing logs a record pruned because its backing file vanished.
func (l *EventLogger) LogRemoveMissing(fileID, path string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventRemoveMissing,
		FileID: fileID,
		Path:   path,
	})
}

// LogUpdate logs a metadata edit landing on a record.
func (l *EventLogger) LogUpdate(fileID string, fields []string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventUpdate,
		FileID: fileID,
		Fields: fields,
	})
}

// LogSave logs a rewrite-and-commit of one file, successful or not.
func (l *EventLogger) LogSave(fileID, path, destPath string, bytesWritten int64, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:        level,
		Event:        EventSave,
		FileID:       fileID,
		Path:         path,
		DestPath:     destPath,
		BytesWritten: bytesWritten,
		Duration:     duration.Milliseconds(),
		Error:        errMsg,
	})
}

// LogRevert logs a record being re-read from disk and dropped to unmodified.
func (l *EventLogger) LogRevert(fileID, path string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventRevert,
		FileID: fileID,
		Path:   path,
	})
}

// LogAnalyze logs a classifier call and its top cat_id, if any.
func (l *EventLogger) LogAnalyze(fileID, catID string, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventAnalyze,
		FileID:   fileID,
		CatID:    catID,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogApply logs apply_metadata copying fields from one record onto others.
func (l *EventLogger) LogApply(sourceID string, targetIDs []string, fields []string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventApply,
		FileID: sourceID,
		Fields: fields,
		Extra:  map[string]string{"target_count": fmt.Sprintf("%d", len(targetIDs))},
	})
}

// LogError logs an error event not covered by a more specific Log* method.
func (l *EventLogger) LogError(event EventType, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Path:  path,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
