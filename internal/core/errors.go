// Package core holds types shared across every component of the editing
// core: the closed error-code set and nothing else. Keeping it dependency-free
// lets every other package import it without risk of a cycle.
package core

import (
	"errors"
	"fmt"
)

// Code is one of a closed set of machine-readable error identifiers. Callers
// switch on Code, never on error string content.
type Code string

const (
	FileNotFound    Code = "FILE_NOT_FOUND"
	InvalidWAV      Code = "INVALID_WAV"
	FileChanged     Code = "FILE_CHANGED"
	FileLocked      Code = "FILE_LOCKED"
	FileReadOnly    Code = "FILE_READ_ONLY"
	RenameConflict  Code = "RENAME_CONFLICT"
	DiskFull        Code = "DISK_FULL"
	WriteFailed     Code = "WRITE_FAILED"
	ValidationError Code = "VALIDATION_ERROR"
	ModelNotReady   Code = "MODEL_NOT_READY"
	AnalysisFailed  Code = "ANALYSIS_FAILED"
)

// CoreError is the single error type every component boundary converts into.
// Detail is a human-readable message; Err, if set, is the underlying cause
// and participates in errors.Is/As via Unwrap.
type CoreError struct {
	Code   Code
	Detail string
	Err    error
}

func (e *CoreError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *CoreError) Unwrap() error { return e.Err }

// New constructs a CoreError with no wrapped cause.
func New(code Code, detail string) *CoreError {
	return &CoreError{Code: code, Detail: detail}
}

// Wrap constructs a CoreError carrying an underlying cause.
func Wrap(code Code, detail string, err error) *CoreError {
	return &CoreError{Code: code, Detail: detail, Err: err}
}

// Is reports whether err is a *CoreError with the given code.
func Is(err error, code Code) bool {
	var ce *CoreError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == code
}
