package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a sessman error code.
type ErrorCode string

const (
	ErrSessionNotFound ErrorCode = "SESSION_NOT_FOUND" // live file missing at load
	ErrParse           ErrorCode = "PARSE_ERROR"       // per-line, absorbed by the parser
	ErrAborted         ErrorCode = "ABORTED"           // save requested without confirmation
	ErrNoBackups       ErrorCode = "NO_BACKUPS"        // restore with nothing to restore from
	ErrBackupNotFound  ErrorCode = "BACKUP_NOT_FOUND"
	ErrPersistence     ErrorCode = "PERSISTENCE" // backup or live-file I/O failure
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrInternal        ErrorCode = "INTERNAL"
)

// Persistence stages reported in Details["stage"].
const (
	StageBackup = "backup"
	StageWrite  = "write"
	StageRead   = "read"
)

// Error represents a structured error with code, message, and details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewSessionNotFound creates an error for a session file that does not exist.
func NewSessionNotFound(path string) *Error {
	return &Error{
		Code:    ErrSessionNotFound,
		Message: fmt.Sprintf("session file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewParse creates an error describing a line that is not valid JSON.
// The parser records it on the line; it is never returned from a load.
func NewParse(index int, err error) *Error {
	msg := "invalid JSON"
	if err != nil {
		msg = fmt.Sprintf("invalid JSON: %v", err)
	}
	return &Error{
		Code:    ErrParse,
		Message: msg,
		Details: map[string]any{"line": index},
		Cause:   err,
	}
}

// NewAborted creates an error for an operation the caller did not confirm.
func NewAborted(op string) *Error {
	return &Error{
		Code:    ErrAborted,
		Message: fmt.Sprintf("%s not confirmed", op),
		Details: map[string]any{"operation": op},
	}
}

// NewNoBackups creates an error for a restore with no backups on disk.
func NewNoBackups(sessionID string) *Error {
	return &Error{
		Code:    ErrNoBackups,
		Message: fmt.Sprintf("no backups found for session %s", sessionID),
		Details: map[string]any{"session_id": sessionID},
	}
}

// NewBackupNotFound creates an error for a backup id that is not in the list.
func NewBackupNotFound(backupID string) *Error {
	return &Error{
		Code:    ErrBackupNotFound,
		Message: fmt.Sprintf("backup not found: %s", backupID),
		Details: map[string]any{"backup_id": backupID},
	}
}

// NewPersistence creates an error for a failed backup, write or read step.
func NewPersistence(stage, path string, cause error) *Error {
	msg := fmt.Sprintf("%s failed for %s", stage, path)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &Error{
		Code:    ErrPersistence,
		Message: msg,
		Details: map[string]any{"stage": stage, "path": path},
		Cause:   cause,
	}
}

// NewInvalidRequest creates an error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Message: msg,
		Details: map[string]any{},
		Cause:   err,
	}
}

// Is checks if err (or anything it wraps) is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *Error
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// Stage returns the persistence stage recorded on err, or "" if none.
func Stage(err error) string {
	var sErr *Error
	if !stderrors.As(err, &sErr) || sErr.Code != ErrPersistence {
		return ""
	}
	stage, _ := sErr.Details["stage"].(string)
	return stage
}
