package ops

import (
	"database/sql"

	"github.com/hpungsan/sessman/internal/db"
	"github.com/hpungsan/sessman/internal/errors"
)

// Limits for History.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	SessionID string
	Limit     int // default 20, max 500
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	SessionID string     `json:"session_id"`
	Events    []db.Event `json:"events"`
}

// History returns the journaled saves and restores of a session, newest first.
func History(database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	if database == nil {
		return nil, errors.NewInvalidRequest("history is disabled")
	}
	if err := ValidateSessionID(input.SessionID); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	events, err := db.ListEvents(database, input.SessionID, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{SessionID: input.SessionID, Events: events}, nil
}

// record journals e and returns a warning instead of an error: by the time
// it runs the file operation has already succeeded.
func record(database *sql.DB, e *db.Event) string {
	if database == nil {
		return ""
	}
	if err := db.InsertEvent(database, e); err != nil {
		return "history not recorded: " + err.Error()
	}
	return ""
}
