package db

import (
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/sessman/internal/errors"
)

// Event actions.
const (
	ActionSave    = "save"
	ActionRestore = "restore"
)

// Event is one journaled save or restore.
type Event struct {
	ID           string `json:"id"`
	SessionID    string `json:"session_id"`
	Action       string `json:"action"`
	SessionPath  string `json:"session_path"`
	BackupID     string `json:"backup_id,omitempty"`
	LinesWritten int    `json:"lines_written"`
	LinesRemoved int    `json:"lines_removed"`
	CreatedAt    int64  `json:"created_at"`
}

// NewEventID returns a new ULID for an event.
func NewEventID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// InsertEvent stores e. An empty ID or CreatedAt is filled in.
func InsertEvent(db *sql.DB, e *Event) error {
	now := time.Now()
	if e.CreatedAt == 0 {
		e.CreatedAt = now.Unix()
	}
	if e.ID == "" {
		id, err := NewEventID(now)
		if err != nil {
			return errors.NewInternal(err)
		}
		e.ID = id
	}

	query := `
		INSERT INTO events (
			id, session_id, action, session_path, backup_id,
			lines_written, lines_removed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		e.ID, e.SessionID, e.Action, e.SessionPath, toNullString(e.BackupID),
		e.LinesWritten, e.LinesRemoved, e.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListEvents returns the most recent events for sessionID, newest first.
// limit <= 0 returns every event.
func ListEvents(db *sql.DB, sessionID string, limit int) ([]Event, error) {
	query := `
		SELECT id, session_id, action, session_path, backup_id,
		       lines_written, lines_removed, created_at
		FROM events
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		var backupID sql.NullString
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.Action, &e.SessionPath, &backupID,
			&e.LinesWritten, &e.LinesRemoved, &e.CreatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.BackupID = backupID.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return events, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
