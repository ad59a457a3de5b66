package ops

import (
	"database/sql"
	"path/filepath"
	"time"

	"github.com/hpungsan/sessman/internal/db"
	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// SaveInput contains parameters for the Save operation.
type SaveInput struct {
	// Confirmed must be true; the caller is responsible for asking.
	Confirmed bool

	// Now names the backup. Zero means time.Now().
	Now time.Time
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	Written    int    `json:"written"`
	Removed    int    `json:"removed"`
	BackupID   string `json:"backup_id"`
	BackupPath string `json:"backup_path"`

	// HistoryWarning is set when the save succeeded but could not be journaled.
	HistoryWarning string `json:"history_warning,omitempty"`
}

// Save writes the selected lines of s back to its session file.
//
// The steps run strictly in order and each failure stops the rest:
//  1. back up s.Original to a new file in the backup directory
//  2. atomically replace the live file with s.Output()
//  3. set s.Original to the written text
//
// The live file is never touched unless the backup is on disk. database may
// be nil to skip the history journal.
func Save(st store.Storage, database *sql.DB, s *session.Session, input SaveInput) (*SaveOutput, error) {
	if s == nil {
		return nil, errors.NewInvalidRequest("session is required")
	}
	if !input.Confirmed {
		return nil, errors.NewAborted("save")
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	output := s.Output()
	stats := s.Stats()

	backupDir := BackupDirFor(s.Path)
	backupID := BackupName(s.ID, now)
	backupPath := filepath.Join(backupDir, backupID)

	if err := st.MkdirAll(backupDir); err != nil {
		return nil, errors.NewPersistence(errors.StageBackup, backupDir, err)
	}
	if err := st.CreateFile(backupPath, s.Original); err != nil {
		return nil, errors.NewPersistence(errors.StageBackup, backupPath, err)
	}

	if err := st.WriteFile(s.Path, output); err != nil {
		return nil, errors.NewPersistence(errors.StageWrite, s.Path, err)
	}

	s.Original = output

	out := &SaveOutput{
		Written:    stats.Selected,
		Removed:    stats.Removed(),
		BackupID:   backupID,
		BackupPath: backupPath,
	}
	out.HistoryWarning = record(database, &db.Event{
		SessionID:    s.ID,
		Action:       db.ActionSave,
		SessionPath:  s.Path,
		BackupID:     backupID,
		LinesWritten: out.Written,
		LinesRemoved: out.Removed,
		CreatedAt:    now.Unix(),
	})
	return out, nil
}
