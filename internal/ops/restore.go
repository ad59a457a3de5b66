package ops

import (
	"database/sql"
	"time"

	"github.com/hpungsan/sessman/internal/db"
	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// RestoreInput contains parameters for the Restore operation.
type RestoreInput struct {
	// BackupID is a name from ListBackups. Empty selects the newest backup.
	BackupID string
}

// RestoreOutput contains the result of the Restore operation.
type RestoreOutput struct {
	Backup         Backup             `json:"backup"`
	Stats          session.Statistics `json:"stats"`
	HistoryWarning string             `json:"history_warning,omitempty"`

	// Session is the freshly loaded session; callers replace their old one.
	Session *session.Session `json:"-"`
}

// Restore overwrites the live session file with a backup and reloads it.
//
// The in-memory session is never patched: the returned Session is parsed
// from disk, so no selection state survives a restore.
func Restore(st store.Storage, database *sql.DB, loc *Location, input RestoreInput) (*RestoreOutput, error) {
	list, err := ListBackups(st, loc)
	if err != nil {
		return nil, err
	}
	if len(list.Backups) == 0 {
		return nil, errors.NewNoBackups(loc.SessionID)
	}

	backup := list.Backups[0]
	if input.BackupID != "" {
		found := false
		for _, b := range list.Backups {
			if b.ID == input.BackupID {
				backup = b
				found = true
				break
			}
		}
		if !found {
			return nil, errors.NewBackupNotFound(input.BackupID)
		}
	}

	content, err := st.ReadFile(backup.Path)
	if err != nil {
		return nil, errors.NewPersistence(errors.StageRead, backup.Path, err)
	}
	if err := st.WriteFile(loc.SessionPath, content); err != nil {
		return nil, errors.NewPersistence(errors.StageWrite, loc.SessionPath, err)
	}

	s, err := Load(st, loc)
	if err != nil {
		return nil, err
	}

	stats := s.Stats()
	out := &RestoreOutput{
		Backup:  backup,
		Stats:   stats,
		Session: s,
	}
	out.HistoryWarning = record(database, &db.Event{
		SessionID:    loc.SessionID,
		Action:       db.ActionRestore,
		SessionPath:  loc.SessionPath,
		BackupID:     backup.ID,
		LinesWritten: stats.Total,
		CreatedAt:    time.Now().Unix(),
	})
	return out, nil
}
