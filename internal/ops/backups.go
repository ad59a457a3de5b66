package ops

import (
	"path/filepath"
	"sort"

	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/store"
)

// Backup describes one backup file of a session.
type Backup struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`

	// CreatedAt is Unix milliseconds parsed from Timestamp, 0 if unparseable.
	CreatedAt int64 `json:"created_at"`
}

// ListBackupsOutput contains the result of the ListBackups operation.
type ListBackupsOutput struct {
	BackupDir string   `json:"backup_dir"`
	Backups   []Backup `json:"backups"`
}

// ListBackups returns the backups of the session at loc, newest first.
// Backup names embed an ISO-8601 timestamp, so descending name order is
// reverse chronological order.
func ListBackups(st store.Storage, loc *Location) (*ListBackupsOutput, error) {
	if loc == nil {
		return nil, errors.NewInvalidRequest("location is required")
	}

	names, err := st.List(loc.BackupDir)
	if err != nil {
		return nil, errors.NewPersistence(errors.StageRead, loc.BackupDir, err)
	}

	backups := make([]Backup, 0, len(names))
	for _, name := range names {
		stamp, ok := parseBackupName(loc.SessionID, name)
		if !ok {
			continue
		}
		b := Backup{
			ID:        name,
			SessionID: loc.SessionID,
			Path:      filepath.Join(loc.BackupDir, name),
			Timestamp: stamp,
		}
		if t := parseBackupTime(stamp); !t.IsZero() {
			b.CreatedAt = t.UnixMilli()
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ID > backups[j].ID
	})

	return &ListBackupsOutput{
		BackupDir: loc.BackupDir,
		Backups:   backups,
	}, nil
}
