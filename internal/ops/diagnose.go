package ops

import (
	"github.com/google/uuid"

	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// maxDiagnosticRaw bounds the raw text echoed for a malformed line.
const maxDiagnosticRaw = 120

// Malformed describes a non-blank line that is not valid JSON.
type Malformed struct {
	Index int    `json:"index"`
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// DiagnoseOutput is a health report for one session.
type DiagnoseOutput struct {
	SessionID     string `json:"session_id"`
	ValidUUID     bool   `json:"valid_uuid"`
	SessionPath   string `json:"session_path"`
	SessionExists bool   `json:"session_exists"`
	BackupDir     string `json:"backup_dir"`

	Bytes        int         `json:"bytes"`
	Lines        int         `json:"lines"`
	Blank        int         `json:"blank"`
	Messages     int         `json:"messages"`
	UnknownKinds int         `json:"unknown_kinds"`
	Malformed    []Malformed `json:"malformed"`

	Backups      int    `json:"backups"`
	LatestBackup string `json:"latest_backup,omitempty"`

	// PendingChanges is true when saving would change the file.
	PendingChanges bool `json:"pending_changes"`
}

// Diagnose reports on the session at loc. s is the in-memory session if one
// is loaded; when nil the file is read from disk.
func Diagnose(st store.Storage, loc *Location, s *session.Session) (*DiagnoseOutput, error) {
	if loc == nil {
		return nil, errors.NewInvalidRequest("location is required")
	}

	out := &DiagnoseOutput{
		SessionID:     loc.SessionID,
		SessionPath:   loc.SessionPath,
		SessionExists: st.Exists(loc.SessionPath),
		BackupDir:     loc.BackupDir,
		Malformed:     []Malformed{},
	}
	if _, err := uuid.Parse(loc.SessionID); err == nil {
		out.ValidUUID = true
	}

	if s == nil {
		if !out.SessionExists {
			return nil, errors.NewSessionNotFound(loc.SessionPath)
		}
		loaded, err := Load(st, loc)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	out.Bytes = len(s.Original)
	out.Lines = len(s.Lines)
	for _, l := range s.Lines {
		switch {
		case l.Blank():
			out.Blank++
		case l.ParseErr != "":
			out.Malformed = append(out.Malformed, Malformed{
				Index: l.Index,
				Error: l.ParseErr,
				Raw:   truncateRaw(l.Raw),
			})
		case l.Kind == session.KindUnknown:
			out.UnknownKinds++
		}
		if l.IsMessage {
			out.Messages++
		}
	}
	out.PendingChanges = s.Output() != s.Original

	list, err := ListBackups(st, loc)
	if err != nil {
		return nil, err
	}
	out.Backups = len(list.Backups)
	if len(list.Backups) > 0 {
		out.LatestBackup = list.Backups[0].ID
	}
	return out, nil
}

func truncateRaw(raw string) string {
	runes := []rune(raw)
	if len(runes) <= maxDiagnosticRaw {
		return raw
	}
	return string(runes[:maxDiagnosticRaw]) + "..."
}
