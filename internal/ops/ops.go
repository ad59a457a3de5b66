package ops

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/sessman/internal/errors"
)

// BackupDirName is the backup directory next to the session files.
const BackupDirName = "session-manager-backups"

// backupTimeLayout is ISO-8601 UTC with milliseconds, colons replaced by
// hyphens for path safety.
const backupTimeLayout = "2006-01-02T15-04-05.000Z"

// Location identifies a session file and its backup directory on disk.
type Location struct {
	SessionID   string `json:"session_id"`
	ProjectDir  string `json:"project_dir"`
	SessionPath string `json:"session_path"`
	BackupDir   string `json:"backup_dir"`
}

// Locate resolves the session file for sessionID started from cwd:
// <claudeDir>/projects/<ProjectDirName(cwd)>/<sessionID>.jsonl.
func Locate(claudeDir, cwd, sessionID string) (*Location, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claudeDir) == "" {
		return nil, errors.NewInvalidRequest("claude directory is required")
	}
	if strings.TrimSpace(cwd) == "" {
		return nil, errors.NewInvalidRequest("working directory is required")
	}

	projectDir := filepath.Join(claudeDir, "projects", ProjectDirName(cwd))
	sessionPath := filepath.Join(projectDir, sessionID+".jsonl")
	return &Location{
		SessionID:   sessionID,
		ProjectDir:  projectDir,
		SessionPath: sessionPath,
		BackupDir:   BackupDirFor(sessionPath),
	}, nil
}

// ProjectDirName encodes a working directory the way Claude Code names its
// project directories: every path separator becomes "-".
func ProjectDirName(cwd string) string {
	name := strings.ReplaceAll(cwd, "/", "-")
	return strings.ReplaceAll(name, "\\", "-")
}

// BackupDirFor returns the backup directory for the session file at sessionPath.
func BackupDirFor(sessionPath string) string {
	return filepath.Join(filepath.Dir(sessionPath), BackupDirName)
}

// ValidateSessionID rejects ids that are empty or could escape the project
// directory when used as a file name.
func ValidateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewInvalidRequest("session id is required")
	}
	if id != strings.TrimSpace(id) {
		return errors.NewInvalidRequest("session id must not have leading or trailing whitespace")
	}
	if strings.ContainsAny(id, `/\`) || containsTraversal(id) || id == "." {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid session id: %q", id))
	}
	for _, r := range id {
		if r < 32 || r == 127 {
			return errors.NewInvalidRequest("session id must not contain control characters")
		}
	}
	return nil
}

// BackupName returns the backup file name for a save of sessionID at now.
func BackupName(sessionID string, now time.Time) string {
	return fmt.Sprintf("%s.%s.jsonl", sessionID, now.UTC().Format(backupTimeLayout))
}

// parseBackupName extracts the timestamp part of a backup file name for
// sessionID. ok is false if name is not a backup of sessionID.
func parseBackupName(sessionID, name string) (stamp string, ok bool) {
	prefix := sessionID + "."
	const suffix = ".jsonl"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	if len(name) <= len(prefix)+len(suffix) {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}

// parseBackupTime parses a backup timestamp. Names written by other tools
// may not follow the layout; those report the zero time.
func parseBackupTime(stamp string) time.Time {
	t, err := time.Parse(backupTimeLayout, stamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
