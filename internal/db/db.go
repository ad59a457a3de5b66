package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the history database file inside the base directory.
const FileName = "history.db"

// migrations are applied in order; entry i moves the schema from version i
// to version i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
	  id             TEXT PRIMARY KEY,
	  session_id     TEXT NOT NULL,
	  action         TEXT NOT NULL,
	  session_path   TEXT NOT NULL,
	  backup_id      TEXT,
	  lines_written  INTEGER NOT NULL,
	  lines_removed  INTEGER NOT NULL,
	  created_at     INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_session_created
	ON events(session_id, created_at DESC);`,
}

// CurrentSchemaVersion is the version Init migrates to.
var CurrentSchemaVersion = len(migrations)

// Init opens (creating if needed) the history journal in baseDir and brings
// its schema up to date. Tests pass t.TempDir().
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	path := filepath.Join(baseDir, FileName)
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := checkJournalMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Best-effort; the file exists only after the first statement.
	_ = os.Chmod(path, 0600)
	return db, nil
}

func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("history database schema %d is newer than supported %d", version, CurrentSchemaVersion)
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}

func checkJournalMode(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return fmt.Errorf("read journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("history database journal mode is %s, want wal", mode)
	}
	return nil
}

// GetUserVersion reports the schema version stored in the user_version pragma.
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}
