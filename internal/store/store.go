package store

import (
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Storage is the durable-storage capability the persistence layer relies on.
// Paths are absolute file-system paths.
type Storage interface {
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool

	// ReadFile returns the whole content of the file at path.
	ReadFile(path string) (string, error)

	// WriteFile replaces the file at path with content. The replacement is
	// atomic: on failure the previous content is left in place. The new
	// content and the directory entry are synced before WriteFile returns.
	WriteFile(path, content string) error

	// CreateFile writes content to a new file at path and fails if the path
	// already exists. The data and the directory entry are synced before
	// CreateFile returns.
	CreateFile(path, content string) error

	// MkdirAll creates dir and any missing parents, syncing the parent of
	// dir so the new entry is durable.
	MkdirAll(dir string) error

	// List returns the names of the regular files in dir, sorted ascending.
	// A missing directory yields an empty list.
	List(dir string) ([]string, error)
}

// FS implements Storage on the local file system.
type FS struct{}

// OS returns the local file-system storage.
func OS() FS {
	return FS{}
}

// Exists implements Storage. A symlink is not a regular file.
func (FS) Exists(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile implements Storage. Symlinks are not followed.
func (FS) ReadFile(path string) (string, error) {
	f, err := openFileNoFollowRead(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile implements Storage using a synced temp file renamed into place.
func (FS) WriteFile(path, content string) error {
	// Check if destination is a symlink (os.Rename would replace the link,
	// not the file it points to)
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to replace symlink %s", path)
	}

	perm := os.FileMode(0600)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.WriteString(file, content); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}
	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	success = true

	return syncDir(filepath.Dir(path))
}

// CreateFile implements Storage with O_EXCL so an existing file is never
// overwritten. A partially written file is removed.
func (FS) CreateFile(path, content string) error {
	file, err := openFileNoFollow(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(file, content); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return syncDir(filepath.Dir(path))
}

// MkdirAll implements Storage.
func (FS) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return syncDir(filepath.Dir(dir))
}

// List implements Storage.
func (FS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
