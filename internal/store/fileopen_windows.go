//go:build windows

package store

import (
	"os"
)

// openFileNoFollow opens a file for writing.
// On Windows, O_NOFOLLOW is not available. Symlink creation needs elevated
// privileges there, and WriteFile still refuses to replace a symlink.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens a file for reading.
func openFileNoFollowRead(path string) (*os.File, error) {
	return os.Open(path)
}

// syncDir is a no-op: Windows cannot open a directory for Sync, and NTFS
// journals directory entries itself.
func syncDir(dir string) error {
	return nil
}
