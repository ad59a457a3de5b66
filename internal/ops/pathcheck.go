package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/sessman/internal/errors"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ExportsDirName is the exports directory under the manager's base dir.
const ExportsDirName = "exports"

// ValidateExportPath checks a caller supplied export destination:
//  1. no ".." components
//  2. a .md, .markdown or .html extension
//  3. the parent directory exists and is not a symlink
//  4. the file itself, if present, is not a symlink
//
// It returns the format implied by the extension.
func ValidateExportPath(path string) (string, error) {
	if path == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	format := FormatForExt(filepath.Ext(cleaned))
	if format == "" {
		return "", errors.NewInvalidRequest("path must have .md, .markdown or .html extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	parentDir := filepath.Dir(absPath)
	info, err := os.Lstat(parentDir)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("parent directory does not exist: %s", parentDir))
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	if !info.IsDir() {
		return "", errors.NewInvalidRequest(fmt.Sprintf("not a directory: %s", parentDir))
	}

	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return "", errors.NewInvalidRequest("path must not be a symlink")
		}
	}
	return format, nil
}

// FormatForExt maps a file extension to an export format, or "".
func FormatForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html":
		return FormatHTML
	}
	return ""
}

// DefaultExportPath returns <baseDir>/exports/<id>-<timestamp>.<ext>.
func DefaultExportPath(baseDir, sessionID, format string, now time.Time) string {
	ext := ".md"
	if format == FormatHTML {
		ext = ".html"
	}
	name := fmt.Sprintf("%s-%s%s", SanitizeForFilename(sessionID), now.UTC().Format("20060102T150405Z"), ext)
	return filepath.Join(baseDir, ExportsDirName, name)
}

// containsTraversal reports whether any component of path is "..". Both
// separators count, since callers may pass forward slashes on any platform.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// SanitizeForFilename turns s into a single path component: separators and
// ".." become "-", control characters are dropped, and runs of "-" collapse.
func SanitizeForFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case r < 32 || r == 127:
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "..", "-")

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' })
	if len(parts) == 0 {
		return "unnamed"
	}
	return strings.Join(parts, "-")
}
