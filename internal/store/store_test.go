package store

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFS_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.jsonl")
	fs := OS()

	if fs.Exists(path) {
		t.Fatal("Exists() = true before write")
	}
	if err := fs.WriteFile(path, "a\nb\n"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !fs.Exists(path) {
		t.Fatal("Exists() = false after write")
	}

	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got != "a\nb\n" {
		t.Errorf("ReadFile() = %q, want %q", got, "a\nb\n")
	}

	// Overwrite replaces content and leaves no temp files behind.
	if err := fs.WriteFile(path, "c"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, _ = fs.ReadFile(path)
	if got != "c" {
		t.Errorf("ReadFile() = %q, want %q", got, "c")
	}
	names, err := fs.List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 1 || names[0] != "s.jsonl" {
		t.Errorf("List() = %v, want [s.jsonl]", names)
	}
}

func TestFS_WriteFilePreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "s.jsonl")
	if err := os.WriteFile(path, []byte("x"), 0640); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := OS().WriteFile(path, "y"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
}

func TestFS_ReadMissing(t *testing.T) {
	_, err := OS().ReadFile(filepath.Join(t.TempDir(), "missing.jsonl"))
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want ErrNotExist", err)
	}
}

func TestFS_CreateFileExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.jsonl")
	fs := OS()

	if err := fs.CreateFile(path, "first"); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	err := fs.CreateFile(path, "second")
	if !stderrors.Is(err, os.ErrExist) {
		t.Fatalf("CreateFile() error = %v, want ErrExist", err)
	}

	got, _ := fs.ReadFile(path)
	if got != "first" {
		t.Errorf("content = %q, want %q (must not be overwritten)", got, "first")
	}
}

func TestFS_CreateFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "b.jsonl")
	if err := OS().CreateFile(path, "x"); err == nil {
		t.Fatal("CreateFile() expected error for missing directory")
	}
}

func TestFS_ListMissingDir(t *testing.T) {
	names, err := OS().List(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}

func TestFS_ListSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	fs := OS()
	if err := fs.MkdirAll(filepath.Join(dir, "sub")); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	for _, name := range []string{"b.jsonl", "a.jsonl"} {
		if err := fs.CreateFile(filepath.Join(dir, name), ""); err != nil {
			t.Fatalf("CreateFile() error = %v", err)
		}
	}

	names, err := fs.List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.jsonl" || names[1] != "b.jsonl" {
		t.Errorf("List() = %v, want [a.jsonl b.jsonl]", names)
	}
}

func TestFS_SymlinkRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.jsonl")
	link := filepath.Join(dir, "link.jsonl")
	if err := os.WriteFile(target, []byte("orig"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}

	fs := OS()
	if _, err := fs.ReadFile(link); err == nil {
		t.Error("ReadFile() through symlink should fail")
	}
	if err := fs.WriteFile(link, "new"); err == nil {
		t.Error("WriteFile() onto symlink should fail")
	}
	if err := fs.CreateFile(link, "new"); err == nil {
		t.Error("CreateFile() onto symlink should fail")
	}

	data, _ := os.ReadFile(target)
	if string(data) != "orig" {
		t.Errorf("target = %q, want unchanged", data)
	}
}

func TestSyncDir(t *testing.T) {
	if err := syncDir(t.TempDir()); err != nil {
		t.Fatalf("syncDir() error = %v", err)
	}
	if runtime.GOOS == "windows" {
		return
	}
	if err := syncDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("syncDir() on missing directory should fail")
	}
}

func TestFS_MkdirAllThenCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project", "session-manager-backups")
	fs := OS()

	if err := fs.MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "backup.jsonl")
	if err := fs.CreateFile(path, "orig"); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if err := fs.WriteFile(path, "next"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got != "next" {
		t.Errorf("ReadFile() = %q, want %q", got, "next")
	}
}

func TestFS_ExistsIgnoresSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.jsonl")
	link := filepath.Join(dir, "link.jsonl")
	if err := os.WriteFile(target, []byte("orig"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}

	fs := OS()
	if !fs.Exists(target) {
		t.Error("Exists(target) = false, want true")
	}
	if fs.Exists(link) {
		t.Error("Exists(link) = true, want false")
	}
	if fs.Exists(dir) {
		t.Error("Exists(dir) = true, want false")
	}
}
