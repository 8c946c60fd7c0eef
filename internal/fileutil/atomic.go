// Package fileutil provides the crash-safe file writes wallet data relies
// on.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = errors.New("path is empty")

// DirPerm is the permission mode for directories holding wallet data.
const DirPerm os.FileMode = 0o700

// WriteAtomic writes data to path with the given permissions, so that a
// crash mid-write leaves either the old content or the new, never a
// truncated mix.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	// The temp file must live in the same directory as path or the final
	// rename stops being atomic.
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := fillTemp(tmp, data, perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("renaming temp file: %w", err)
	}

	syncDir(dir)
	return nil
}

// fillTemp writes data, applies perm, and flushes the temp file to disk.
func fillTemp(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Chmod(perm); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry after a rename. Best effort: some
// filesystems cannot sync directories.
func syncDir(dir string) {
	f, err := os.Open(dir) //nolint:gosec // G304: dir derives from a caller-validated path
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}

// EnsureDir creates dir and any missing parents with owner-only
// permissions. Existing directories are left untouched.
func EnsureDir(dir string) error {
	if dir == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// WriteAtomicInDir ensures dir exists, then atomically writes name inside
// it, returning the full path of the written file.
func WriteAtomicInDir(dir, name string, data []byte, perm os.FileMode) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := WriteAtomic(path, data, perm); err != nil {
		return "", err
	}
	return path, nil
}
