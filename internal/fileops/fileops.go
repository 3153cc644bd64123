// Package fileops moves and copies library files.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const dirPerm = 0o755

var rename = os.Rename

// Exists reports whether anything is at path. Symlinks are not followed.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsFile reports whether path is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// Move renames src to dst, falling back to copy and remove when they are on
// different filesystems. dst must not exist.
func Move(src, dst string) error {
	if Exists(dst) {
		return fmt.Errorf("move %s: %w", dst, os.ErrExist)
	}
	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("rename: %w", err)
	}

	if err := Copy(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		// Keep exactly one copy.
		_ = os.Remove(dst)
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// Copy copies src to dst, preserving permission bits and modification
// time. dst must not exist. A partial dst is removed on failure.
func Copy(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("sync target: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close target: %w", err)
	}
	// O_CREATE is subject to umask.
	if err = os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod target: %w", err)
	}
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set target times: %w", err)
	}
	return nil
}
