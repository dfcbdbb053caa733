package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WithinRoot resolves name against dir and verifies the result stays
// under dir after cleaning, rejecting path-traversal sequences. Returns
// the resolved absolute path.
func WithinRoot(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty name")
	}
	resolved := filepath.Clean(filepath.Join(dir, name))
	root := filepath.Clean(dir)
	if resolved == root {
		return "", fmt.Errorf("refusing to operate on %s itself", root)
	}
	if !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes %s: %s", root, name)
	}
	return resolved, nil
}

// Rename renames a file or directory within its parent.
func Rename(oldPath, newName string) error {
	newPath, err := WithinRoot(filepath.Dir(oldPath), newName)
	if err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}

// CreateFile creates a new empty file under dir.
func CreateFile(dir, name string) error {
	path, err := WithinRoot(dir, name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// CreateDir creates a new directory under dir.
func CreateDir(dir, name string) error {
	path, err := WithinRoot(dir, name)
	if err != nil {
		return err
	}
	return os.Mkdir(path, 0755)
}

// Delete removes a file or directory tree permanently.
func Delete(path string, isDir bool) error {
	if isDir {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// Copy copies a file or directory from src into destDir under its base name.
func Copy(src, destDir string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	dest := filepath.Join(destDir, filepath.Base(src))
	if info.IsDir() {
		return copyDir(src, dest)
	}
	return copyFile(src, dest, info.Mode())
}

// Move moves a file or directory into destDir, falling back to
// copy-then-delete when rename crosses devices.
func Move(src, destDir string) error {
	dest := filepath.Join(destDir, filepath.Base(src))
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := Copy(src, destDir); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	dirents, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, d := range dirents {
		srcPath := filepath.Join(src, d.Name())
		dstPath := filepath.Join(dst, d.Name())
		if d.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		di, err := d.Info()
		if err != nil {
			return err
		}
		if err := copyFile(srcPath, dstPath, di.Mode()); err != nil {
			return err
		}
	}
	return nil
}
