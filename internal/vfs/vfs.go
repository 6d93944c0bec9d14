// Package vfs provides the in-memory virtual filesystem that staged scene
// assets are written to and read back from.
package vfs

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// FS is a writable in-memory filesystem. It satisfies fs.FS so readers
// can use fs.ReadFile and fs.WalkDir on it directly.
type FS struct {
	fs *mem.FS
}

// New creates an empty filesystem.
func New() (*FS, error) {
	m, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	return &FS{fs: m}, nil
}

// Clean normalizes p into a non-rooted, slash-separated path.
func Clean(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// Open implements fs.FS.
func (v *FS) Open(name string) (fs.File, error) {
	return v.fs.Open(Clean(name))
}

// Exists reports whether a file or directory exists at p.
func (v *FS) Exists(p string) bool {
	_, err := hackpadfs.Stat(v.fs, Clean(p))
	return err == nil
}

// MkdirAll creates p and any missing parents.
func (v *FS) MkdirAll(p string) error {
	return hackpadfs.MkdirAll(v.fs, Clean(p), dirMode)
}

// WriteFile writes data to p, creating intermediate directories.
func (v *FS) WriteFile(p string, data []byte) error {
	p = Clean(p)
	if dir := path.Dir(p); dir != "." {
		if err := v.MkdirAll(dir); err != nil {
			return err
		}
	}
	return hackpadfs.WriteFullFile(v.fs, p, data, fileMode)
}

// WriteText writes s to p as UTF-8.
func (v *FS) WriteText(p, s string) error {
	return v.WriteFile(p, []byte(s))
}

// ReadFile returns the contents of p.
func (v *FS) ReadFile(p string) ([]byte, error) {
	return hackpadfs.ReadFile(v.fs, Clean(p))
}

// Remove deletes the file at p. Missing files are not an error.
func (v *FS) Remove(p string) error {
	err := hackpadfs.Remove(v.fs, Clean(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Files lists every regular file under root in lexical order.
func (v *FS) Files(root string) ([]string, error) {
	var out []string
	err := fs.WalkDir(v, Clean(root), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}
