// Package billy implements the fs.Filesystem contract on top of go-billy.
//
// NewBaseOSFS backs real sync runs. NewInMemoryFS backs tests; its memfs
// storage is serialized so concurrent workers can create, rename and stat
// files while others read.
package billy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
)

// FS adapts a go-billy filesystem to fs.Filesystem.
type FS struct {
	fs billy.Filesystem
}

var _ parentfs.Filesystem = (*FS)(nil)

// NewInMemoryFS returns an empty in-memory filesystem that is safe for
// concurrent use.
func NewInMemoryFS() *FS {
	return NewLockedFS(memfs.New())
}

// NewLockedFS adapts a go-billy filesystem that is not safe for concurrent
// use. Every call, including reads and writes on files it opened, is
// serialized behind one read/write lock.
func NewLockedFS(fsys billy.Filesystem) *FS {
	return &FS{fs: newLockedFS(fsys)}
}

func pathErr(op, path string, err error) error {
	return fmt.Errorf("billy: %s %q: %w", op, path, err)
}

func (b *FS) file(f billy.File, op, name string, err error) (parentfs.File, error) {
	if err != nil {
		return nil, pathErr(op, name, err)
	}
	return &File{file: f, fs: b}, nil
}

// Create creates or truncates name.
//
//nolint:ireturn // fs.Filesystem returns the fs.File interface.
func (b *FS) Create(name string) (parentfs.File, error) {
	f, err := b.fs.Create(name)
	return b.file(f, "create", name, err)
}

// Open opens name for reading.
//
//nolint:ireturn // fs.Filesystem returns the fs.File interface.
func (b *FS) Open(name string) (parentfs.File, error) {
	f, err := b.fs.Open(name)
	return b.file(f, "open", name, err)
}

// Exists reports whether path exists; only a stat failure other than
// not-exist is returned as an error.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, pathErr("stat", path, err)
	}
}

func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return pathErr("mkdirall", path, err)
	}
	return nil
}

func (b *FS) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, pathErr("readfile", path, err)
	}
	return data, nil
}

func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return pathErr("remove", name, err)
	}
	return nil
}

// Rename moves oldpath over newpath. Downloads rely on it to publish a
// completed temp file in one step.
func (b *FS) Rename(oldpath, newpath string) error {
	if err := b.fs.Rename(oldpath, newpath); err != nil {
		return fmt.Errorf("billy: rename %q to %q: %w", oldpath, newpath, err)
	}
	return nil
}

func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, pathErr("stat", name, err)
	}
	return info, nil
}

// Walk visits root and everything below it. Each directory read takes the
// lock on its own, so walkFn may call back into the filesystem.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	if err := util.Walk(b.fs, root, walkFn); err != nil {
		return pathErr("walk", root, err)
	}
	return nil
}

func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, filename, data, perm); err != nil {
		return pathErr("writefile", filename, err)
	}
	return nil
}
