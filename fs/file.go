// Package fs defines the filesystem contract used by the sync engine.
// Implementations should behave consistently with the standard library.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// File represents an open file handle supporting basic I/O operations.
// Implementations should behave consistently with the standard library.
type File interface {
	Close() error
	Name() string
	Read(p []byte) (n int, err error)
	ReadAt(p []byte, off int64) (n int, err error)
	Seek(offset int64, whence int) (int64, error)
	Stat() (fs.FileInfo, error)
	Write(p []byte) (n int, err error)
}

// Filesystem is the set of filesystem primitives the enumerators, the oracle
// and the transfer functions depend on.
//
// Implementations must be safe for concurrent use: workers create, rename and
// stat files while others read and write.
type Filesystem interface {
	// Create creates or truncates the named file.
	Create(name string) (File, error)

	// Exists reports whether path exists. A missing path is not an error.
	Exists(path string) (bool, error)

	// MkdirAll creates a directory and all missing ancestors.
	// It is a no-op when the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Open opens the named file for reading.
	Open(name string) (File, error)

	// ReadFile reads the whole named file.
	ReadFile(path string) ([]byte, error)

	// Remove removes the named file or empty directory.
	Remove(name string) error

	// Rename moves oldpath to newpath, replacing newpath if it exists.
	Rename(oldpath, newpath string) error

	// Stat returns the FileInfo for the named file.
	Stat(name string) (os.FileInfo, error)

	// Walk walks the tree rooted at root, calling walkFn for each entry.
	Walk(root string, walkFn filepath.WalkFunc) error

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
