package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
)

// File is an open go-billy file seen through fs.File.
type File struct {
	file billy.File
	fs   *FS
}

func (f *File) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		// io.EOF stays bare for io.Copy and io.ReadAll.
		return io.EOF
	}
	return pathErr(op, f.file.Name(), err)
}

func (f *File) Name() string {
	return f.file.Name()
}

func (f *File) Close() error {
	return f.wrap("close", f.file.Close())
}

func (f *File) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	return n, f.wrap("read", err)
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.file.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("billy: readat %q off=%d: %w", f.file.Name(), off, err)
	}
	if err != nil {
		return n, io.EOF
	}
	return n, nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.file.Seek(offset, whence)
	return pos, f.wrap("seek", err)
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.file.Write(p)
	return n, f.wrap("write", err)
}

// Stat reports the file as currently stored under its name. Upload sizes are
// read here, after the file has been opened.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.file.Name())
}
