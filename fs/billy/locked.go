package billy

import (
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
)

// lockedFS serializes access to a go-billy filesystem that is not safe for
// concurrent use, such as memfs. Mutations take the write lock, lookups the
// read lock. Open files share the same lock.
type lockedFS struct {
	fs billy.Filesystem
	mu *sync.RWMutex
}

var _ billy.Filesystem = (*lockedFS)(nil)

func newLockedFS(fsys billy.Filesystem) *lockedFS {
	return &lockedFS{fs: fsys, mu: &sync.RWMutex{}}
}

func (l *lockedFS) wrap(f billy.File, err error) (billy.File, error) {
	if err != nil {
		return nil, err
	}
	return &lockedFile{file: f, mu: l.mu}, nil
}

//nolint:ireturn // signature is dictated by billy.Basic.
func (l *lockedFS) Create(filename string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.Create(filename))
}

//nolint:ireturn // signature is dictated by billy.Basic.
func (l *lockedFS) Open(filename string) (billy.File, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.wrap(l.fs.Open(filename))
}

//nolint:ireturn // signature is dictated by billy.Basic.
func (l *lockedFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.OpenFile(filename, flag, perm))
}

func (l *lockedFS) Stat(filename string) (os.FileInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fs.Stat(filename)
}

func (l *lockedFS) Lstat(filename string) (os.FileInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fs.Lstat(filename)
}

func (l *lockedFS) Rename(oldpath, newpath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Rename(oldpath, newpath)
}

func (l *lockedFS) Remove(filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Remove(filename)
}

func (l *lockedFS) Join(elem ...string) string {
	return l.fs.Join(elem...)
}

//nolint:ireturn // signature is dictated by billy.TempFile.
func (l *lockedFS) TempFile(dir, prefix string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.TempFile(dir, prefix))
}

func (l *lockedFS) ReadDir(path string) ([]os.FileInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fs.ReadDir(path)
}

func (l *lockedFS) MkdirAll(filename string, perm os.FileMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.MkdirAll(filename, perm)
}

func (l *lockedFS) Symlink(target, link string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Symlink(target, link)
}

func (l *lockedFS) Readlink(link string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fs.Readlink(link)
}

// Chroot keeps the chrooted view behind the same lock.
//
//nolint:ireturn // signature is dictated by billy.Chroot.
func (l *lockedFS) Chroot(path string) (billy.Filesystem, error) {
	return chroot.New(l, path), nil
}

func (l *lockedFS) Root() string {
	return l.fs.Root()
}

func (l *lockedFS) Capabilities() billy.Capability {
	return billy.Capabilities(l.fs)
}

// lockedFile guards an open file with its filesystem's lock.
type lockedFile struct {
	file billy.File
	mu   *sync.RWMutex
}

func (f *lockedFile) Name() string {
	return f.file.Name()
}

func (f *lockedFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Write(p)
}

func (f *lockedFile) Read(p []byte) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file.Read(p)
}

func (f *lockedFile) ReadAt(p []byte, off int64) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file.ReadAt(p, off)
}

func (f *lockedFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file.Seek(offset, whence)
}

func (f *lockedFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

func (f *lockedFile) Lock() error {
	return f.file.Lock()
}

func (f *lockedFile) Unlock() error {
	return f.file.Unlock()
}

func (f *lockedFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Truncate(size)
}
