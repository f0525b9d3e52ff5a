package billy

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// rootOS is osfs without a chroot: absolute destination and source folders
// are passed through unchanged. The OS serializes access itself, so it is
// not wrapped in a lock.
type rootOS struct {
	osfs.ChrootOS
}

//nolint:ireturn // signature is dictated by billy.Chroot.
func (*rootOS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (*rootOS) Root() string {
	return "/"
}

// NewBaseOSFS returns the filesystem used for real sync runs.
func NewBaseOSFS() *FS {
	return &FS{fs: &rootOS{}}
}
