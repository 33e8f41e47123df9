package fs

import (
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// File represents an open file.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.Seeker
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	// Rename replaces newpath with oldpath. Implementations must make the
	// replacement atomic: readers observe either the old or the new file.
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (LocalFS) Remove(name string) error { return os.Remove(name) }

// Rename uses atomic.ReplaceFile so that the replacement is atomic on
// Windows as well.
func (LocalFS) Rename(oldpath, newpath string) error { return atomic.ReplaceFile(oldpath, newpath) }

func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// AdviseSequential tells the kernel that f will be read front to back.
// It is a no-op for files that are not backed by an OS descriptor and on
// platforms without posix_fadvise.
func AdviseSequential(f File) error {
	fd, ok := f.(interface{ Fd() uintptr })
	if !ok {
		return nil
	}
	return adviseSequential(fd.Fd())
}
