package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/fire/internal/fs"
	"github.com/hupe1980/fire/internal/mmap"
)

const tmpSuffix = ".tmp"

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
	fs   fs.FileSystem
	mmap bool
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem overrides the file system (used for fault injection in tests).
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithMmap serves reads from a read-only memory mapping instead of file
// reads. It bypasses the configured FileSystem.
func WithMmap(enabled bool) LocalOption {
	return func(s *LocalStore) {
		s.mmap = enabled
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	if s.mmap {
		m, err := mmap.Open(s.path(name))
		if err != nil {
			return nil, err
		}
		_ = m.Advise(mmap.AccessRandom)
		return m, nil
	}
	f, err := s.fs.OpenFile(s.path(name), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	// Files are scanned front to back; the advice is best effort.
	_ = fs.AdviseSequential(f)
	return &localBlob{f: f, size: info.Size()}, nil
}

// Create creates a temp file next to the destination. Close renames it
// into place.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	dst := s.path(name)
	if err := s.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}
	tmp := dst + tmpSuffix
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{fs: s.fs, f: f, tmp: tmp, dst: dst}, nil
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// List returns all committed blobs whose name starts with prefix.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk("", func(name string) {
		if strings.HasPrefix(name, prefix) && !strings.HasSuffix(name, tmpSuffix) {
			names = append(names, name)
		}
	}); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) walk(rel string, fn func(name string)) error {
	entries, err := s.fs.ReadDir(s.path(rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && rel == "" {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if rel != "" {
			name = rel + "/" + name
		}
		if e.IsDir() {
			if err := s.walk(name, fn); err != nil {
				return err
			}
			continue
		}
		fn(name)
	}
	return nil
}

type localBlob struct {
	f    fs.File
	size int64
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	return b.f.ReadAt(p, off)
}

func (b *localBlob) Close() error { return b.f.Close() }

func (b *localBlob) Size() int64 { return b.size }

type localWritableBlob struct {
	fs       fs.FileSystem
	f        fs.File
	tmp, dst string
	done     bool
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	if w.done {
		return 0, os.ErrClosed
	}
	return w.f.Write(p)
}

func (w *localWritableBlob) Sync() error {
	if w.done {
		return os.ErrClosed
	}
	return w.f.Sync()
}

func (w *localWritableBlob) Close() error {
	if w.done {
		return os.ErrClosed
	}
	w.done = true

	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		_ = w.fs.Remove(w.tmp)
		return err
	}
	if err := w.f.Close(); err != nil {
		_ = w.fs.Remove(w.tmp)
		return err
	}
	if err := w.fs.Rename(w.tmp, w.dst); err != nil {
		_ = w.fs.Remove(w.tmp)
		return err
	}
	return nil
}

func (w *localWritableBlob) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.f.Close()
	return w.fs.Remove(w.tmp)
}

var (
	_ BlobStore    = (*LocalStore)(nil)
	_ WritableBlob = (*localWritableBlob)(nil)
)
