package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const defaultSnapshotRoot = "snapshots"

// FileBackend stores each key as a file under Root.
type FileBackend struct {
	Root string
}

// NewFileBackend returns a backend rooted at dir ("snapshots" if empty).
func NewFileBackend(dir string) *FileBackend {
	if dir == "" {
		dir = defaultSnapshotRoot
	}
	return &FileBackend{Root: dir}
}

func (b *FileBackend) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("snapshot key escapes the store root: " + key)
	}
	return filepath.Join(b.Root, clean), nil
}

// Get reads the file for key, mapping a missing file to ErrNotFound.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	p, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put writes data atomically: into a temporary sibling file first, then
// renamed over the target so readers never observe a partial write.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, f, err := createTempFile(dir, filepath.Base(p))
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp) // best-effort cleanup
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// createTempFile creates ".tmp-<base>-<rand>" in dir so the temporary file
// sits next to its target and the final rename stays on one filesystem.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
