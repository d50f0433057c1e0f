package policystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileStore reads documents from a directory tree, keys being slash paths.
type FileStore struct {
	fsys fs.FS
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file policy store requires a root directory")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("policy store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("policy store root %s is not a directory", dir)
	}
	return NewFSStore(os.DirFS(dir)), nil
}

// NewFSStore creates a store over fsys.
func NewFSStore(fsys fs.FS) *FileStore {
	return &FileStore{fsys: fsys}
}

// Fetch implements Store.
func (s *FileStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(key) {
		return nil, fmt.Errorf("invalid policy key %q", key)
	}
	data, err := fs.ReadFile(s.fsys, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}
