package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// FileStore keeps one JSON snapshot file per key inside a directory. Writes
// go through a temp file and rename, so a crash mid-save never leaves a
// truncated snapshot behind.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it when absent.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store directory %q", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, key string, snap board.Snapshot) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	data, err := board.MarshalSnapshot(snap)
	if err != nil {
		return err
	}

	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %q", key)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "save %q", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "save %q", key)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "save %q", key)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, key string) (board.Snapshot, bool, error) {
	if err := errors.ValidateStoreKey(key); err != nil {
		return board.Snapshot{}, false, err
	}
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, errors.Wrap(errors.ErrCodeStore, err, "load %q", key)
	}
	snap, err := board.UnmarshalSnapshot(data)
	if err != nil {
		return board.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "delete %q", key)
	}
	return nil
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list store")
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

var _ Store = (*FileStore)(nil)
