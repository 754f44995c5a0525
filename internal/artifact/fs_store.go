package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FSStore writes artifacts as files under one directory
type FSStore struct {
	fs  afero.Fs
	dir string
}

func NewFSStore(fs afero.Fs, dir string) (*FSStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio dir %s: %w", dir, err)
	}
	return &FSStore{fs: fs, dir: dir}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

// Put writes to a temporary file and renames it into place
func (s *FSStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to store artifact %s: %w", key, err)
	}
	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FSStore) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	prefix := SessionPrefix(sessionID)
	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if id, _, _ := ParseKey(key); id != sessionID {
			continue
		}
		if err := s.fs.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *FSStore) List(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if _, _, ok := ParseKey(info.Name()); ok {
			keys = append(keys, info.Name())
		}
	}
	return keys, nil
}
