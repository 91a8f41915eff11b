package repository

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements session.Repository as a single file that is
// replaced atomically on every write
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a file-based session repository at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ErrSessionNotFound
		}
		return nil, oops.With("path", s.path, "context", "failed to read session file").Wrap(err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.ErrSessionNotFound
	}
	return data, nil
}

func (s *FileStorage) Save(token []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return oops.With("dir", dir, "context", "failed to create session directory").Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return oops.With("dir", dir, "context", "failed to create temporary session file").Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(token); err != nil {
		tmp.Close()
		return oops.With("path", tmp.Name(), "context", "failed to write session").Wrap(err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return oops.With("path", tmp.Name(), "context", "failed to chmod session").Wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return oops.With("path", tmp.Name(), "context", "failed to sync session").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", tmp.Name(), "context", "failed to close session").Wrap(err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return oops.With("path", s.path, "context", "failed to replace session file").Wrap(err)
	}
	return nil
}

func (s *FileStorage) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return oops.With("path", s.path, "context", "failed to delete session file").Wrap(err)
	}
	return nil
}
