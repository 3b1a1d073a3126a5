package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"conductorsync/pkg/logging"
)

// ErrDocumentNotFound is returned by Storage.Load when no document has been persisted yet.
var ErrDocumentNotFound = errors.New("conductor config not found")

// Storage persists the conductor configuration document in the conductor's
// persistence directory.
type Storage struct {
	mu       sync.RWMutex
	dir      string
	fileName string
}

// NewStorage creates a Storage for fileName inside dir. An empty fileName
// means DefaultDocumentFileName.
func NewStorage(dir, fileName string) *Storage {
	if fileName == "" {
		fileName = DefaultDocumentFileName
	}
	return &Storage{
		dir:      dir,
		fileName: fileName,
	}
}

// Path returns the location of the persisted document.
func (s *Storage) Path() string {
	return filepath.Join(s.dir, s.fileName)
}

// Load returns the persisted document.
func (s *Storage) Load() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	logging.Debug("Storage", "Loaded %d bytes from %s", len(data), path)
	return data, nil
}

// Save replaces the persisted document with data.
func (s *Storage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.fileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", s.dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}

	path := s.Path()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	logging.Info("Storage", "Saved conductor config to %s", path)
	return nil
}
