// Package uploads keeps uploaded receipt files on the local filesystem.
package uploads

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrEmpty     = errors.New("upload is empty")
	ErrTooLarge  = errors.New("upload exceeds size limit")
	ErrInvalidID = errors.New("invalid upload id")
	ErrNotFound  = errors.New("upload not found")
)

// Storage saves and retrieves uploads by ID.
type Storage interface {
	Save(data []byte) (string, error)
	Get(id string) ([]byte, error)
	Delete(id string) error
}

// LocalStorage stores each upload as a file named by its UUID.
type LocalStorage struct {
	basePath string
	maxBytes int64
}

// NewLocalStorage creates basePath if missing. maxBytes <= 0 disables the
// size check.
func NewLocalStorage(basePath string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, maxBytes: maxBytes}, nil
}

// Save writes data under a fresh upload ID and returns the ID.
func (l *LocalStorage) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	id := uuid.NewString()
	if err := os.WriteFile(filepath.Join(l.basePath, id), data, 0o600); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return id, nil
}

func (l *LocalStorage) Get(id string) ([]byte, error) {
	path, err := l.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(id string) error {
	path, err := l.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting upload: %w", err)
	}
	return nil
}

// path only accepts canonical UUIDs, so IDs cannot escape basePath.
func (l *LocalStorage) path(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(l.basePath, id), nil
}
