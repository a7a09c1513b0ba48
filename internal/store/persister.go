package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Persister is the durable location of the serialized store. Load returns
// nil, nil when nothing has been saved yet.
type Persister interface {
	Load() ([]byte, error)
	Save(blob []byte) error
	Close() error
}

// MemoryPersister keeps the blob in memory. It is used by tests and by
// ephemeral runs.
type MemoryPersister struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), m.blob...), nil
}

func (m *MemoryPersister) Save(blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	return nil
}

func (m *MemoryPersister) Close() error { return nil }

// FilePersister writes the blob to a single JSON file.
type FilePersister struct {
	path string
}

// NewFilePersister creates the parent directory of path if needed.
func NewFilePersister(path string) (*FilePersister, error) {
	if path == "" {
		return nil, errors.New("file persister: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FilePersister{path: path}, nil
}

func (f *FilePersister) Load() ([]byte, error) {
	blob, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return blob, nil
}

// Save replaces the file through a temporary sibling so a crash never leaves
// a half-written snapshot.
func (f *FilePersister) Save(blob []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *FilePersister) Close() error { return nil }
