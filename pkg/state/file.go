package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the binding as a JSON document on the local filesystem.
// Writes go to a temporary file in the same directory which is fsynced and
// renamed over the target, so readers see either the old or the new record.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes writers; readers rely on rename atomicity
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (Binding, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Binding{}, false, nil
		}
		return Binding{}, false, fmt.Errorf("reading binding file %s: %w", s.path, err)
	}
	return decodeBinding(data)
}

func (s *FileStore) Save(_ context.Context, b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling binding: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary binding file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary binding file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary binding file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary binding file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming binding file into place: %w", err)
	}

	// Make the rename itself durable.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func decodeBinding(data []byte) (Binding, bool, error) {
	var b Binding
	if err := json.Unmarshal(data, &b); err != nil {
		return Binding{}, false, fmt.Errorf("%w: %v", ErrCorruptBinding, err)
	}
	if err := b.Validate(); err != nil {
		return Binding{}, false, fmt.Errorf("%w: %v", ErrCorruptBinding, err)
	}
	return b, true, nil
}
