package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore implements Store on a single JSON document.
type FileStore struct {
	path string
}

// NewFileStore creates a file-based snapshot store, creating the parent
// directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Save writes the snapshot to a temporary file and renames it into place,
// so a crash mid-write cannot truncate the previous snapshot.
func (fs *FileStore) Save(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	return nil
}

// Load reads the last snapshot. A missing file yields an empty snapshot.
func (fs *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snap := NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return snap, nil
}
