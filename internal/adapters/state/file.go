// Package state persists the flat snapshot of mutable risk counters.
//
// The snapshot is deliberately a single JSON file, not a database: it is tiny,
// rewritten after every state-affecting event, and must survive crashes. Saves
// write a temp file in the same directory and rename it over the target, which
// is atomic on POSIX filesystems.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// FileStore implements ports.StateStore on a local file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the persisted snapshot. A missing, unreadable, or corrupt file
// yields the default state and a warning; startup must never crash on bad
// state.
func (s *FileStore) Load() domain.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("state: snapshot unreadable, starting from defaults", "path", s.path, "err", err)
		}
		return domain.DefaultSnapshot()
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("state: snapshot corrupt, starting from defaults", "path", s.path, "err", err)
		return domain.DefaultSnapshot()
	}
	return snap
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(snap domain.Snapshot) error {
	snap.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("state: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("state: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("state: replace snapshot: %w", err)
	}
	return nil
}
