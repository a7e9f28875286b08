// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/parley-tui/internal/util"
)

// Slot file names under the data directory.
const (
	historyFile = "history.json"
	userFile    = "user.json"
	modelsFile  = "models.json"
)

// =============================================================================
// STORE
// =============================================================================

// Store persists application state as whole-file JSON slots under a data
// directory. Each slot is read and written in full; there are no partial
// updates below slot granularity. The single-threaded UI loop is the only
// writer, so the store carries no locking.
type Store struct {
	// Dir is the data directory, default ~/.parley.
	Dir string
}

// Open creates a store rooted at dir, creating the directory if needed.
// An empty dir resolves to ~/.parley.
func Open(dir string) (*Store, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".parley")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Store{Dir: dir}, nil
}

// slotPath returns the absolute path of a slot file.
func (s *Store) slotPath(name string) string {
	return filepath.Join(s.Dir, name)
}

// readSlot reads and unmarshals a slot into out. A missing slot file is
// not an error; out is left untouched and ok is false.
func (s *Store) readSlot(name string, out any) (ok bool, err error) {
	data, err := os.ReadFile(s.slotPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

// writeSlot marshals v and atomically replaces the slot file.
func (s *Store) writeSlot(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.slotPath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// removeSlot deletes a slot file. A missing file is not an error.
func (s *Store) removeSlot(name string) error {
	if err := os.Remove(s.slotPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
