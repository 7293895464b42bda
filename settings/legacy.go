package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"retro-arcade/types"
)

// The functions below serve the catalog's one-time legacy migration. The
// marker file records completion; it is never removed by normal operation, so
// the migration can run at most once per installation.

// Migrated reports whether the one-time ROM migration already ran.
func (s *Store) Migrated() bool {
	_, err := os.Stat(s.flagPath)
	return err == nil
}

// SetMigrated records migration completion.
func (s *Store) SetMigrated() error {
	if err := os.MkdirAll(filepath.Dir(s.flagPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return os.WriteFile(s.flagPath, []byte("true\n"), 0o644)
}

// LoadRomLibrary returns the legacy inline ROM entries. A missing blob is an
// empty library; an unparseable one is an error so the caller can leave the
// migration flag unset.
func (s *Store) LoadRomLibrary() ([]types.LegacyRom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.RomLibrary, nil
}

// ClearRomLibrary empties the legacy ROM list, keeping the rest of the blob.
func (s *Store) ClearRomLibrary() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data.RomLibrary = []types.LegacyRom{}
	return s.save(data)
}
