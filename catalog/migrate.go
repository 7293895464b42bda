package catalog

import (
	"encoding/base64"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"retro-arcade/types"
)

// migrateLegacy moves the old inline-base64 library into the split store and
// returns how many entries it imported. It runs at most once per
// installation: the completion flag is checked first and set only after the
// transaction commits and the legacy list is cleared. A single bad entry is
// skipped; it never aborts the batch.
func (s *Store) migrateLegacy(legacy LegacyProvider) int {
	if legacy.Migrated() {
		return 0
	}

	entries, err := legacy.LoadRomLibrary()
	if err != nil {
		// Leave the flag unset so a repaired blob can still migrate later.
		s.log.LogWarningf("catalog: legacy library unreadable, migration skipped: %v", err)
		return 0
	}
	if len(entries) == 0 {
		if err := legacy.SetMigrated(); err != nil {
			s.log.LogErrorf("catalog: recording migration: %v", err)
		}
		return 0
	}

	imported := 0
	err = s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		blobs := tx.Bucket(blobsBucket)
		for _, entry := range entries {
			if entry.FileData == "" {
				continue
			}
			payload, err := base64.StdEncoding.DecodeString(entry.FileData)
			if err != nil {
				s.log.LogWarningf("catalog: migration skipping %q: %v", entry.Name, err)
				continue
			}
			rom := types.Rom{ID: entry.ID, Name: entry.Name, System: entry.System, LastPlayed: entry.LastPlayed}
			if rom.LastPlayed == 0 {
				rom.LastPlayed = time.Now().UnixMilli()
			}
			raw, err := json.Marshal(rom)
			if err != nil {
				return err
			}
			if err := meta.Put([]byte(rom.ID), raw); err != nil {
				return err
			}
			if err := blobs.Put([]byte(rom.ID), payload); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		s.log.LogErrorf("catalog: legacy migration failed: %v", wrapWrite(err))
		return 0
	}

	if err := legacy.ClearRomLibrary(); err != nil {
		s.log.LogErrorf("catalog: clearing legacy library: %v", err)
	}
	if err := legacy.SetMigrated(); err != nil {
		s.log.LogErrorf("catalog: recording migration: %v", err)
	}
	return imported
}
