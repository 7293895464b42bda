// Package catalog is the durable ROM library: metadata and binary payloads
// live in two bbolt buckets keyed by id, mirrored by an in-memory metadata
// cache for synchronous reads. The cache is updated strictly after the
// corresponding transaction commits, so readers never observe an entry whose
// write failed.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"retro-arcade/constants"
	"retro-arcade/types"
)

// Logger defines the logging needed by the store.
type Logger interface {
	LogWarningf(format string, args ...interface{})
	LogErrorf(format string, args ...interface{})
}

// LegacyProvider is the old flat-JSON library that Open migrates from once.
type LegacyProvider interface {
	Migrated() bool
	SetMigrated() error
	LoadRomLibrary() ([]types.LegacyRom, error)
	ClearRomLibrary() error
}

var (
	metaBucket  = []byte(constants.MetaBucket)
	blobsBucket = []byte(constants.BlobsBucket)
)

// Store is the ROM catalog.
type Store struct {
	db  *bolt.DB // nil when the backend is unavailable
	log Logger

	mu    sync.RWMutex
	cache map[string]types.Rom

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Open creates or opens the catalog at path, runs the one-time legacy
// migration, and loads the metadata cache. It never fails: when the backend
// cannot be used the store degrades to empty and read-only, lookups miss, and
// writes return ErrUnavailable.
func Open(path string, legacy LegacyProvider, log Logger) *Store {
	s := &Store{
		log:   log,
		cache: map[string]types.Rom{},
		subs:  map[int]func(){},
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.LogWarningf("catalog: cannot open %s, ROM storage disabled: %v", path, err)
		return s
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(metaBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(blobsBucket)
		return err
	}); err != nil {
		log.LogWarningf("catalog: cannot prepare %s, ROM storage disabled: %v", path, err)
		db.Close()
		return s
	}
	s.db = db

	migrated := 0
	if legacy != nil {
		migrated = s.migrateLegacy(legacy)
	}
	if err := s.loadCache(); err != nil {
		s.log.LogErrorf("catalog: loading metadata cache: %v", err)
	}
	if migrated > 0 {
		s.notify()
	}
	return s
}

// Available reports whether the durable backend opened.
func (s *Store) Available() bool {
	return s.db != nil
}

func (s *Store) loadCache() error {
	rows := map[string]types.Rom{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).ForEach(func(k, v []byte) error {
			var rom types.Rom
			if err := json.Unmarshal(v, &rom); err != nil {
				s.log.LogWarningf("catalog: skipping unreadable metadata row %q: %v", k, err)
				return nil
			}
			rows[rom.ID] = rom
			return nil
		})
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cache = rows
	s.mu.Unlock()
	return nil
}

// List returns a snapshot of all catalog metadata, sorted by name then system.
// Mutating the result does not touch the catalog.
func (s *Store) List() []types.Rom {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Rom, 0, len(s.cache))
	for _, rom := range s.cache {
		out = append(out, rom)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].System < out[j].System
	})
	return out
}

// Get returns the cached metadata for id, or nil when unknown.
func (s *Store) Get(id string) *types.Rom {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rom, ok := s.cache[id]; ok {
		return &rom
	}
	return nil
}

// GetBlob returns the stored payload for id, or nil when it is missing or the
// backend is unavailable. Callers must treat a nil payload for a known id as
// missing data, not as an empty ROM.
func (s *Store) GetBlob(id string) ([]byte, error) {
	if s.db == nil {
		return nil, nil
	}
	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(blobsBucket).Get([]byte(id)); v != nil {
			payload = make([]byte, len(v))
			copy(payload, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: reading blob %s: %w", id, err)
	}
	return payload, nil
}

// Add stores a ROM and returns its id. Re-adding an existing (name, system)
// pair overwrites that entry under its existing id; anything else gets a
// fresh one. Metadata and payload are written in one transaction and
// lastPlayed is set to now.
func (s *Store) Add(name, system string, data []byte) (string, error) {
	if s.db == nil {
		return "", ErrUnavailable
	}

	s.mu.RLock()
	id := ""
	for _, rom := range s.cache {
		if rom.Name == name && rom.System == system {
			id = rom.ID
			break
		}
	}
	s.mu.RUnlock()
	if id == "" {
		id = "rom_" + uuid.NewString()
	}

	rom := types.Rom{ID: id, Name: name, System: system, LastPlayed: time.Now().UnixMilli()}
	raw, err := json.Marshal(rom)
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(metaBucket).Put([]byte(id), raw); err != nil {
			return err
		}
		return tx.Bucket(blobsBucket).Put([]byte(id), data)
	})
	if err != nil {
		return "", fmt.Errorf("catalog: storing %q: %w", name, wrapWrite(err))
	}

	s.mu.Lock()
	s.cache[id] = rom
	s.mu.Unlock()
	s.notify()
	return id, nil
}

// TouchLastPlayed sets lastPlayed to now. Unknown ids are a no-op.
func (s *Store) TouchLastPlayed(id string) error {
	if s.db == nil {
		return nil
	}
	s.mu.RLock()
	rom, ok := s.cache[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	rom.LastPlayed = time.Now().UnixMilli()
	raw, err := json.Marshal(rom)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put([]byte(id), raw)
	})
	if err != nil {
		return fmt.Errorf("catalog: updating %s: %w", id, wrapWrite(err))
	}

	s.mu.Lock()
	s.cache[id] = rom
	s.mu.Unlock()
	return nil
}

// Remove deletes metadata and payload together. Unknown ids are a no-op.
func (s *Store) Remove(id string) error {
	if s.db == nil {
		return nil
	}
	s.mu.RLock()
	_, known := s.cache[id]
	s.mu.RUnlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(metaBucket).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(blobsBucket).Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("catalog: removing %s: %w", id, wrapWrite(err))
	}

	if known {
		s.mu.Lock()
		delete(s.cache, id)
		s.mu.Unlock()
		s.notify()
	}
	return nil
}

// Subscribe registers fn to run after every catalog mutation. Delivery is
// synchronous and at least once per mutation, with no ordering guarantee
// across subscribers. The returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close releases the durable backend.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
