// Package settings persists the flat application data blob: user settings,
// built-in game high scores, and the legacy inline ROM library that the
// catalog migrates away once.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"retro-arcade/constants"
	"retro-arcade/types"
)

// Logger defines the logging needed by the store.
type Logger interface {
	LogWarningf(format string, args ...interface{})
}

// savedData is the on-disk shape of data.json.
type savedData struct {
	RomLibrary []types.LegacyRom `json:"romLibrary"`
	Settings   *types.Settings   `json:"settings,omitempty"`
	HighScores map[string]int    `json:"highScores,omitempty"`
}

// Store handles loading/saving the data blob and the ROM migration marker.
type Store struct {
	dataPath string
	flagPath string
	mu       sync.RWMutex
	log      Logger
}

// New creates a store rooted at the given app directory.
func New(dir string, log Logger) *Store {
	return &Store{
		dataPath: filepath.Join(dir, constants.DataFile),
		flagPath: filepath.Join(dir, constants.MigratedFile),
		log:      log,
	}
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() types.Settings {
	return types.Settings{
		SoundEnabled:        false,
		ShowHints:           true,
		Difficulty:          "normal",
		Resolution:          "auto",
		UIScale:             1.15,
		SidebarCollapsed:    true,
		MyGamesExpanded:     false,
		WatchFoldersEnabled: false,
	}
}

func (s *Store) load() (savedData, error) {
	raw, err := os.ReadFile(s.dataPath)
	if os.IsNotExist(err) {
		return savedData{}, nil
	}
	if err != nil {
		return savedData{}, fmt.Errorf("failed to read %s: %w", s.dataPath, err)
	}
	var data savedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return savedData{}, fmt.Errorf("failed to parse %s: %w", s.dataPath, err)
	}
	return data, nil
}

func (s *Store) save(data savedData) error {
	if err := os.MkdirAll(filepath.Dir(s.dataPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.dataPath, raw, 0o644)
}

// GetSettings returns the saved settings, or defaults when none exist or the
// blob is unreadable.
func (s *Store) GetSettings() types.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.load()
	if err != nil {
		s.log.LogWarningf("settings: %v", err)
		return DefaultSettings()
	}
	if data.Settings == nil {
		return DefaultSettings()
	}
	return *data.Settings
}

// SaveSettings writes the settings into the data blob. An unreadable blob is
// replaced rather than blocking the save.
func (s *Store) SaveSettings(cfg types.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		s.log.LogWarningf("settings: replacing unreadable data blob: %v", err)
		data = savedData{}
	}
	data.Settings = &cfg
	return s.save(data)
}

// HighScore returns the stored high score for a built-in game, or 0.
func (s *Store) HighScore(gameID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.load()
	if err != nil {
		s.log.LogWarningf("settings: %v", err)
		return 0
	}
	return data.HighScores[gameID]
}

// SetHighScore stores score for a built-in game if it beats the current one.
// It reports whether a new high score was recorded.
func (s *Store) SetHighScore(gameID string, score int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		s.log.LogWarningf("settings: replacing unreadable data blob: %v", err)
		data = savedData{}
	}
	if score <= data.HighScores[gameID] {
		return false, nil
	}
	if data.HighScores == nil {
		data.HighScores = map[string]int{}
	}
	data.HighScores[gameID] = score
	if err := s.save(data); err != nil {
		return false, err
	}
	return true, nil
}

// GetEmulatorExecutable returns the configured emulator binary path.
func (s *Store) GetEmulatorExecutable() string {
	return s.GetSettings().EmulatorPath
}

// SaveEmulatorExecutable persists the emulator binary path.
func (s *Store) SaveEmulatorExecutable(path string) error {
	cfg := s.GetSettings()
	cfg.EmulatorPath = path
	return s.SaveSettings(cfg)
}
