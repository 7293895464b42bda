package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"retro-arcade/archives"
	"retro-arcade/catalog"
	"retro-arcade/constants"
	"retro-arcade/launcher"
	"retro-arcade/platforms"
	"retro-arcade/settings"
	"retro-arcade/types"
	"retro-arcade/watch"
)

// App struct
type App struct {
	ctx     context.Context
	dataDir string

	settings *settings.Store
	catalog  *catalog.Store
	registry *watch.Registry
	scanner  *watch.Scanner
	watcher  *watch.Scheduler
	launcher *launcher.Launcher

	unsubscribe func()
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{dataDir: appDir()}
}

// appDir returns the per-user application directory, falling back to the
// executable's directory when no home is available.
func appDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		exePath, err := os.Executable()
		if err != nil {
			exePath = "."
		}
		return filepath.Dir(exePath)
	}
	return filepath.Join(home, constants.AppDir)
}

// startup is called when the app starts. The context is saved so we can call
// the runtime methods, then every store is brought up against the app
// directory.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.settings = settings.New(a.dataDir, a)
	a.catalog = catalog.Open(filepath.Join(a.dataDir, constants.RomsDBFile), a.settings, a)
	a.registry = watch.OpenRegistry(filepath.Join(a.dataDir, constants.WatchDBFile), a)
	a.scanner = watch.NewScanner(a.catalog, a)
	a.watcher = watch.NewScheduler(a.registry, a.scanner, a)
	a.launcher = launcher.New(a.settings, a.catalog, a, a.dataDir)

	a.unsubscribe = a.catalog.Subscribe(func() {
		wailsRuntime.EventsEmit(a.ctx, constants.EventLibraryChanged)
	})

	if a.settings.GetSettings().WatchFoldersEnabled && a.registry.Supported() {
		a.watcher.Start()
	}
}

// shutdown stops background work and releases the stores.
func (a *App) shutdown(ctx context.Context) {
	a.watcher.Stop()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if err := a.catalog.Close(); err != nil {
		a.LogErrorf("shutdown: closing catalog: %v", err)
	}
	if err := a.registry.Close(); err != nil {
		a.LogErrorf("shutdown: closing watch registry: %v", err)
	}
}

// GetRomLibrary returns every cataloged ROM, sorted for display.
func (a *App) GetRomLibrary() []types.Rom {
	return a.catalog.List()
}

// GetRom returns one cataloged ROM, or nil when unknown.
func (a *App) GetRom(id string) *types.Rom {
	return a.catalog.Get(id)
}

// GetRomData returns the base64 encoded payload of a cataloged ROM for the
// in-browser emulator.
func (a *App) GetRomData(id string) (string, error) {
	data, err := a.catalog.GetBlob(id)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("no data stored for ROM %s", id)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImportRom adds a ROM from the frontend's file picker. The payload arrives
// base64 encoded. An empty system is inferred from the file name.
func (a *App) ImportRom(name, system, dataB64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(dataB64)
	if err != nil {
		return "", fmt.Errorf("invalid ROM payload: %w", err)
	}
	if system == "" {
		system = platforms.InferSystem(name)
	}
	if system == "" {
		return "", fmt.Errorf("cannot determine a system for %s", name)
	}
	return a.catalog.Add(name, system, data)
}

// ImportRomFromPath adds a ROM from a path on disk, inferring its system from
// the file name, the archive contents, or the directory path, in that order.
func (a *App) ImportRomFromPath(path string) (string, error) {
	name := filepath.Base(path)
	system := platforms.InferSystem(name)
	if system == "" && archives.IsArchive(name) {
		system, _ = archives.InferSystem(path)
	}
	if system == "" {
		system = platforms.InferSystemFromPath(path)
	}
	if system == "" {
		return "", fmt.Errorf("cannot determine a system for %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return a.catalog.Add(name, system, data)
}

// RemoveRom deletes a ROM and its payload from the catalog.
func (a *App) RemoveRom(id string) error {
	return a.catalog.Remove(id)
}

// MarkRomPlayed records the play time for a ROM run by the in-browser
// emulator.
func (a *App) MarkRomPlayed(id string) error {
	return a.catalog.TouchLastPlayed(id)
}

// PlayRom launches a ROM in the configured external emulator.
func (a *App) PlayRom(id string) error {
	return a.launcher.PlayRom(id)
}

// GetSettings returns the current user settings.
func (a *App) GetSettings() types.Settings {
	return a.settings.GetSettings()
}

// SaveSettings persists the settings and applies the folder watching toggle.
func (a *App) SaveSettings(s types.Settings) error {
	if err := a.settings.SaveSettings(s); err != nil {
		return err
	}
	if s.WatchFoldersEnabled && a.registry.Supported() {
		a.watcher.Start()
	} else {
		a.watcher.Stop()
	}
	return nil
}

// GetHighScore returns the stored high score for a game, zero when none.
func (a *App) GetHighScore(game string) int {
	return a.settings.HighScore(game)
}

// SetHighScore records a score, reporting whether it beat the stored one.
func (a *App) SetHighScore(game string, score int) (bool, error) {
	return a.settings.SetHighScore(game, score)
}

// WatchFoldersSupported reports whether folder watching works here.
func (a *App) WatchFoldersSupported() bool {
	return a.registry.Supported()
}

// GetWatchedFolders returns every folder the user has granted for watching.
func (a *App) GetWatchedFolders() []types.WatchedFolder {
	return a.registry.List()
}

// AddWatchFolder prompts for a directory and registers it. A successful add
// kicks off a scan pass right away so new ROMs show up without waiting for
// the next poll.
func (a *App) AddWatchFolder() types.AddFolderResult {
	res := a.registry.Add(a)
	if res.Ok {
		go func() {
			added, err := a.watcher.ScanNow()
			if err != nil {
				a.LogWarningf("AddWatchFolder: initial scan failed: %v", err)
			}
			a.EventsEmit(constants.EventWatchScan, added)
		}()
	}
	return res
}

// RemoveWatchFolder drops a folder grant.
func (a *App) RemoveWatchFolder(id string) error {
	return a.registry.Remove(id)
}

// ScanWatchFoldersNow runs one scan pass over every watched folder and
// returns how many ROMs were imported.
func (a *App) ScanWatchFoldersNow() (int, error) {
	added, err := a.watcher.ScanNow()
	a.EventsEmit(constants.EventWatchScan, added)
	return added, err
}

// GetPlatforms returns the supported platform table for the frontend.
func (a *App) GetPlatforms() []platforms.Platform {
	return platforms.Table
}

// PickDirectory prompts the user to choose a directory to watch.
func (a *App) PickDirectory() (string, error) {
	return wailsRuntime.OpenDirectoryDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select ROM Folder to Watch",
	})
}

// SelectEmulatorExecutable prompts the user to locate their emulator binary.
func (a *App) SelectEmulatorExecutable() (string, error) {
	return wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Emulator Executable",
	})
}

// LogInfof logs through the Wails runtime.
func (a *App) LogInfof(format string, args ...interface{}) {
	wailsRuntime.LogInfof(a.ctx, format, args...)
}

// LogWarningf logs through the Wails runtime.
func (a *App) LogWarningf(format string, args ...interface{}) {
	wailsRuntime.LogWarningf(a.ctx, format, args...)
}

// LogErrorf logs through the Wails runtime.
func (a *App) LogErrorf(format string, args ...interface{}) {
	wailsRuntime.LogErrorf(a.ctx, format, args...)
}

// EventsEmit forwards an event to the frontend.
func (a *App) EventsEmit(eventName string, args ...interface{}) {
	wailsRuntime.EventsEmit(a.ctx, eventName, args...)
}

// WindowHide hides the application window.
func (a *App) WindowHide() {
	wailsRuntime.WindowHide(a.ctx)
}

// WindowShow restores the application window.
func (a *App) WindowShow() {
	wailsRuntime.WindowShow(a.ctx)
}
