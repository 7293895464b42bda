package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"retro-arcade/constants"
	"retro-arcade/types"
)

// ConfigProvider defines the configuration needed for launching games.
type ConfigProvider interface {
	GetEmulatorExecutable() string
	SaveEmulatorExecutable(path string) error
}

// CatalogProvider defines the catalog reads needed for launching games.
type CatalogProvider interface {
	Get(id string) *types.Rom
	GetBlob(id string) ([]byte, error)
	TouchLastPlayed(id string) error
}

// UIProvider defines the UI interactions needed for launching games.
type UIProvider interface {
	SelectEmulatorExecutable() (string, error)
	LogInfof(format string, args ...interface{})
	LogErrorf(format string, args ...interface{})
	EventsEmit(eventName string, args ...interface{})
	WindowHide()
	WindowShow()
}

// Launcher handles the orchestration of launching a game in an external
// emulator.
type Launcher struct {
	config     ConfigProvider
	catalog    CatalogProvider
	ui         UIProvider
	scratchDir string
}

// New creates a new Launcher materializing ROM payloads under dataDir.
func New(cfg ConfigProvider, catalog CatalogProvider, ui UIProvider, dataDir string) *Launcher {
	return &Launcher{
		config:     cfg,
		catalog:    catalog,
		ui:         ui,
		scratchDir: filepath.Join(dataDir, constants.ScratchDir),
	}
}

// PlayRom launches the given ROM in the configured emulator. The catalog
// payload is written out to a scratch file first since emulators take paths,
// not bytes. The emulator runs detached; PlayRom returns once it has started.
func (l *Launcher) PlayRom(id string) error {
	rom := l.catalog.Get(id)
	if rom == nil {
		return fmt.Errorf("unknown ROM id %s", id)
	}

	data, err := l.catalog.GetBlob(id)
	if err != nil {
		return fmt.Errorf("failed to load ROM data: %w", err)
	}
	if data == nil {
		return fmt.Errorf("ROM data for %s is missing. Please re-import it.", rom.Name)
	}

	exePath, err := l.resolveEmulator()
	if err != nil {
		return err
	}

	romPath, err := l.materialize(rom, data)
	if err != nil {
		return fmt.Errorf("failed to prepare ROM file: %w", err)
	}
	l.ui.LogInfof("PlayRom: launching %s (%s) via %s", rom.Name, rom.System, exePath)

	if err := l.catalog.TouchLastPlayed(id); err != nil {
		l.ui.LogErrorf("PlayRom: failed to record play time: %v", err)
	}

	cmd := exec.Command(exePath, romPath)
	cmd.Dir = filepath.Dir(exePath)

	// Run in a goroutine so we don't block the Wails UI.
	go func() {
		l.ui.WindowHide()
		defer func() {
			os.Remove(romPath)
			l.ui.WindowShow()
			l.ui.EventsEmit(constants.EventGameExited, nil)
		}()

		l.ui.EventsEmit(constants.EventGameStarted, rom.ID)
		out, err := cmd.CombinedOutput()
		if err != nil {
			l.ui.LogErrorf("PlayRom: emulator exited with error: %v\nOutput: %s", err, string(out))
		}
	}()

	return nil
}

// resolveEmulator returns the configured emulator executable, prompting the
// user and persisting the choice when none is set yet.
func (l *Launcher) resolveEmulator() (string, error) {
	exePath := l.config.GetEmulatorExecutable()
	if exePath == "" {
		var err error
		exePath, err = l.ui.SelectEmulatorExecutable()
		if err != nil {
			return "", fmt.Errorf("emulator not configured: %w", err)
		}
		if exePath == "" {
			return "", fmt.Errorf("launch cancelled: no emulator selected")
		}
		if err := l.config.SaveEmulatorExecutable(exePath); err != nil {
			l.ui.LogErrorf("PlayRom: failed to remember emulator path: %v", err)
		}
		return exePath, nil
	}

	if _, err := os.Stat(exePath); err != nil {
		return "", fmt.Errorf("emulator executable not found at configured path: %s", exePath)
	}
	return exePath, nil
}

// materialize writes the ROM payload to a per-ROM scratch file and returns
// its path. The file keeps the original name so emulators that key behavior
// off the extension behave normally.
func (l *Launcher) materialize(rom *types.Rom, data []byte) (string, error) {
	dir := filepath.Join(l.scratchDir, rom.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(rom.Name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
