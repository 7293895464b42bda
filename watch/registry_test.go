package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// MockPicker implements DirectoryPicker
type MockPicker struct {
	Path string
	Err  error
}

func (m *MockPicker) PickDirectory() (string, error) {
	return m.Path, m.Err
}

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := OpenRegistry(filepath.Join(t.TempDir(), "watch.db"), &MockLogger{})
	t.Cleanup(func() { reg.Close() })
	if !reg.Supported() {
		t.Fatal("Registry should be supported on a writable path")
	}
	return reg
}

func TestRegistryAddAndList(t *testing.T) {
	reg := openTestRegistry(t)
	dir := t.TempDir()

	res := reg.Add(&MockPicker{Path: dir})
	if !res.Ok || res.Aborted || res.Error != "" {
		t.Fatalf("Expected Ok result, got %+v", res)
	}
	if res.Name != filepath.Base(dir) {
		t.Errorf("Expected folder name %q, got %q", filepath.Base(dir), res.Name)
	}

	folders := reg.List()
	if len(folders) != 1 {
		t.Fatalf("Expected 1 folder, got %d", len(folders))
	}
	if folders[0].Path != dir || folders[0].ID == "" {
		t.Errorf("Unexpected folder record: %+v", folders[0])
	}
}

func TestRegistryAddCancelled(t *testing.T) {
	reg := openTestRegistry(t)

	res := reg.Add(&MockPicker{Path: ""})
	if !res.Aborted {
		t.Errorf("Cancelling the picker must report an aborted outcome, got %+v", res)
	}
	if res.Ok || res.Error != "" {
		t.Errorf("Aborted outcome must not carry Ok or Error, got %+v", res)
	}
	if len(reg.List()) != 0 {
		t.Error("Cancelled add must not register a folder")
	}
}

func TestRegistryAddPickerError(t *testing.T) {
	reg := openTestRegistry(t)

	res := reg.Add(&MockPicker{Err: errors.New("dialog broke")})
	if res.Ok || res.Aborted || res.Error == "" {
		t.Errorf("Picker failure must report an error outcome, got %+v", res)
	}
}

func TestRegistryAddRejectsNonDirectory(t *testing.T) {
	reg := openTestRegistry(t)

	file := filepath.Join(t.TempDir(), "rom.nes")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := reg.Add(&MockPicker{Path: file})
	if res.Ok || res.Error == "" {
		t.Errorf("Picking a plain file must be an error outcome, got %+v", res)
	}

	res = reg.Add(&MockPicker{Path: filepath.Join(t.TempDir(), "missing")})
	if res.Ok || res.Error == "" {
		t.Errorf("Picking a missing path must be an error outcome, got %+v", res)
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := openTestRegistry(t)

	reg.Add(&MockPicker{Path: t.TempDir()})
	folders := reg.List()
	if len(folders) != 1 {
		t.Fatalf("Expected 1 folder, got %d", len(folders))
	}

	if err := reg.Remove(folders[0].ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(reg.List()) != 0 {
		t.Error("Removed folder still listed")
	}

	if err := reg.Remove("folder_unknown"); err != nil {
		t.Errorf("Removing an unknown id must be a no-op, got %v", err)
	}
}

func TestRegistryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.db")
	dir := t.TempDir()

	reg := OpenRegistry(path, &MockLogger{})
	reg.Add(&MockPicker{Path: dir})
	if err := reg.Close(); err != nil {
		t.Fatal(err)
	}

	reg = OpenRegistry(path, &MockLogger{})
	defer reg.Close()
	folders := reg.List()
	if len(folders) != 1 || folders[0].Path != dir {
		t.Errorf("Folder grant did not survive reopen: %+v", folders)
	}
}

func TestRegistryUnavailableBackend(t *testing.T) {
	log := &MockLogger{}
	reg := OpenRegistry(filepath.Join(t.TempDir(), "missing", "watch.db"), log)
	defer reg.Close()

	if reg.Supported() {
		t.Error("Registry on an unusable path must report unsupported")
	}
	if len(log.Warnings) == 0 {
		t.Error("Expected a warning about the unusable backend")
	}
	if folders := reg.List(); folders != nil {
		t.Errorf("Expected no folders, got %v", folders)
	}
	res := reg.Add(&MockPicker{Path: t.TempDir()})
	if res.Ok || res.Error == "" {
		t.Errorf("Add on an unsupported registry must be an error outcome, got %+v", res)
	}
	if err := reg.Remove("folder_x"); err != nil {
		t.Errorf("Remove on an unsupported registry must be a no-op, got %v", err)
	}
}
