package watch

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"retro-arcade/catalog"
	"retro-arcade/types"
)

// MockFolderSource implements FolderSource
type MockFolderSource struct {
	Folders []types.WatchedFolder
}

func (m *MockFolderSource) List() []types.WatchedFolder {
	return append([]types.WatchedFolder{}, m.Folders...)
}

// MockScanner implements FolderScanner
type MockScanner struct {
	mu      sync.Mutex
	scanned []string
	passes  chan string

	AddPerFolder int
	FailFolder   string // folder name that fails
	FailErr      error
}

func NewMockScanner() *MockScanner {
	return &MockScanner{passes: make(chan string, 64), AddPerFolder: 1}
}

func (m *MockScanner) ScanFolder(folder types.WatchedFolder) (int, error) {
	m.mu.Lock()
	m.scanned = append(m.scanned, folder.Name)
	m.mu.Unlock()
	m.passes <- folder.Name
	if folder.Name == m.FailFolder {
		return 0, m.FailErr
	}
	return m.AddPerFolder, nil
}

func (m *MockScanner) Scanned() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.scanned...)
}

func (m *MockScanner) waitForScans(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-m.passes:
		case <-time.After(5 * time.Second):
			t.Fatalf("Timed out waiting for scan %d of %d", i+1, n)
		}
	}
}

func testFolders(names ...string) *MockFolderSource {
	src := &MockFolderSource{}
	for i, name := range names {
		src.Folders = append(src.Folders, types.WatchedFolder{
			ID:   fmt.Sprintf("folder_%d", i),
			Name: name,
			Path: "/roms/" + name,
		})
	}
	return src
}

func TestScanNowTotalsAllFolders(t *testing.T) {
	sc := NewMockScanner()
	sc.AddPerFolder = 2
	w := NewScheduler(testFolders("a", "b", "c"), sc, &MockLogger{})

	total, err := w.ScanNow()
	if err != nil {
		t.Fatalf("ScanNow failed: %v", err)
	}
	if total != 6 {
		t.Errorf("Expected 6 total imports, got %d", total)
	}
	if w.Running() {
		t.Error("ScanNow must not start the timer")
	}
}

func TestScanNowStorageFullAbortsRemaining(t *testing.T) {
	sc := NewMockScanner()
	sc.FailFolder = "b"
	sc.FailErr = fmt.Errorf("watch: scanning b: %w", catalog.ErrStorageFull)
	w := NewScheduler(testFolders("a", "b", "c"), sc, &MockLogger{})

	total, err := w.ScanNow()
	if !errors.Is(err, catalog.ErrStorageFull) {
		t.Fatalf("Expected a storage-full error, got %v", err)
	}
	if total != 1 {
		t.Errorf("Imports before the failure must be reported, got %d", total)
	}
	scanned := sc.Scanned()
	if len(scanned) != 2 || scanned[1] != "b" {
		t.Errorf("Folders after a storage-full failure must not be scanned, got %v", scanned)
	}
}

func TestScanNowOtherErrorsContinue(t *testing.T) {
	log := &MockLogger{}
	sc := NewMockScanner()
	sc.FailFolder = "b"
	sc.FailErr = errors.New("permission denied")
	w := NewScheduler(testFolders("a", "b", "c"), sc, log)

	total, err := w.ScanNow()
	if err != nil {
		t.Fatalf("A per-folder failure must not fail the pass, got %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 imports from the surviving folders, got %d", total)
	}
	if len(sc.Scanned()) != 3 {
		t.Errorf("All folders must be scanned, got %v", sc.Scanned())
	}
	if len(log.Warnings) == 0 {
		t.Error("Expected a warning for the failed folder")
	}
}

func TestStartRunsImmediatePass(t *testing.T) {
	sc := NewMockScanner()
	w := NewScheduler(testFolders("a"), sc, &MockLogger{})

	w.Start()
	defer w.Stop()

	sc.waitForScans(t, 1)
	if !w.Running() {
		t.Error("Scheduler must report running after Start")
	}
}

func TestStartWhileRunningRestarts(t *testing.T) {
	sc := NewMockScanner()
	w := NewScheduler(testFolders("a"), sc, &MockLogger{})

	w.Start()
	w.Start()
	defer w.Stop()

	// Each Start performs its own immediate pass; the first timer is
	// cancelled rather than doubled up.
	sc.waitForScans(t, 2)
	if !w.Running() {
		t.Error("Scheduler must report running after restart")
	}
}

func TestPeriodicPasses(t *testing.T) {
	sc := NewMockScanner()
	w := NewScheduler(testFolders("a"), sc, &MockLogger{})
	w.interval = 10 * time.Millisecond

	w.Start()
	sc.waitForScans(t, 3)
	w.Stop()

	if w.Running() {
		t.Error("Scheduler must report stopped after Stop")
	}
}

func TestStopFreezesScanning(t *testing.T) {
	sc := NewMockScanner()
	w := NewScheduler(testFolders("a"), sc, &MockLogger{})
	w.interval = 10 * time.Millisecond

	w.Start()
	sc.waitForScans(t, 2)
	w.Stop()

	// Drain any pass that was already in flight, then confirm silence.
	for {
		select {
		case <-sc.passes:
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	select {
	case <-sc.passes:
		t.Error("Scan ran after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopIdempotent(t *testing.T) {
	w := NewScheduler(testFolders(), NewMockScanner(), &MockLogger{})

	w.Stop()
	w.Stop()
	if w.Running() {
		t.Error("A never-started scheduler must report stopped")
	}

	w.Start()
	w.Stop()
	w.Stop()
	if w.Running() {
		t.Error("Scheduler must report stopped after Stop")
	}
}

func TestBackgroundPassSurvivesStorageFull(t *testing.T) {
	log := &MockLogger{}
	sc := NewMockScanner()
	sc.FailFolder = "a"
	sc.FailErr = fmt.Errorf("watch: scanning a: %w", catalog.ErrStorageFull)
	w := NewScheduler(testFolders("a"), sc, log)
	w.interval = 10 * time.Millisecond

	w.Start()
	defer w.Stop()

	// The aborted pass is logged and the timer keeps firing.
	sc.waitForScans(t, 3)
}
