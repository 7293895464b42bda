package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"retro-arcade/catalog"
	"retro-arcade/constants"
	"retro-arcade/types"
)

// FolderSource lists the folders a scan pass covers.
type FolderSource interface {
	List() []types.WatchedFolder
}

// FolderScanner imports new ROMs from a single folder.
type FolderScanner interface {
	ScanFolder(folder types.WatchedFolder) (int, error)
}

// Scheduler drives periodic scan passes across every watched folder.
type Scheduler struct {
	folders  FolderSource
	scanner  FolderScanner
	interval time.Duration
	log      Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewScheduler creates a stopped scheduler polling at the standard interval.
func NewScheduler(folders FolderSource, scanner FolderScanner, log Logger) *Scheduler {
	return &Scheduler{
		folders:  folders,
		scanner:  scanner,
		interval: constants.WatchPollInterval,
		log:      log,
	}
}

// Start begins polling: one pass immediately, then one per interval. Calling
// Start while running restarts cleanly, leaving a single active timer.
func (w *Scheduler) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
}

// Stop cancels the repeating timer; a no-op when already stopped. An
// in-flight pass runs to completion.
func (w *Scheduler) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// Running reports whether the scheduler is polling.
func (w *Scheduler) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// ScanNow runs exactly one pass across all folders regardless of scheduler
// state and returns the total imported. It does not touch the timer.
func (w *Scheduler) ScanNow() (int, error) {
	return w.pass()
}

func (w *Scheduler) run(ctx context.Context) {
	w.backgroundPass()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.backgroundPass()
		}
	}
}

func (w *Scheduler) backgroundPass() {
	if _, err := w.pass(); err != nil {
		// The scheduler keeps running; the next interval will try again.
		w.log.LogWarningf("watch: scan pass aborted: %v", err)
	}
}

// pass scans every watched folder in sequence. A storage-full error aborts
// the remaining folders; any other per-folder failure is logged and the pass
// moves on.
func (w *Scheduler) pass() (int, error) {
	total := 0
	for _, folder := range w.folders.List() {
		added, err := w.scanner.ScanFolder(folder)
		total += added
		if err != nil {
			if errors.Is(err, catalog.ErrStorageFull) {
				return total, err
			}
			w.log.LogWarningf("watch: scan of %s failed: %v", folder.Name, err)
		}
	}
	return total, nil
}
