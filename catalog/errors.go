package catalog

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrUnavailable is returned for writes when the durable backend could
	// not be opened. Reads degrade to misses instead.
	ErrUnavailable = errors.New("rom storage unavailable")

	// ErrStorageFull is the quota-class failure: the backend rejected a write
	// because the disk is full. Callers test with errors.Is; a scan pass that
	// sees it stops, since further writes would fail the same way.
	ErrStorageFull = errors.New("rom storage full")
)

// wrapWrite classifies a failed durable write.
func wrapWrite(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrStorageFull, err)
	}
	return err
}
