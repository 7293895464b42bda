package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"retro-arcade/archives"
	"retro-arcade/catalog"
	"retro-arcade/constants"
	"retro-arcade/platforms"
	"retro-arcade/types"
)

// Library is the catalog surface the scanner imports into.
type Library interface {
	List() []types.Rom
	Add(name, system string, data []byte) (string, error)
}

// Scanner finds ROM files in a watched folder that the library does not
// already have, and imports them.
type Scanner struct {
	library Library
	log     Logger
}

// NewScanner creates a scanner importing into the given library.
func NewScanner(library Library, log Logger) *Scanner {
	return &Scanner{library: library, log: log}
}

type candidate struct {
	name string // original file name
	path string // location on disk
}

// ScanFolder walks one watched folder and imports every new ROM found,
// returning the count imported. Two dedup keys guard each candidate: the
// exact name|system pair, and the fuzzy system|gameBase pair that collapses
// region variants of the same title — checked against the library and against
// earlier imports in this same pass. Individual failures are logged and
// skipped; a storage-full failure aborts the scan and propagates.
func (sc *Scanner) ScanFolder(folder types.WatchedFolder) (int, error) {
	files, err := sc.collect(folder.Path, 0)
	if err != nil {
		return 0, fmt.Errorf("watch: scanning %s: %w", folder.Name, err)
	}

	known := map[string]bool{}
	bases := map[string]bool{}
	for _, rom := range sc.library.List() {
		known[rom.Name+"|"+rom.System] = true
		bases[rom.System+"|"+platforms.GameBase(rom.Name)] = true
	}

	added := 0
	for _, c := range files {
		system := platforms.InferSystem(c.name)
		if system == "" && archives.IsArchive(c.name) {
			system, err = archives.InferSystem(c.path)
			if err != nil {
				sc.log.LogWarningf("watch: cannot inspect %s: %v", c.name, err)
				continue
			}
		}
		if system == "" {
			continue
		}

		exactKey := c.name + "|" + system
		baseKey := system + "|" + platforms.GameBase(c.name)
		if known[exactKey] || bases[baseKey] {
			continue
		}

		data, err := os.ReadFile(c.path)
		if err != nil {
			sc.log.LogWarningf("watch: cannot read %s: %v", c.name, err)
			continue
		}
		if _, err := sc.library.Add(c.name, system, data); err != nil {
			if errors.Is(err, catalog.ErrStorageFull) {
				// Further writes would fail the same way.
				return added, err
			}
			sc.log.LogWarningf("watch: failed to import %s: %v", c.name, err)
			continue
		}
		known[exactKey] = true
		bases[baseKey] = true
		added++
	}
	return added, nil
}

// collect gathers ROM-like files, recursing at most MaxScanDepth levels below
// the folder root. An unreadable root is the stale-grant case and fails the
// scan; unreadable subdirectories are skipped.
func (sc *Scanner) collect(dir string, depth int) ([]candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if depth == 0 {
			return nil, err
		}
		sc.log.LogWarningf("watch: skipping unreadable directory %s: %v", dir, err)
		return nil, nil
	}

	var out []candidate
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			if depth < constants.MaxScanDepth {
				sub, err := sc.collect(filepath.Join(dir, name), depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
			}
			continue
		}
		if platforms.IsRomFile(name) {
			out = append(out, candidate{name: name, path: filepath.Join(dir, name)})
		}
	}
	return out, nil
}
