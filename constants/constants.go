package constants

import "time"

// Durable store files, relative to the app directory
const (
	RomsDBFile   = "roms.db"
	WatchDBFile  = "watch.db"
	DataFile     = "data.json"
	MigratedFile = "roms-migrated"
)

// Catalog and registry buckets
const (
	MetaBucket    = "romMeta"
	BlobsBucket   = "romBlobs"
	FoldersBucket = "folders"
)

// Event Names
const (
	EventLibraryChanged = "library-changed"
	EventWatchScan      = "watch-scan"
	EventGameStarted    = "game-started"
	EventGameExited     = "game-exited"
)

// Path Components
const (
	AppDir     = ".retro-arcade"
	ScratchDir = "scratch"
)

// Watch folder polling
const (
	WatchPollInterval = 30 * time.Second
	MaxScanDepth      = 3 // levels below a watched folder's root
)
