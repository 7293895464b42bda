package types

// Rom is a catalog entry for an imported ROM. The binary payload is stored
// separately under the same id.
type Rom struct {
	ID         string `json:"id"`
	Name       string `json:"name"`   // original file name or user-chosen name
	System     string `json:"system"` // platform id, see the platforms package
	LastPlayed int64  `json:"lastPlayed"` // Unix milliseconds
}

// LegacyRom is a pre-split library entry with the payload inlined as base64.
// It exists only to be migrated into the catalog once.
type LegacyRom struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	System     string `json:"system"`
	LastPlayed int64  `json:"lastPlayed,omitempty"`
	FileData   string `json:"fileData,omitempty"`
}
