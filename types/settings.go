package types

// Settings holds all user-facing application settings
type Settings struct {
	SoundEnabled        bool    `json:"soundEnabled"`
	ShowHints           bool    `json:"showHints"`
	Difficulty          string  `json:"difficulty"`
	Resolution          string  `json:"resolution"`
	UIScale             float64 `json:"uiScale"`
	SidebarCollapsed    bool    `json:"sidebarCollapsed"`
	MyGamesExpanded     bool    `json:"myGamesExpanded"`
	WatchFoldersEnabled bool    `json:"watchFoldersEnabled"`
	EmulatorPath        string  `json:"emulatorPath,omitempty"` // external emulator executable
}
