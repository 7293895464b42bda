// Package platforms maps ROM file names to the systems the app can emulate.
// Dispatch is an ordered table: where an extension belongs to more than one
// system (".bin", ".chd") the first matching entry in declaration order wins.
package platforms

import (
	"regexp"
	"strings"
)

// Platform describes one supported system and the file extensions mapped to it.
type Platform struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// Table is the ordered platform list.
var Table = []Platform{
	{ID: "nes", Name: "NES", Extensions: []string{".nes"}},
	{ID: "snes", Name: "SNES", Extensions: []string{".sfc", ".smc"}},
	{ID: "gb", Name: "Game Boy", Extensions: []string{".gb"}},
	{ID: "gbc", Name: "Game Boy Color", Extensions: []string{".gbc"}},
	{ID: "gba", Name: "Game Boy Advance", Extensions: []string{".gba"}},
	{ID: "genesis", Name: "Genesis", Extensions: []string{".md", ".smd", ".bin", ".gen"}},
	{ID: "sms", Name: "Master System", Extensions: []string{".sms"}},
	{ID: "n64", Name: "N64", Extensions: []string{".z64", ".n64", ".v64"}},
	{ID: "psx", Name: "PlayStation", Extensions: []string{".bin", ".cue", ".chd", ".pbp", ".iso", ".img"}},
	{ID: "pce", Name: "PC Engine", Extensions: []string{".pce"}},
	{ID: "ngp", Name: "Neo Geo Pocket", Extensions: []string{".ngp"}},
	{ID: "ws", Name: "WonderSwan", Extensions: []string{".ws", ".wsc"}},
	{ID: "dreamcast", Name: "Dreamcast", Extensions: []string{".cdi", ".gdi", ".chd"}},
}

// ArchiveExtensions are container formats a ROM may arrive in. A bare archive
// carries no system of its own; the name inside it decides.
var ArchiveExtensions = []string{".zip", ".7z", ".rar"}

var (
	extensionRe = regexp.MustCompile(`\.[^.]+$`)
	// Trailing parenthesized tag, usually a region or revision: "(USA, Europe)".
	regionTagRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// DisplayName returns the display name for a system id, or the id itself when
// it is not in the table.
func DisplayName(system string) string {
	for _, p := range Table {
		if p.ID == system {
			return p.Name
		}
	}
	return system
}

// IsKnown reports whether system is a supported platform id.
func IsKnown(system string) bool {
	for _, p := range Table {
		if p.ID == system {
			return true
		}
	}
	return false
}

// InferSystem maps a file name to a system id by extension, case-insensitively.
// Archive names are matched on the extension in front of the archive suffix
// ("game.sfc.zip" is SNES); a bare "game.zip" infers nothing. Returns "" when
// no platform matches.
func InferSystem(fileName string) string {
	lower := strings.ToLower(fileName)
	for _, arc := range ArchiveExtensions {
		if strings.HasSuffix(lower, arc) {
			return matchExtension(strings.TrimSuffix(lower, arc))
		}
	}
	return matchExtension(lower)
}

func matchExtension(lowerName string) string {
	for _, p := range Table {
		for _, ext := range p.Extensions {
			if strings.HasSuffix(lowerName, ext) {
				return p.ID
			}
		}
	}
	return ""
}

// IsRomFile reports whether a file name is an import candidate: its extension
// belongs to some platform, or it is an archive that may hold a ROM.
func IsRomFile(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, arc := range ArchiveExtensions {
		if strings.HasSuffix(lower, arc) {
			return true
		}
	}
	return matchExtension(lower) != ""
}

// GameBase normalizes a file name to its title for fuzzy deduplication:
// the extension and any trailing parenthesized tag are stripped, so
// "Game (USA).gba" and "Game (USA, Europe).gba" both collapse to "Game".
// A name that is nothing but a tag keeps its extension-stripped form.
func GameBase(fileName string) string {
	base := strings.TrimSpace(extensionRe.ReplaceAllString(fileName, ""))
	stripped := strings.TrimSpace(regionTagRe.ReplaceAllString(base, ""))
	if stripped == "" {
		return base
	}
	return stripped
}
