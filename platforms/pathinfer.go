package platforms

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Folder-name aliases for each system, matched against normalized path
// segments. First matching segment, then first matching system, wins.
var pathAliases = []struct {
	system  string
	aliases []string
}{
	{"nes", []string{"nes", "nintendo-entertainment-system", "famicom"}},
	{"snes", []string{"snes", "super-nintendo", "super-famicom"}},
	{"gb", []string{"gb", "game-boy"}},
	{"gbc", []string{"gbc", "game-boy-color"}},
	{"gba", []string{"gba", "game-boy-advance"}},
	{"genesis", []string{"genesis", "mega-drive", "megadrive", "sega-genesis"}},
	{"sms", []string{"sms", "master-system", "mark-iii"}},
	{"n64", []string{"n64", "nintendo-64"}},
	{"psx", []string{"psx", "ps1", "playstation"}},
	{"pce", []string{"pce", "pc-engine", "turbografx", "turbografx-16"}},
	{"ngp", []string{"ngp", "neo-geo-pocket"}},
	{"ws", []string{"ws", "wonderswan"}},
	{"dreamcast", []string{"dreamcast"}},
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeSegment(segment string) string {
	s := strings.ToLower(segment)
	s = strings.ReplaceAll(s, "&", "and")
	s = nonAlnumRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// InferSystemFromPath guesses a system from the segments of a folder path
// ("ROMs/GBA/..." is GBA, "archive/nintendo-64-usa/..." is N64). Returns ""
// when no segment names a known system.
func InferSystemFromPath(path string) string {
	if path == "" {
		return ""
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		segment = normalizeSegment(segment)
		if segment == "" {
			continue
		}
		for _, entry := range pathAliases {
			for _, alias := range entry.aliases {
				if segment == alias ||
					strings.HasPrefix(segment, alias+"-") ||
					strings.HasSuffix(segment, "-"+alias) ||
					strings.Contains(segment, "-"+alias+"-") {
					return entry.system
				}
			}
		}
	}
	return ""
}
