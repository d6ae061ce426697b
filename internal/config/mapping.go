package config

import "github.com/Marceswan/driftpaper/internal/settings"

// Profile names accepted in the mapping_profile preference. The standard
// profile drives the wallpaper; showcase uses the windowed demo's sparser
// grid and longer lines. Anything unrecognized means standard.
const (
	ProfileStandard = "standard"
	ProfileShowcase = "showcase"
)

// mappingTable converts the discrete option indexes into renderer values.
// Out-of-range indexes map to each option's default entry.
type mappingTable struct {
	gridSpacing []uint32
	noise       []float32
	lineLength  []float32
	lineWidth   []float32
	viewScale   []float32
	brightness  []float32
}

var standardTable = mappingTable{
	gridSpacing: []uint32{25, 15, 10},
	noise:       []float32{0.15, 0.45, 0.75, 1.0},
	lineLength:  []float32{63, 142, 220, 315},
	lineWidth:   []float32{4, 9, 16},
	viewScale:   []float32{1.0, 1.6, 2.2},
	brightness:  []float32{0.5, 1.0, 2.0, 3.5},
}

var showcaseTable = mappingTable{
	gridSpacing: []uint32{36, 22, 14},
	noise:       []float32{0.15, 0.45, 0.75, 1.0},
	lineLength:  []float32{80, 160, 250, 340},
	lineWidth:   []float32{4, 9, 16},
	viewScale:   []float32{1.0, 1.6, 2.2},
	brightness:  []float32{0.5, 1.0, 2.0, 3.5},
}

func tableFor(profile string) mappingTable {
	if profile == ProfileShowcase {
		return showcaseTable
	}
	return standardTable
}

func pickU32(values []uint32, idx uint32, def int) uint32 {
	if int(idx) < len(values) {
		return values[idx]
	}
	return values[def]
}

func pickF32(values []float32, idx uint32, def int) float32 {
	if int(idx) < len(values) {
		return values[idx]
	}
	return values[def]
}

// GridSpacing maps a density index under the given profile. Sessions use it
// to decide whether a settings change moves the line grid.
func GridSpacing(profile string, density uint32) uint32 {
	return pickU32(tableFor(profile).gridSpacing, density, 1)
}

// BuildSnapshot turns raw option indexes into a renderer settings snapshot.
// mode is resolved separately by the caller so the custom-wheel fallback
// stays a memory-only decision.
func BuildSnapshot(profile string, state settings.State, mode settings.ColorMode) settings.Snapshot {
	t := tableFor(profile)
	return settings.Snapshot{
		ColorMode:            mode,
		GridSpacing:          pickU32(t.gridSpacing, state.Density, 1),
		NoiseMultiplier:      pickF32(t.noise, state.NoiseStrength, 1),
		LineLength:           pickF32(t.lineLength, state.LineLength, 1),
		LineWidth:            pickF32(t.lineWidth, state.LineWidth, 1),
		ViewScale:            pickF32(t.viewScale, state.ViewScale, 1),
		BrightnessMultiplier: pickF32(t.brightness, state.Brightness, 1),
	}
}
