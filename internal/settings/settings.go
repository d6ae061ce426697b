// Package settings defines the renderer-facing settings snapshot and the
// change bus that carries discrete option changes from control-surface
// threads to the render loop.
package settings

// ColorMode selects how line colors are generated.
type ColorMode int

const (
	ColorOriginal ColorMode = iota
	ColorPlasma
	ColorPoolside
	ColorSpaceGrey
	ColorCustom
)

// String returns the menu label for the color mode.
func (m ColorMode) String() string {
	switch m {
	case ColorOriginal:
		return "Original"
	case ColorPlasma:
		return "Plasma"
	case ColorPoolside:
		return "Poolside"
	case ColorSpaceGrey:
		return "Space Grey"
	case ColorCustom:
		return "Custom Image"
	default:
		return "Original"
	}
}

// WheelColors is the number of entries in a ColorWheel.
const WheelColors = 6

// ColorWheel is a fixed 6-entry palette packed as RGBA float quads,
// ordered by ascending hue. Alpha is always 1.
type ColorWheel [WheelColors * 4]float32

// Snapshot is an immutable bundle of renderer parameters built from the
// discrete user options. Changing a setting means building and broadcasting
// a new Snapshot, never mutating one in place.
type Snapshot struct {
	ColorMode            ColorMode
	GridSpacing          uint32
	NoiseMultiplier      float32
	LineLength           float32
	LineWidth            float32
	ViewScale            float32
	BrightnessMultiplier float32
}

// State holds the raw discrete option indexes shared between the control
// surface and the render loop. It is the only cross-thread settings state;
// everything else is derived from it on the render thread.
type State struct {
	ColorScheme   uint32
	Density       uint32
	NoiseStrength uint32
	LineLength    uint32
	LineWidth     uint32
	ViewScale     uint32
	Brightness    uint32
}
