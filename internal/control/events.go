// Package control carries control-surface events (menu selections, dropped
// files, external preference edits, the localhost API) to the render loop.
// Nothing in this package touches sessions or GPU state directly; everything
// goes through the settings bus.
package control

// Option identifies one discrete renderer setting.
type Option int

const (
	OptionColorScheme Option = iota
	OptionDensity
	OptionNoiseStrength
	OptionLineLength
	OptionLineWidth
	OptionViewScale
	OptionBrightness
)

// String returns the wire name of the option, as used by the control API.
func (o Option) String() string {
	switch o {
	case OptionColorScheme:
		return "color_scheme"
	case OptionDensity:
		return "density"
	case OptionNoiseStrength:
		return "noise_strength"
	case OptionLineLength:
		return "line_length"
	case OptionLineWidth:
		return "line_width"
	case OptionViewScale:
		return "view_scale"
	case OptionBrightness:
		return "brightness"
	default:
		return "unknown"
	}
}

// OptionFromName parses a wire name back into an Option.
func OptionFromName(name string) (Option, bool) {
	for _, o := range []Option{
		OptionColorScheme, OptionDensity, OptionNoiseStrength,
		OptionLineLength, OptionLineWidth, OptionViewScale, OptionBrightness,
	} {
		if o.String() == name {
			return o, true
		}
	}
	return 0, false
}

// EventKind discriminates control-surface events.
type EventKind int

const (
	// EventSelectOption sets one discrete option to a preset index.
	EventSelectOption EventKind = iota
	// EventCustomImage extracts a palette from the image at Path.
	EventCustomImage
	// EventToggleRunOnLogin flips the start-at-login preference.
	EventToggleRunOnLogin
	// EventQuit asks the process to shut down.
	EventQuit
)

// Event is one discrete control-surface action.
type Event struct {
	Kind   EventKind
	Option Option
	Index  uint32
	Path   string
}
