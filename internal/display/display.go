// Package display enumerates physical displays and watches for topology
// changes.
package display

import (
	"errors"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Marceswan/driftpaper/internal/logger"
)

var (
	// ErrNoDisplays means the OS reported no displays at all. Fatal for
	// wallpaper-mode startup.
	ErrNoDisplays = errors.New("no displays found")

	// ErrWatchUnsupported is returned by Watch on platforms with no live
	// display-change notification.
	ErrWatchUnsupported = errors.New("display change watch not supported on this platform")
)

// Descriptor describes one physical display at enumeration time. Identity is
// the index within the current enumeration only; descriptors are rebuilt
// wholesale on every topology change and never mutated in place.
type Descriptor struct {
	Index          int
	Name           string
	X              int
	Y              int
	LogicalWidth   int
	LogicalHeight  int
	PhysicalWidth  int
	PhysicalHeight int
}

// Service produces display descriptors and surfaces topology changes.
type Service struct {
	enumerate func() []Descriptor
}

// NewService creates a topology service backed by the OS enumeration.
func NewService() *Service {
	return &Service{enumerate: glfwEnumerate}
}

// newServiceWith injects a custom enumeration, for tests.
func newServiceWith(enumerate func() []Descriptor) *Service {
	return &Service{enumerate: enumerate}
}

// Enumerate returns the current ordered display set. It never fails: when
// the OS reports no displays at all, a single synthetic 1920x1080 descriptor
// at the origin is returned so callers always have something to render to.
func (s *Service) Enumerate() []Descriptor {
	displays := s.enumerate()
	if len(displays) == 0 {
		logger.WithComponent("display").Warn().
			Msg("No displays reported, using synthetic 1920x1080 fallback")
		return []Descriptor{{
			Index:          0,
			Name:           "synthetic",
			LogicalWidth:   1920,
			LogicalHeight:  1080,
			PhysicalWidth:  1920,
			PhysicalHeight: 1080,
		}}
	}
	return normalize(displays)
}

// EnumerateStrict is Enumerate without the synthetic fallback: an empty
// display set is an error. Wallpaper-mode startup uses it because a
// wallpaper with no display to cover is a misconfiguration, not something
// to paper over.
func (s *Service) EnumerateStrict() ([]Descriptor, error) {
	displays := s.enumerate()
	if len(displays) == 0 {
		return nil, ErrNoDisplays
	}
	return normalize(displays), nil
}

func normalize(displays []Descriptor) []Descriptor {
	for i := range displays {
		d := &displays[i]
		d.Index = i
		// The backing store can never be smaller than the logical frame.
		if d.PhysicalWidth < d.LogicalWidth {
			d.PhysicalWidth = d.LogicalWidth
		}
		if d.PhysicalHeight < d.LogicalHeight {
			d.PhysicalHeight = d.LogicalHeight
		}
	}
	return displays
}

// Watch installs an OS notification that fires onChange when the display
// arrangement changes. onChange runs on the event-loop thread during event
// polling. Windows delivers no such notification in this design; callers
// should log the gap and continue with the startup topology.
func (s *Service) Watch(onChange func()) error {
	if runtime.GOOS == "windows" {
		return ErrWatchUnsupported
	}
	glfw.SetMonitorCallback(func(monitor *glfw.Monitor, event glfw.PeripheralEvent) {
		logger.WithComponent("display").Info().
			Str("monitor", monitor.GetName()).
			Bool("connected", event == glfw.Connected).
			Msg("Display topology changed")
		onChange()
	})
	return nil
}

func glfwEnumerate() []Descriptor {
	monitors := glfw.GetMonitors()
	displays := make([]Descriptor, 0, len(monitors))
	for _, mon := range monitors {
		mode := mon.GetVideoMode()
		if mode == nil {
			continue
		}
		x, y := mon.GetPos()
		sx, sy := mon.GetContentScale()
		displays = append(displays, Descriptor{
			Name:           mon.GetName(),
			X:              x,
			Y:              y,
			LogicalWidth:   mode.Width,
			LogicalHeight:  mode.Height,
			PhysicalWidth:  int(float32(mode.Width) * sx),
			PhysicalHeight: int(float32(mode.Height) * sy),
		})
	}
	return displays
}
