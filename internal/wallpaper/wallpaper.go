// Package wallpaper turns plain top-level windows into desktop wallpaper:
// bottom of the z-order, click-through, visible on every virtual desktop.
// Two platform strategies exist, desktop window level on macOS and shell
// re-parenting on Windows; everywhere else the window stays a plain window.
package wallpaper

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Marceswan/driftpaper/internal/display"
	"github.com/Marceswan/driftpaper/internal/logger"
)

var (
	// ErrShellNotFound means the desktop shell structures needed for
	// embedding are missing. The window keeps working as a plain window.
	ErrShellNotFound = errors.New("desktop shell window not found")

	// ErrEmbedUnsupported means this platform has no desktop-shell concept
	// to embed into.
	ErrEmbedUnsupported = errors.New("wallpaper embedding not supported on this platform")
)

// Phase tracks the embedding lifecycle of one window. Transitions only move
// forward: Created to Embedded to Visible.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseEmbedded
	PhaseVisible
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseEmbedded:
		return "embedded"
	case PhaseVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// Host owns the wallpaper configuration of one window. Embedding failure is
// soft: the phase still advances and the window stays usable as an ordinary
// top-level window.
type Host struct {
	win      *glfw.Window
	desc     display.Descriptor
	phase    Phase
	embedded bool
}

// NewHost wraps a window targeted at the given display. The window must
// outlive the host.
func NewHost(win *glfw.Window, desc display.Descriptor) *Host {
	return &Host{win: win, desc: desc}
}

// Phase returns the current lifecycle phase.
func (h *Host) Phase() Phase {
	return h.phase
}

// Embedded reports whether the platform embedding actually took effect.
func (h *Host) Embedded() bool {
	return h.embedded
}

// Embed applies the platform wallpaper configuration. It may be called only
// once, from the Created phase; the phase advances to Embedded even when the
// platform configuration fails, since the failure is soft and the window
// continues as a plain window. The soft error is returned for logging.
func (h *Host) Embed() error {
	if h.phase != PhaseCreated {
		return fmt.Errorf("embed called in phase %s", h.phase)
	}
	h.phase = PhaseEmbedded

	if err := embedWindow(h.win, h.desc); err != nil {
		logger.WithComponent("wallpaper").Warn().
			Err(err).
			Int("display", h.desc.Index).
			Msg("Embedding failed, continuing as plain window")
		return err
	}

	h.embedded = true
	logger.WithComponent("wallpaper").Info().
		Int("display", h.desc.Index).
		Int("x", h.desc.X).
		Int("y", h.desc.Y).
		Msg("Window embedded as wallpaper")
	return nil
}

// Show makes the window visible and re-asserts the embedding flags that
// window toolkits are known to reset on first show (desktop level, ignore
// mouse events, order back).
func (h *Host) Show() error {
	if h.phase != PhaseEmbedded {
		return fmt.Errorf("show called in phase %s", h.phase)
	}
	if h.win != nil {
		h.win.Show()
	}
	if h.embedded {
		reassertAfterShow(h.win)
	}
	h.phase = PhaseVisible
	return nil
}
