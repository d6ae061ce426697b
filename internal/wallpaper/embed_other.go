//go:build !darwin && !windows

package wallpaper

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Marceswan/driftpaper/internal/display"
)

// No desktop-shell concept to embed into; the window stays a plain window.

func embedWindow(win *glfw.Window, desc display.Descriptor) error {
	return ErrEmbedUnsupported
}

func reassertAfterShow(win *glfw.Window) {}

// MoveToDisplay repositions a window after a topology change.
func MoveToDisplay(win *glfw.Window, desc display.Descriptor) {
	if win == nil {
		return
	}
	win.SetPos(desc.X, desc.Y)
	win.SetSize(desc.LogicalWidth, desc.LogicalHeight)
}
