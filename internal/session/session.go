// Package session binds one GPU render pipeline to each display. Every
// session exclusively owns its surface, device and queue; nothing is shared
// across displays, so one display's GPU failure cannot corrupt another.
package session

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Marceswan/driftpaper/internal/display"
	"github.com/Marceswan/driftpaper/internal/flux"
	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/settings"
)

var (
	// ErrAdapterUnavailable means no GPU adapter can drive the surface.
	ErrAdapterUnavailable = errors.New("no compatible GPU adapter found")

	// ErrDeviceCreationFailed means the adapter refused to create a device.
	ErrDeviceCreationFailed = errors.New("GPU device creation failed")
)

// renderer is the slice of the flux contract the session drives.
type renderer interface {
	GridSpacing() uint32
	Update(device *wgpu.Device, queue *wgpu.Queue, snap settings.Snapshot)
	Resize(device *wgpu.Device, queue *wgpu.Queue, logicalW, logicalH, physicalW, physicalH uint32)
	Animate(device *wgpu.Device, queue *wgpu.Queue, encoder *wgpu.CommandEncoder, view *wgpu.TextureView, timestampMs float64)
	InjectWheel(device *wgpu.Device, queue *wgpu.Queue, wheel settings.ColorWheel) error
	Release()
}

// Session owns the complete render state for one display.
type Session struct {
	win      *glfw.Window
	desc     display.Descriptor
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   wgpu.SurfaceConfiguration
	renderer renderer

	logicalW, logicalH   uint32
	physicalW, physicalH uint32
}

// preferredFormat picks the surface format, favoring wide-gamut and
// non-sRGB formats in a fixed order. An adapter whose surface reports no
// formats at all cannot drive the session.
func preferredFormat(caps wgpu.SurfaceCapabilities) (wgpu.TextureFormat, error) {
	if len(caps.Formats) == 0 {
		return 0, fmt.Errorf("%w: surface reports no texture formats", ErrAdapterUnavailable)
	}
	preferred := []wgpu.TextureFormat{
		wgpu.TextureFormatRGB10A2Unorm,
		wgpu.TextureFormatBGRA8Unorm,
		wgpu.TextureFormatRGBA8Unorm,
		wgpu.TextureFormatBGRA8UnormSrgb,
		wgpu.TextureFormatRGBA8UnormSrgb,
	}
	for _, want := range preferred {
		for _, have := range caps.Formats {
			if have == want {
				return want, nil
			}
		}
	}
	return caps.Formats[0], nil
}

// Create binds a session to the given window and display. The window must
// outlive the session.
func Create(instance *wgpu.Instance, win *glfw.Window, desc display.Descriptor) (*Session, error) {
	log := logger.WithComponent("session")

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceLowPower,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	}

	log.Info().Int("display", desc.Index).Msg("GPU adapter selected")

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceCreationFailed, err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	format, err := preferredFormat(caps)
	if err != nil {
		return nil, err
	}

	// The session trusts only the live framebuffer size; display hints can
	// disagree with reality on high-DPI systems.
	physicalW, physicalH := win.GetFramebufferSize()
	if physicalW < 1 {
		physicalW = 1
	}
	if physicalH < 1 {
		physicalH = 1
	}

	config := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(physicalW),
		Height:      uint32(physicalH),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &config)

	s := &Session{
		win:       win,
		desc:      desc,
		surface:   surface,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		config:    config,
		logicalW:  uint32(desc.LogicalWidth),
		logicalH:  uint32(desc.LogicalHeight),
		physicalW: uint32(physicalW),
		physicalH: uint32(physicalH),
	}

	log.Info().
		Int("display", desc.Index).
		Str("format", fmt.Sprintf("%v", format)).
		Uint32("physical_w", s.physicalW).
		Uint32("physical_h", s.physicalH).
		Msg("Surface configured")
	return s, nil
}

// AttachRenderer creates the flux renderer for the session with the initial
// settings snapshot.
func (s *Session) AttachRenderer(snap settings.Snapshot) error {
	r, err := flux.New(s.device, s.queue, s.config.Format,
		s.logicalW, s.logicalH, s.physicalW, s.physicalH, snap)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = r
	return nil
}

// Display returns the descriptor the session was created for.
func (s *Session) Display() display.Descriptor {
	return s.desc
}

// Window returns the window the session renders into.
func (s *Session) Window() *glfw.Window {
	return s.win
}

// ApplySettings pushes a new snapshot to the renderer. The line grid is
// rebuilt only when the grid spacing actually changed; grid rebuilds are
// expensive and must not run on every settings change.
func (s *Session) ApplySettings(snap settings.Snapshot) {
	densityChanged := s.renderer.GridSpacing() != snap.GridSpacing

	s.renderer.Update(s.device, s.queue, snap)

	if densityChanged {
		logger.WithComponent("session").Info().
			Int("display", s.desc.Index).
			Uint32("grid_spacing", snap.GridSpacing).
			Msg("Density changed, rebuilding line grid")
		s.renderer.Resize(s.device, s.queue,
			s.logicalW, s.logicalH, s.physicalW, s.physicalH)
	}
}

// InjectWheel hands a custom color wheel to the renderer.
func (s *Session) InjectWheel(wheel settings.ColorWheel) error {
	return s.renderer.InjectWheel(s.device, s.queue, wheel)
}

// Resize reconfigures the surface for a new backing-store size and resizes
// the renderer. Driven by OS window-resize events and topology changes, not
// by settings.
func (s *Session) Resize(logicalW, logicalH, physicalW, physicalH uint32) {
	if physicalW < 1 {
		physicalW = 1
	}
	if physicalH < 1 {
		physicalH = 1
	}
	s.logicalW, s.logicalH = logicalW, logicalH
	s.physicalW, s.physicalH = physicalW, physicalH

	if s.surface != nil {
		s.config.Width = physicalW
		s.config.Height = physicalH
		s.surface.Configure(s.adapter, s.device, &s.config)
	}
	s.renderer.Resize(s.device, s.queue, logicalW, logicalH, physicalW, physicalH)
}

// Animate renders and presents one frame. GPU errors are logged and the
// session is left in its last good state; a running session is never torn
// down for a frame failure.
func (s *Session) Animate(timestampMs float64) {
	if s.surface == nil {
		return
	}
	log := logger.WithComponent("session")

	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		log.Error().Err(err).Int("display", s.desc.Index).Msg("Failed to acquire surface texture")
		return
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		log.Error().Err(err).Int("display", s.desc.Index).Msg("Failed to create texture view")
		return
	}
	defer view.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		log.Error().Err(err).Int("display", s.desc.Index).Msg("Failed to create command encoder")
		return
	}
	defer encoder.Release()

	s.renderer.Animate(s.device, s.queue, encoder, view, timestampMs)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		log.Error().Err(err).Int("display", s.desc.Index).Msg("Failed to finish command encoder")
		return
	}
	defer cmd.Release()

	s.queue.Submit(cmd)
	s.surface.Present()
}

// Release frees every GPU object the session owns. The window is left to
// the caller.
func (s *Session) Release() {
	if s.renderer != nil {
		s.renderer.Release()
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
}
