// Package flux is the line-field renderer consumed by render sessions. The
// simulation itself is intentionally minimal; the package's job is the
// renderer contract: construction against a device/queue/format, resize with
// separate logical and physical sizes, live settings updates, per-frame
// animation into a caller-provided encoder, and custom color-wheel
// injection through the Lines sub-object.
package flux

import (
	"fmt"
	"image"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/palette"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// Preset wheels for the non-custom color modes, 6 RGBA quads each.
var presetWheels = map[settings.ColorMode]settings.ColorWheel{
	settings.ColorOriginal: {
		0.31, 0.20, 0.53, 1, 0.23, 0.40, 0.75, 1, 0.19, 0.62, 0.75, 1,
		0.22, 0.76, 0.64, 1, 0.47, 0.82, 0.41, 1, 0.79, 0.74, 0.27, 1,
	},
	settings.ColorPlasma: {
		0.90, 0.12, 0.39, 1, 0.95, 0.33, 0.23, 1, 0.98, 0.55, 0.12, 1,
		0.99, 0.72, 0.15, 1, 0.85, 0.25, 0.55, 1, 0.66, 0.14, 0.67, 1,
	},
	settings.ColorPoolside: {
		0.04, 0.37, 0.55, 1, 0.06, 0.51, 0.66, 1, 0.13, 0.64, 0.74, 1,
		0.32, 0.76, 0.80, 1, 0.58, 0.86, 0.84, 1, 0.82, 0.94, 0.90, 1,
	},
	settings.ColorSpaceGrey: {
		0.16, 0.16, 0.18, 1, 0.26, 0.26, 0.29, 1, 0.38, 0.38, 0.42, 1,
		0.51, 0.51, 0.55, 1, 0.65, 0.65, 0.69, 1, 0.80, 0.80, 0.83, 1,
	},
}

// Renderer draws the animated line field. One renderer per session; it never
// shares GPU objects across sessions.
type Renderer struct {
	format               wgpu.TextureFormat
	logicalW, logicalH   uint32
	physicalW, physicalH uint32
	snap                 settings.Snapshot
	lineCount            uint32

	// Lines owns line colors and accepts direct color-wheel injection.
	Lines *Lines
}

// New creates a renderer for the given surface format and sizes. The initial
// settings snapshot seeds the line grid and colors.
func New(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat,
	logicalW, logicalH, physicalW, physicalH uint32, snap settings.Snapshot) (*Renderer, error) {

	r := &Renderer{
		format: format,
		snap:   snap,
		Lines:  newLines(snap.ColorMode),
	}
	r.layout(logicalW, logicalH, physicalW, physicalH)

	if err := r.Lines.ensureWheelBuffer(device, queue); err != nil {
		return nil, fmt.Errorf("failed to create color wheel buffer: %w", err)
	}

	logger.WithComponent("flux").Debug().
		Uint32("logical_w", logicalW).
		Uint32("logical_h", logicalH).
		Uint32("lines", r.lineCount).
		Msg("Renderer created")
	return r, nil
}

// GridSpacing returns the spacing of the current line grid. Sessions compare
// it against an incoming snapshot to decide whether a resize is needed.
func (r *Renderer) GridSpacing() uint32 {
	return r.snap.GridSpacing
}

// Update applies a new settings snapshot. It never rebuilds the line grid;
// callers resize separately when the grid spacing changed.
func (r *Renderer) Update(device *wgpu.Device, queue *wgpu.Queue, snap settings.Snapshot) {
	modeChanged := snap.ColorMode != r.snap.ColorMode
	r.snap = snap
	if modeChanged && snap.ColorMode != settings.ColorCustom {
		r.Lines.setPreset(snap.ColorMode)
		if err := r.Lines.ensureWheelBuffer(device, queue); err != nil {
			logger.WithComponent("flux").Error().Err(err).Msg("Failed to update color wheel buffer")
		}
	}
}

// Resize rebuilds the line grid for new logical dimensions and retargets the
// physical output size.
func (r *Renderer) Resize(device *wgpu.Device, queue *wgpu.Queue,
	logicalW, logicalH, physicalW, physicalH uint32) {
	r.layout(logicalW, logicalH, physicalW, physicalH)
	logger.WithComponent("flux").Debug().
		Uint32("lines", r.lineCount).
		Msg("Line grid rebuilt")
}

func (r *Renderer) layout(logicalW, logicalH, physicalW, physicalH uint32) {
	r.logicalW, r.logicalH = logicalW, logicalH
	r.physicalW, r.physicalH = physicalW, physicalH

	spacing := r.snap.GridSpacing
	if spacing == 0 {
		spacing = 15
	}
	scale := r.snap.ViewScale
	if scale <= 0 {
		scale = 1
	}
	cols := uint32(float32(logicalW)/(float32(spacing)*scale)) + 1
	rows := uint32(float32(logicalH)/(float32(spacing)*scale)) + 1
	r.lineCount = cols * rows
}

// Animate records one frame into the caller's encoder, targeting view. The
// same timestamp is fed to every session in a frame so displays stay in
// sync.
func (r *Renderer) Animate(device *wgpu.Device, queue *wgpu.Queue,
	encoder *wgpu.CommandEncoder, view *wgpu.TextureView, timestampMs float64) {

	clear := r.backgroundColor(timestampMs)
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "flux:render",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			ClearValue: clear,
			StoreOp:    wgpu.StoreOpStore,
		}},
	})
	pass.End()
	pass.Release()
}

// backgroundColor drifts slowly through the wheel, scaled by brightness and
// noise so settings changes are visible immediately.
func (r *Renderer) backgroundColor(timestampMs float64) wgpu.Color {
	wheel := r.Lines.Wheel()

	phase := math.Mod(timestampMs/12000, 1) * settings.WheelColors
	i := int(phase) % settings.WheelColors
	j := (i + 1) % settings.WheelColors
	t := phase - math.Floor(phase)

	mix := func(a, b float32) float64 {
		return float64(a) + (float64(b)-float64(a))*t
	}
	dim := float64(r.snap.BrightnessMultiplier) * 0.22
	pulse := 1 + 0.1*float64(r.snap.NoiseMultiplier)*math.Sin(timestampMs/900)

	return wgpu.Color{
		R: mix(wheel[i*4], wheel[j*4]) * dim * pulse,
		G: mix(wheel[i*4+1], wheel[j*4+1]) * dim * pulse,
		B: mix(wheel[i*4+2], wheel[j*4+2]) * dim * pulse,
		A: 1,
	}
}

// InjectWheel delegates a custom color-wheel injection to Lines.
func (r *Renderer) InjectWheel(device *wgpu.Device, queue *wgpu.Queue, wheel settings.ColorWheel) error {
	return r.Lines.UpdateColorWheel(device, queue, wheel)
}

// SampleColorsFromImage replaces the active wheel with one extracted from
// the given image.
func (r *Renderer) SampleColorsFromImage(device *wgpu.Device, queue *wgpu.Queue, img image.Image) error {
	wheel := palette.FromImage(img)
	return r.Lines.UpdateColorWheel(device, queue, wheel)
}

// Lines owns the per-line color state. It accepts direct GPU-buffer
// injection of a custom color wheel, bypassing the preset table.
type Lines struct {
	wheel  settings.ColorWheel
	buffer *wgpu.Buffer
}

func newLines(mode settings.ColorMode) *Lines {
	l := &Lines{}
	l.setPreset(mode)
	return l
}

func (l *Lines) setPreset(mode settings.ColorMode) {
	if wheel, ok := presetWheels[mode]; ok {
		l.wheel = wheel
		return
	}
	l.wheel = presetWheels[settings.ColorOriginal]
}

// Wheel returns the active color wheel.
func (l *Lines) Wheel() settings.ColorWheel {
	return l.wheel
}

// UpdateColorWheel injects a custom wheel and uploads it to the GPU.
func (l *Lines) UpdateColorWheel(device *wgpu.Device, queue *wgpu.Queue, wheel settings.ColorWheel) error {
	l.wheel = wheel
	return l.ensureWheelBuffer(device, queue)
}

func (l *Lines) ensureWheelBuffer(device *wgpu.Device, queue *wgpu.Queue) error {
	if device == nil || queue == nil {
		return nil
	}
	if l.buffer == nil {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "buffer:color_wheel",
			Size:             uint64(4 * len(l.wheel)),
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		l.buffer = buf
	}
	return queue.WriteBuffer(l.buffer, 0, wgpu.ToBytes(l.wheel[:]))
}

// Release frees the GPU resources owned by the renderer.
func (r *Renderer) Release() {
	if r.Lines.buffer != nil {
		r.Lines.buffer.Release()
		r.Lines.buffer = nil
	}
}
