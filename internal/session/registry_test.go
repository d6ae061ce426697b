package session

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marceswan/driftpaper/internal/display"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// fakeRenderer mimics the flux contract: grid spacing follows the last
// applied snapshot.
type fakeRenderer struct {
	spacing  uint32
	updates  int
	resizes  int
	released bool
	wheel    settings.ColorWheel
}

func (f *fakeRenderer) GridSpacing() uint32 { return f.spacing }

func (f *fakeRenderer) Update(_ *wgpu.Device, _ *wgpu.Queue, snap settings.Snapshot) {
	f.spacing = snap.GridSpacing
	f.updates++
}

func (f *fakeRenderer) Resize(_ *wgpu.Device, _ *wgpu.Queue, _, _, _, _ uint32) {
	f.resizes++
}

func (f *fakeRenderer) Animate(_ *wgpu.Device, _ *wgpu.Queue, _ *wgpu.CommandEncoder, _ *wgpu.TextureView, _ float64) {
}

func (f *fakeRenderer) InjectWheel(_ *wgpu.Device, _ *wgpu.Queue, wheel settings.ColorWheel) error {
	f.wheel = wheel
	return nil
}

func (f *fakeRenderer) Release() { f.released = true }

func testSession(idx int, spacing uint32) (*Session, *fakeRenderer) {
	fake := &fakeRenderer{spacing: spacing}
	s := &Session{
		desc:      display.Descriptor{Index: idx, LogicalWidth: 1920, LogicalHeight: 1080},
		renderer:  fake,
		logicalW:  1920,
		logicalH:  1080,
		physicalW: 3840,
		physicalH: 2160,
	}
	return s, fake
}

func TestApplySettingsSameDensityNeverResizes(t *testing.T) {
	s, fake := testSession(0, 15)

	s.ApplySettings(settings.Snapshot{GridSpacing: 15, LineWidth: 16})
	assert.Equal(t, 1, fake.updates)
	assert.Equal(t, 0, fake.resizes, "identical density must not trigger a resize")

	s.ApplySettings(settings.Snapshot{GridSpacing: 15, BrightnessMultiplier: 3.5})
	assert.Equal(t, 2, fake.updates)
	assert.Equal(t, 0, fake.resizes)
}

func TestApplySettingsDensityChangeResizesOnce(t *testing.T) {
	s, fake := testSession(0, 15)

	s.ApplySettings(settings.Snapshot{GridSpacing: 25})
	assert.Equal(t, 1, fake.updates)
	assert.Equal(t, 1, fake.resizes)

	// Spacing is now 25; applying it again must not resize.
	s.ApplySettings(settings.Snapshot{GridSpacing: 25})
	assert.Equal(t, 1, fake.resizes)
}

func TestApplyAllReachesEverySessionBeforeReturn(t *testing.T) {
	reg := NewRegistry()
	s1, f1 := testSession(0, 15)
	s2, f2 := testSession(1, 15)
	reg.Add(s1)
	reg.Add(s2)

	reg.ApplyAll(settings.Snapshot{GridSpacing: 10})
	assert.Equal(t, 1, f1.updates)
	assert.Equal(t, 1, f2.updates)
	assert.Equal(t, uint32(10), f1.spacing)
	assert.Equal(t, uint32(10), f2.spacing)
}

func TestInjectAll(t *testing.T) {
	reg := NewRegistry()
	s1, f1 := testSession(0, 15)
	s2, f2 := testSession(1, 15)
	reg.Add(s1)
	reg.Add(s2)

	var wheel settings.ColorWheel
	wheel[0] = 0.5
	reg.InjectAll(wheel)
	assert.Equal(t, wheel, f1.wheel)
	assert.Equal(t, wheel, f2.wheel)
}

func TestReconcileShrinkDestroysExtras(t *testing.T) {
	reg := NewRegistry()
	s1, f1 := testSession(0, 15)
	s2, f2 := testSession(1, 15)
	reg.Add(s1)
	reg.Add(s2)

	displays := []display.Descriptor{{Index: 0, LogicalWidth: 2560, LogicalHeight: 1440}}
	resized := 0
	reg.Reconcile(displays, func(s *Session, d display.Descriptor) { resized++ }, nil)

	require.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, resized)
	assert.False(t, f1.released)
	assert.True(t, f2.released, "session past the new display count must be torn down")
	assert.Equal(t, 2560, s1.Display().LogicalWidth, "surviving session adopts the new descriptor")
}

func TestReconcileGrowCreatesSessions(t *testing.T) {
	reg := NewRegistry()
	s1, _ := testSession(0, 15)
	reg.Add(s1)

	displays := []display.Descriptor{
		{Index: 0, LogicalWidth: 1920, LogicalHeight: 1080},
		{Index: 1, LogicalWidth: 1440, LogicalHeight: 900},
	}
	created := 0
	reg.Reconcile(displays, nil, func(d display.Descriptor) (*Session, error) {
		created++
		s, _ := testSession(d.Index, 15)
		return s, nil
	})

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 1, created)
}

func TestPreferredFormatOrder(t *testing.T) {
	caps := wgpu.SurfaceCapabilities{
		Formats: []wgpu.TextureFormat{
			wgpu.TextureFormatBGRA8UnormSrgb,
			wgpu.TextureFormatBGRA8Unorm,
			wgpu.TextureFormatRGB10A2Unorm,
		},
	}
	format, err := preferredFormat(caps)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGB10A2Unorm, format)

	caps.Formats = []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb}
	format, err = preferredFormat(caps)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, format)
}

func TestPreferredFormatEmptyCapabilities(t *testing.T) {
	_, err := preferredFormat(wgpu.SurfaceCapabilities{})
	assert.ErrorIs(t, err, ErrAdapterUnavailable)
}
