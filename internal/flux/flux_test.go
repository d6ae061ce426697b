package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marceswan/driftpaper/internal/settings"
)

func newTestRenderer(t *testing.T, snap settings.Snapshot) *Renderer {
	t.Helper()
	// GPU-less construction: the wheel upload is deferred until a real
	// device exists.
	r, err := New(nil, nil, 0, 1920, 1080, 3840, 2160, snap)
	require.NoError(t, err)
	return r
}

func TestGridSpacingReflectsSnapshot(t *testing.T) {
	r := newTestRenderer(t, settings.Snapshot{GridSpacing: 15, ViewScale: 1})
	assert.Equal(t, uint32(15), r.GridSpacing())

	r.Update(nil, nil, settings.Snapshot{GridSpacing: 25, ViewScale: 1})
	assert.Equal(t, uint32(25), r.GridSpacing())
}

func TestResizeRebuildsLineGrid(t *testing.T) {
	r := newTestRenderer(t, settings.Snapshot{GridSpacing: 15, ViewScale: 1})
	before := r.lineCount

	r.Resize(nil, nil, 960, 540, 1920, 1080)
	assert.Less(t, r.lineCount, before, "smaller logical area means fewer lines")
}

func TestDenserSpacingMeansMoreLines(t *testing.T) {
	sparse := newTestRenderer(t, settings.Snapshot{GridSpacing: 25, ViewScale: 1})
	dense := newTestRenderer(t, settings.Snapshot{GridSpacing: 10, ViewScale: 1})
	assert.Greater(t, dense.lineCount, sparse.lineCount)
}

func TestPresetSwitchReplacesWheel(t *testing.T) {
	r := newTestRenderer(t, settings.Snapshot{ColorMode: settings.ColorOriginal, GridSpacing: 15, ViewScale: 1})
	original := r.Lines.Wheel()

	r.Update(nil, nil, settings.Snapshot{ColorMode: settings.ColorPlasma, GridSpacing: 15, ViewScale: 1})
	assert.NotEqual(t, original, r.Lines.Wheel())
	assert.Equal(t, presetWheels[settings.ColorPlasma], r.Lines.Wheel())
}

func TestCustomModeKeepsInjectedWheel(t *testing.T) {
	r := newTestRenderer(t, settings.Snapshot{ColorMode: settings.ColorOriginal, GridSpacing: 15, ViewScale: 1})

	var custom settings.ColorWheel
	for i := range custom {
		custom[i] = float32(i) / float32(len(custom))
	}
	require.NoError(t, r.Lines.UpdateColorWheel(nil, nil, custom))

	// Switching to Custom must not clobber the injected wheel.
	r.Update(nil, nil, settings.Snapshot{ColorMode: settings.ColorCustom, GridSpacing: 15, ViewScale: 1})
	assert.Equal(t, custom, r.Lines.Wheel())
}

func TestPresetWheelsHaveOpaqueAlpha(t *testing.T) {
	for mode, wheel := range presetWheels {
		for i := 0; i < settings.WheelColors; i++ {
			assert.Equal(t, float32(1), wheel[i*4+3], "mode %v entry %d", mode, i)
		}
	}
}
