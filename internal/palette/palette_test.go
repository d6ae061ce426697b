package palette

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marceswan/driftpaper/internal/settings"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFeaturelessImageYieldsNeutralSpread(t *testing.T) {
	// Mid-grey has no chroma, so every pixel is filtered out.
	wheel := FromImage(solidImage(50, 50, color.RGBA{128, 128, 128, 255}))

	prev := float32(-1)
	for i := 0; i < settings.WheelColors; i++ {
		r := wheel[i*4]
		g := wheel[i*4+1]
		b := wheel[i*4+2]
		a := wheel[i*4+3]

		assert.Equal(t, r, g, "entry %d must be achromatic", i)
		assert.Equal(t, g, b, "entry %d must be achromatic", i)
		assert.Equal(t, float32(1), a)
		assert.Greater(t, r, prev, "lightness must increase across the spread")
		prev = r
	}
	assert.InDelta(t, 0.2, wheel[0], 1e-6)
	assert.InDelta(t, 0.8, wheel[5*4], 1e-6)
}

func TestExtremeLightnessIsFiltered(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				img.Set(x, y, color.RGBA{5, 0, 0, 255}) // near black
			} else {
				img.Set(x, y, color.RGBA{255, 250, 250, 255}) // near white
			}
		}
	}

	// Nothing qualifies, so the neutral fallback kicks in.
	wheel := FromImage(img)
	assert.Equal(t, wheel[0], wheel[1])
	assert.Equal(t, wheel[1], wheel[2])
}

func TestTwoHueImageSplitsWheel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if x < 12 {
				img.Set(x, y, color.RGBA{200, 30, 30, 255})
			} else {
				img.Set(x, y, color.RGBA{30, 30, 200, 255})
			}
		}
	}

	wheel := FromImage(img)

	reds, blues := 0, 0
	for i := 0; i < settings.WheelColors; i++ {
		r := wheel[i*4]
		b := wheel[i*4+2]
		assert.Equal(t, float32(1), wheel[i*4+3])
		if r > b {
			reds++
		} else {
			blues++
		}
	}
	// Two source hues, each duplicated until the wheel is full.
	assert.Equal(t, 3, reds)
	assert.Equal(t, 3, blues)

	// Entries are ordered by ascending hue: reds before blues.
	assert.Greater(t, wheel[0], wheel[2], "first entry should be red-dominant")
	assert.Greater(t, wheel[5*4+2], wheel[5*4], "last entry should be blue-dominant")
}

func TestLargeImageIsDownscaled(t *testing.T) {
	img := solidImage(800, 400, color.RGBA{40, 160, 60, 255})

	wheel := FromImage(img)
	for i := 0; i < settings.WheelColors; i++ {
		assert.Greater(t, wheel[i*4+1], wheel[i*4], "entry %d should stay green-dominant", i)
	}
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile("/nonexistent/image.png")
	require.Error(t, err)
}
