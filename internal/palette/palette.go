// Package palette extracts a 6-color wheel from a user image by binning
// pixels into 12 hue buckets and averaging the dominant ones.
package palette

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"sort"

	"golang.org/x/image/draw"

	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// maxThumbSize bounds the working image; anything larger is downscaled
// before binning so extraction stays cheap on photos.
const maxThumbSize = 200

const hueBuckets = 12

type bucket struct {
	hSum, sSum, lSum float64
	count            uint64
}

type candidate struct {
	h, s, l float32
	count   uint64
}

// FromFile decodes the image at path and extracts its color wheel.
func FromFile(path string) (settings.ColorWheel, error) {
	f, err := os.Open(path)
	if err != nil {
		return settings.ColorWheel{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	wheel, err := FromReader(f)
	if err != nil {
		return settings.ColorWheel{}, err
	}

	logger.WithComponent("palette").Info().
		Str("path", path).
		Msg("Extracted color wheel from image")
	return wheel, nil
}

// FromReader decodes an image stream and extracts its color wheel.
func FromReader(r io.Reader) (settings.ColorWheel, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return settings.ColorWheel{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// FromImage extracts the wheel from an already-decoded image. It always
// succeeds; featureless images produce a neutral grey spread.
func FromImage(img image.Image) settings.ColorWheel {
	img = thumbnail(img)
	bounds := img.Bounds()

	var buckets [hueBuckets]bucket
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := float32(r16) / 0xffff
			g := float32(g16) / 0xffff
			b := float32(b16) / 0xffff

			max := maxf(r, maxf(g, b))
			min := minf(r, minf(g, b))
			delta := max - min
			l := (max + min) / 2

			// Very dark, very light, and near-grey pixels carry no
			// usable hue.
			if l < 0.08 || l > 0.92 || delta < 0.02 {
				continue
			}

			var s float32
			if l < 0.5 {
				s = delta / (max + min)
			} else {
				s = delta / (2 - max - min)
			}

			var h float32
			switch max {
			case r:
				h = 60 * float32(math.Mod(float64((g-b)/delta), 6))
			case g:
				h = 60 * ((b-r)/delta + 2)
			default:
				h = 60 * ((r-g)/delta + 4)
			}
			if h < 0 {
				h += 360
			}

			idx := int(h / 30)
			if idx > hueBuckets-1 {
				idx = hueBuckets - 1
			}
			buckets[idx].hSum += float64(h)
			buckets[idx].sSum += float64(s)
			buckets[idx].lSum += float64(l)
			buckets[idx].count++
		}
	}

	var candidates []candidate
	for _, b := range buckets {
		if b.count == 0 {
			continue
		}
		n := float64(b.count)
		candidates = append(candidates, candidate{
			h:     float32(b.hSum / n),
			s:     float32(b.sSum / n),
			l:     float32(b.lSum / n),
			count: b.count,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].count > candidates[j].count
	})

	if len(candidates) < settings.WheelColors {
		if len(candidates) == 0 {
			// Featureless image: neutral spread across lightness.
			for i := 0; i < settings.WheelColors; i++ {
				candidates = append(candidates, candidate{
					l:     0.2 + float32(i)*0.12,
					count: 1,
				})
			}
		} else {
			// Duplicate the few hues we have, spreading lightness so
			// the wheel still has 6 distinct entries.
			base := make([]candidate, len(candidates))
			copy(base, candidates)
			for len(candidates) < settings.WheelColors {
				src := base[len(candidates)%len(base)]
				src.l = minf(src.l+float32(len(candidates))*0.08, 0.85)
				src.count = 1
				candidates = append(candidates, src)
			}
		}
	}
	candidates = candidates[:settings.WheelColors]

	// Ascending hue keeps shader interpolation smooth.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].h < candidates[j].h
	})

	var wheel settings.ColorWheel
	for i, c := range candidates {
		r, g, b := hslToRGB(c.h/360, c.s, c.l)
		wheel[i*4] = r
		wheel[i*4+1] = g
		wheel[i*4+2] = b
		wheel[i*4+3] = 1
	}
	return wheel
}

// thumbnail scales img down so its longer side is at most maxThumbSize,
// preserving aspect ratio. Small images pass through untouched.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxThumbSize && h <= maxThumbSize {
		return img
	}

	scale := float64(maxThumbSize) / float64(w)
	if h > w {
		scale = float64(maxThumbSize) / float64(h)
	}
	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

func hslToRGB(h, s, l float32) (float32, float32, float32) {
	if s == 0 {
		return l, l, l
	}
	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3.0), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3.0)
}

func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
