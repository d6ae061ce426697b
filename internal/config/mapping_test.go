package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Marceswan/driftpaper/internal/settings"
)

func TestGridSpacingProfiles(t *testing.T) {
	tests := []struct {
		profile string
		density uint32
		want    uint32
	}{
		{ProfileStandard, 0, 25},
		{ProfileStandard, 1, 15},
		{ProfileStandard, 2, 10},
		{ProfileShowcase, 0, 36},
		{ProfileShowcase, 1, 22},
		{ProfileShowcase, 2, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GridSpacing(tt.profile, tt.density),
			"profile %s density %d", tt.profile, tt.density)
	}
}

func TestUnknownProfileIsStandard(t *testing.T) {
	assert.Equal(t, GridSpacing(ProfileStandard, 1), GridSpacing("", 1))
	assert.Equal(t, GridSpacing(ProfileStandard, 1), GridSpacing("bogus", 1))
}

func TestOutOfRangeIndexesUseDefaults(t *testing.T) {
	state := settings.State{
		Density:       99,
		NoiseStrength: 99,
		LineLength:    99,
		LineWidth:     99,
		ViewScale:     99,
		Brightness:    99,
	}
	snap := BuildSnapshot(ProfileStandard, state, settings.ColorOriginal)

	assert.Equal(t, uint32(15), snap.GridSpacing)
	assert.Equal(t, float32(0.45), snap.NoiseMultiplier)
	assert.Equal(t, float32(142), snap.LineLength)
	assert.Equal(t, float32(9), snap.LineWidth)
	assert.Equal(t, float32(1.6), snap.ViewScale)
	assert.Equal(t, float32(1.0), snap.BrightnessMultiplier)
}

func TestDefaultPreferencesMapToNormalValues(t *testing.T) {
	snap := BuildSnapshot(ProfileStandard, Defaults().State(), settings.ColorOriginal)

	assert.Equal(t, uint32(15), snap.GridSpacing)
	assert.Equal(t, float32(0.45), snap.NoiseMultiplier)
	assert.Equal(t, float32(142), snap.LineLength)
	assert.Equal(t, float32(9), snap.LineWidth)
	assert.Equal(t, float32(1.6), snap.ViewScale)
	assert.Equal(t, float32(1.0), snap.BrightnessMultiplier)
}

func TestBuildSnapshot(t *testing.T) {
	state := settings.State{
		Density:       2,
		NoiseStrength: 3,
		LineLength:    0,
		LineWidth:     2,
		ViewScale:     2,
		Brightness:    3,
	}
	snap := BuildSnapshot(ProfileShowcase, state, settings.ColorPlasma)

	assert.Equal(t, settings.ColorPlasma, snap.ColorMode)
	assert.Equal(t, uint32(14), snap.GridSpacing)
	assert.Equal(t, float32(1.0), snap.NoiseMultiplier)
	assert.Equal(t, float32(80), snap.LineLength)
	assert.Equal(t, float32(16), snap.LineWidth)
	assert.Equal(t, float32(2.2), snap.ViewScale)
	assert.Equal(t, float32(3.5), snap.BrightnessMultiplier)
}
