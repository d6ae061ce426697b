package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Marceswan/driftpaper/internal/config"
	"github.com/Marceswan/driftpaper/internal/settings"
)

func TestResolveFPSDefaultsTo60(t *testing.T) {
	assert.Equal(t, 60, resolveFPS(0))
	assert.Equal(t, 60, resolveFPS(-5))
	assert.Equal(t, 30, resolveFPS(30))
	assert.Equal(t, 144, resolveFPS(144))
}

func TestCachedWheelRequiresCustomSchemeAndWheel(t *testing.T) {
	p := config.Defaults()
	_, ok := cachedWheel(p)
	assert.False(t, ok)

	wheel := config.WheelPrefs{}
	wheel[0] = 0.7
	p.CustomColorWheel = &wheel
	_, ok = cachedWheel(p)
	assert.False(t, ok, "a cached wheel under a preset scheme stays dormant")

	p.ColorScheme = uint32(settings.ColorCustom)
	got, ok := cachedWheel(p)
	assert.True(t, ok)
	assert.Equal(t, float32(0.7), got[0])
}

func TestEffectiveModeCustomWithoutWheelFallsBack(t *testing.T) {
	state := settings.State{ColorScheme: uint32(settings.ColorCustom)}

	assert.Equal(t, settings.ColorOriginal, effectiveMode(state, false))
	assert.Equal(t, settings.ColorCustom, effectiveMode(state, true))

	state.ColorScheme = 9
	assert.Equal(t, settings.ColorOriginal, effectiveMode(state, true))
}
