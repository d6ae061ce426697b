//go:build !darwin && !windows

package wallpaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marceswan/driftpaper/internal/display"
)

func TestEmbedFailureIsSoft(t *testing.T) {
	h := NewHost(nil, display.Descriptor{Index: 0})
	assert.Equal(t, PhaseCreated, h.Phase())

	err := h.Embed()
	assert.ErrorIs(t, err, ErrEmbedUnsupported)
	assert.Equal(t, PhaseEmbedded, h.Phase(), "soft failure still advances the phase")
	assert.False(t, h.Embedded())

	require.NoError(t, h.Show())
	assert.Equal(t, PhaseVisible, h.Phase())
}

func TestEmbedOnlyOnce(t *testing.T) {
	h := NewHost(nil, display.Descriptor{})
	_ = h.Embed()

	err := h.Embed()
	require.Error(t, err)
	assert.Equal(t, PhaseEmbedded, h.Phase())
}

func TestShowRequiresEmbedFirst(t *testing.T) {
	h := NewHost(nil, display.Descriptor{})
	require.Error(t, h.Show())
	assert.Equal(t, PhaseCreated, h.Phase())
}

func TestNoTransitionBackwards(t *testing.T) {
	h := NewHost(nil, display.Descriptor{})
	_ = h.Embed()
	require.NoError(t, h.Show())

	require.Error(t, h.Show())
	assert.Equal(t, PhaseVisible, h.Phase())
}
