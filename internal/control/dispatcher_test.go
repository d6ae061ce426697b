package control

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marceswan/driftpaper/internal/config"
	"github.com/Marceswan/driftpaper/internal/settings"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *config.Manager, *settings.Bus) {
	t.Helper()
	prefs, err := config.NewManager(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)

	bus := settings.NewBus(prefs.Get().State())
	d := NewDispatcher(prefs, bus)
	d.setLogin = func(bool) error { return nil }
	return d, prefs, bus
}

func TestSelectOptionUpdatesBusAndPersists(t *testing.T) {
	d, prefs, bus := newTestDispatcher(t)

	d.Dispatch(Event{Kind: EventSelectOption, Option: OptionDensity, Index: 2})

	state, changed := bus.PollState()
	assert.True(t, changed)
	assert.Equal(t, uint32(2), state.Density)
	assert.Equal(t, uint32(2), prefs.Get().Density, "change is persisted synchronously")
}

func TestCustomImageSuccessStagesWheel(t *testing.T) {
	d, prefs, bus := newTestDispatcher(t)

	var wheel settings.ColorWheel
	wheel[0] = 0.7
	d.decodeFile = func(path string) (settings.ColorWheel, error) {
		assert.Equal(t, "/tmp/pic.png", path)
		return wheel, nil
	}

	d.Dispatch(Event{Kind: EventCustomImage, Path: "/tmp/pic.png"})
	d.Wait()

	staged, changed := bus.PollWheel()
	assert.True(t, changed)
	assert.Equal(t, wheel, staged)

	state, changed := bus.PollState()
	assert.True(t, changed)
	assert.Equal(t, uint32(settings.ColorCustom), state.ColorScheme)

	got := prefs.Get()
	require.NotNil(t, got.CustomColorWheel)
	assert.Equal(t, float32(0.7), got.CustomColorWheel[0])
	assert.Equal(t, "/tmp/pic.png", got.CustomImagePath)
}

func TestCustomImageFailureLeavesEverythingUntouched(t *testing.T) {
	d, prefs, bus := newTestDispatcher(t)

	d.decodeFile = func(string) (settings.ColorWheel, error) {
		return settings.ColorWheel{}, errors.New("not an image")
	}

	before := prefs.Get()
	d.Dispatch(Event{Kind: EventCustomImage, Path: "/tmp/garbage"})
	d.Wait()

	_, changed := bus.PollState()
	assert.False(t, changed, "decode failure must never set the change flag")
	_, changed = bus.PollWheel()
	assert.False(t, changed)
	assert.Equal(t, before, prefs.Get())
}

func TestQuitEvent(t *testing.T) {
	d, _, bus := newTestDispatcher(t)

	assert.False(t, bus.QuitRequested())
	d.Dispatch(Event{Kind: EventQuit})
	assert.True(t, bus.QuitRequested())
}

func TestToggleRunOnLogin(t *testing.T) {
	d, prefs, _ := newTestDispatcher(t)

	var gotEnabled []bool
	d.setLogin = func(enabled bool) error {
		gotEnabled = append(gotEnabled, enabled)
		return nil
	}

	d.Dispatch(Event{Kind: EventToggleRunOnLogin})
	assert.True(t, prefs.Get().RunOnLogin)

	d.Dispatch(Event{Kind: EventToggleRunOnLogin})
	assert.False(t, prefs.Get().RunOnLogin)

	assert.Equal(t, []bool{true, false}, gotEnabled)
}

func TestListenersSeeAppliedEvents(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	var events []Event
	d.AddListener(func(ev Event) { events = append(events, ev) })

	d.Dispatch(Event{Kind: EventSelectOption, Option: OptionBrightness, Index: 3})
	d.Dispatch(Event{Kind: EventQuit})

	require.Len(t, events, 2)
	assert.Equal(t, EventSelectOption, events[0].Kind)
	assert.Equal(t, EventQuit, events[1].Kind)
}

func TestOptionNameRoundTrip(t *testing.T) {
	for _, o := range []Option{
		OptionColorScheme, OptionDensity, OptionNoiseStrength,
		OptionLineLength, OptionLineWidth, OptionViewScale, OptionBrightness,
	} {
		got, ok := OptionFromName(o.String())
		require.True(t, ok, o.String())
		assert.Equal(t, o, got)
	}
	_, ok := OptionFromName("bogus")
	assert.False(t, ok)
}
