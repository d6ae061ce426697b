package settings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPollStateCoalescesUpdates(t *testing.T) {
	bus := NewBus(State{Density: 1})

	_, changed := bus.PollState()
	assert.False(t, changed, "seed state is not a pending change")

	for i := uint32(0); i < 10; i++ {
		bus.Update(func(s *State) { s.Brightness = i })
	}

	state, changed := bus.PollState()
	assert.True(t, changed)
	assert.Equal(t, uint32(9), state.Brightness, "poll must see the latest values")

	_, changed = bus.PollState()
	assert.False(t, changed, "change signal is consumed by the poll")
}

func TestStageWheelReplacesUnconsumed(t *testing.T) {
	bus := NewBus(State{})

	first := ColorWheel{}
	first[0] = 0.1
	second := ColorWheel{}
	second[0] = 0.9

	bus.StageWheel(first)
	bus.StageWheel(second)

	wheel, changed := bus.PollWheel()
	assert.True(t, changed)
	assert.Equal(t, float32(0.9), wheel[0])

	_, changed = bus.PollWheel()
	assert.False(t, changed)
}

func TestTopologySignal(t *testing.T) {
	bus := NewBus(State{})

	assert.False(t, bus.PollTopology())
	bus.SignalTopology()
	bus.SignalTopology()
	assert.True(t, bus.PollTopology())
	assert.False(t, bus.PollTopology())
}

func TestQuitIsSticky(t *testing.T) {
	bus := NewBus(State{})

	assert.False(t, bus.QuitRequested())
	bus.RequestQuit()
	assert.True(t, bus.QuitRequested())
	assert.True(t, bus.QuitRequested())
}

func TestConcurrentUpdates(t *testing.T) {
	bus := NewBus(State{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := uint32(0); j < 100; j++ {
				bus.Update(func(s *State) { s.Density = j % 3 })
			}
		}()
	}
	wg.Wait()

	state, changed := bus.PollState()
	assert.True(t, changed)
	assert.Less(t, state.Density, uint32(3))
}
