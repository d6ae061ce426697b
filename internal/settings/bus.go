package settings

import "sync"

// Bus carries change signals from control-surface goroutines to the render
// loop. Producers update state and bump a generation counter; the single
// consumer polls once per frame and applies only when the generation moved.
// Any number of updates between polls coalesce into one application carrying
// the latest values.
type Bus struct {
	mu sync.Mutex

	state    State
	stateGen uint64
	stateAck uint64

	wheel    ColorWheel
	wheelGen uint64
	wheelAck uint64

	topologyGen uint64
	topologyAck uint64

	quit bool
}

// NewBus creates a bus seeded with the given state. The seed does not count
// as a pending change.
func NewBus(initial State) *Bus {
	return &Bus{state: initial}
}

// Update mutates the shared state under the lock and marks it changed.
func (b *Bus) Update(fn func(*State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
	b.stateGen++
}

// State returns the current state without consuming the change signal.
func (b *Bus) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// PollState returns the current state and whether it changed since the last
// poll. The change signal is consumed.
func (b *Bus) PollState() (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := b.stateGen != b.stateAck
	b.stateAck = b.stateGen
	return b.state, changed
}

// StageWheel publishes an extracted color wheel for the render loop to pick
// up. A newer wheel staged before the old one is consumed replaces it.
func (b *Bus) StageWheel(w ColorWheel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wheel = w
	b.wheelGen++
}

// PollWheel returns the staged wheel and whether a new one arrived since the
// last poll.
func (b *Bus) PollWheel() (ColorWheel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := b.wheelGen != b.wheelAck
	b.wheelAck = b.wheelGen
	return b.wheel, changed
}

// SignalTopology marks that the display arrangement changed.
func (b *Bus) SignalTopology() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topologyGen++
}

// PollTopology reports and consumes a pending topology change.
func (b *Bus) PollTopology() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := b.topologyGen != b.topologyAck
	b.topologyAck = b.topologyGen
	return changed
}

// RequestQuit asks the render loop to shut down. It is sticky.
func (b *Bus) RequestQuit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quit = true
}

// QuitRequested reports whether shutdown was requested.
func (b *Bus) QuitRequested() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quit
}
