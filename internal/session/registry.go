package session

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Marceswan/driftpaper/internal/display"
	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// Registry owns the live sessions, one per display, in enumeration order.
// Topology reconciliation is positional: session i follows display i.
type Registry struct {
	sessions []*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a session. Startup builds the registry in display order.
func (r *Registry) Add(s *Session) {
	r.sessions = append(r.sessions, s)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Sessions returns the live sessions in display order.
func (r *Registry) Sessions() []*Session {
	return r.sessions
}

// ApplyAll applies one snapshot to every session. All sessions see the new
// settings before the next frame is requested on any of them.
func (r *Registry) ApplyAll(snap settings.Snapshot) {
	for _, s := range r.sessions {
		s.ApplySettings(snap)
	}
}

// InjectAll hands a custom color wheel to every session.
func (r *Registry) InjectAll(wheel settings.ColorWheel) {
	for _, s := range r.sessions {
		if err := s.InjectWheel(wheel); err != nil {
			logger.WithComponent("session").Error().
				Err(err).
				Int("display", s.desc.Index).
				Msg("Failed to inject color wheel")
		}
	}
}

// AnimateAll presents one frame on every session with a shared timestamp.
func (r *Registry) AnimateAll(timestampMs float64) {
	for _, s := range r.sessions {
		s.Animate(timestampMs)
	}
}

// SessionForWindow finds the session rendering into the given window, by
// pointer identity. Returns nil when no session matches.
func (r *Registry) SessionForWindow(win *glfw.Window) *Session {
	for _, s := range r.sessions {
		if s.win == win {
			return s
		}
	}
	return nil
}

// Reconcile maps the new display set onto the existing sessions by
// position: matching indexes are resized in place, extra sessions are
// destroyed when the display set shrank, and grow creates new sessions via
// the provided factory. A factory error is logged and the slot skipped.
func (r *Registry) Reconcile(displays []display.Descriptor,
	resize func(s *Session, d display.Descriptor),
	create func(d display.Descriptor) (*Session, error)) {

	log := logger.WithComponent("session")
	log.Info().
		Int("displays", len(displays)).
		Int("sessions", len(r.sessions)).
		Msg("Reconciling sessions with display topology")

	n := len(r.sessions)
	if len(displays) < n {
		n = len(displays)
	}

	for i := 0; i < n; i++ {
		s := r.sessions[i]
		s.desc = displays[i]
		if resize != nil {
			resize(s, displays[i])
		}
	}

	// Shrink: displays went away, tear their sessions down.
	if len(displays) < len(r.sessions) {
		for _, s := range r.sessions[len(displays):] {
			log.Info().Int("display", s.desc.Index).Msg("Display removed, destroying session")
			s.Release()
		}
		r.sessions = r.sessions[:len(displays)]
		return
	}

	// Grow: new displays appeared.
	if create == nil {
		return
	}
	for _, d := range displays[len(r.sessions):] {
		s, err := create(d)
		if err != nil {
			log.Error().Err(err).Int("display", d.Index).Msg("Failed to create session for new display")
			continue
		}
		r.sessions = append(r.sessions, s)
	}
}

// ReleaseAll tears down every session.
func (r *Registry) ReleaseAll() {
	for _, s := range r.sessions {
		s.Release()
	}
	r.sessions = nil
}
