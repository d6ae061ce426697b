package control

import (
	"fmt"
	"io"
	"sync"

	"github.com/Marceswan/driftpaper/internal/config"
	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/login"
	"github.com/Marceswan/driftpaper/internal/palette"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// Dispatcher applies control-surface events: shared state first, change
// flag next, synchronous persistence last, so a crash right after a choice
// never loses it. Image decoding runs on background goroutines; a decode
// failure is logged and leaves the prior palette and settings untouched.
type Dispatcher struct {
	prefs *config.Manager
	bus   *settings.Bus

	decodeFile   func(path string) (settings.ColorWheel, error)
	decodeStream func(r io.Reader) (settings.ColorWheel, error)
	setLogin     func(enabled bool) error

	mu        sync.Mutex
	listeners []func(Event)
	decodes   sync.WaitGroup
}

// NewDispatcher wires a dispatcher to the preferences manager and the bus.
func NewDispatcher(prefs *config.Manager, bus *settings.Bus) *Dispatcher {
	return &Dispatcher{
		prefs:        prefs,
		bus:          bus,
		decodeFile:   palette.FromFile,
		decodeStream: palette.FromReader,
		setLogin:     login.SetEnabled,
	}
}

// AddListener registers a callback invoked after an event is applied.
// Listeners run on the dispatching goroutine and must not block.
func (d *Dispatcher) AddListener(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

func (d *Dispatcher) notify(ev Event) {
	d.mu.Lock()
	listeners := make([]func(Event), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Dispatch applies one control-surface event. Safe to call from any
// goroutine.
func (d *Dispatcher) Dispatch(ev Event) {
	switch ev.Kind {
	case EventSelectOption:
		d.selectOption(ev)
	case EventCustomImage:
		d.decodes.Add(1)
		go func() {
			defer d.decodes.Done()
			d.customImage(ev)
		}()
	case EventToggleRunOnLogin:
		d.toggleRunOnLogin(ev)
	case EventQuit:
		d.bus.RequestQuit()
		d.notify(ev)
	}
}

// Wait blocks until in-flight image decodes finish. Shutdown and tests use
// it; the render loop never does.
func (d *Dispatcher) Wait() {
	d.decodes.Wait()
}

func (d *Dispatcher) selectOption(ev Event) {
	d.bus.Update(func(s *settings.State) {
		setOption(s, ev.Option, ev.Index)
	})

	if err := d.prefs.Update(func(p *config.Preferences) {
		setPrefOption(p, ev.Option, ev.Index)
	}); err != nil {
		// Persistence is soft; the live change already took effect.
		logger.WithComponent("control").Warn().
			Err(err).
			Str("option", ev.Option.String()).
			Msg("Failed to persist setting")
	}

	logger.WithComponent("control").Info().
		Str("option", ev.Option.String()).
		Uint32("index", ev.Index).
		Msg("Setting changed")
	d.notify(ev)
}

func (d *Dispatcher) customImage(ev Event) {
	wheel, err := d.decodeFile(ev.Path)
	if err != nil {
		logger.WithComponent("control").Error().
			Err(err).
			Str("path", ev.Path).
			Msg("Failed to extract palette, keeping current settings")
		return
	}
	d.applyWheel(wheel, ev.Path)
	d.notify(ev)
}

// ApplyImageStream extracts a palette from an image stream, for callers
// that hold the bytes rather than a path. Runs synchronously on the calling
// goroutine.
func (d *Dispatcher) ApplyImageStream(r io.Reader) error {
	wheel, err := d.decodeStream(r)
	if err != nil {
		return fmt.Errorf("failed to extract palette: %w", err)
	}
	d.applyWheel(wheel, "")
	d.notify(Event{Kind: EventCustomImage})
	return nil
}

// applyWheel stages an extracted wheel for one-shot injection, switches the
// scheme to Custom, and caches both into preferences.
func (d *Dispatcher) applyWheel(wheel settings.ColorWheel, path string) {
	d.bus.StageWheel(wheel)
	d.bus.Update(func(s *settings.State) {
		s.ColorScheme = uint32(settings.ColorCustom)
	})

	if err := d.prefs.Update(func(p *config.Preferences) {
		p.ColorScheme = uint32(settings.ColorCustom)
		cached := config.WheelPrefs(wheel)
		p.CustomColorWheel = &cached
		if path != "" {
			p.CustomImagePath = path
		}
	}); err != nil {
		logger.WithComponent("control").Warn().Err(err).Msg("Failed to cache custom palette")
	}

	logger.WithComponent("control").Info().
		Str("path", path).
		Msg("Custom palette applied")
}

func (d *Dispatcher) toggleRunOnLogin(ev Event) {
	enabled := false
	if err := d.prefs.Update(func(p *config.Preferences) {
		p.RunOnLogin = !p.RunOnLogin
		enabled = p.RunOnLogin
	}); err != nil {
		logger.WithComponent("control").Warn().Err(err).Msg("Failed to persist run-on-login")
	}

	if err := d.setLogin(enabled); err != nil {
		logger.WithComponent("control").Warn().
			Err(err).
			Bool("enabled", enabled).
			Msg("Failed to update login item")
	}
	d.notify(ev)
}

func setOption(s *settings.State, opt Option, idx uint32) {
	switch opt {
	case OptionColorScheme:
		s.ColorScheme = idx
	case OptionDensity:
		s.Density = idx
	case OptionNoiseStrength:
		s.NoiseStrength = idx
	case OptionLineLength:
		s.LineLength = idx
	case OptionLineWidth:
		s.LineWidth = idx
	case OptionViewScale:
		s.ViewScale = idx
	case OptionBrightness:
		s.Brightness = idx
	}
}

func setPrefOption(p *config.Preferences, opt Option, idx uint32) {
	switch opt {
	case OptionColorScheme:
		p.ColorScheme = idx
	case OptionDensity:
		p.Density = idx
	case OptionNoiseStrength:
		p.NoiseStrength = idx
	case OptionLineLength:
		p.LineLength = idx
	case OptionLineWidth:
		p.LineWidth = idx
	case OptionViewScale:
		p.ViewScale = idx
	case OptionBrightness:
		p.Brightness = idx
	}
}
