package control

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Marceswan/driftpaper/internal/config"
	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// Watcher picks up preference-file edits made by other processes and turns
// them into a settings change on the bus.
type Watcher struct {
	prefs   *config.Manager
	bus     *settings.Bus
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher watches the preferences file of the given manager. The parent
// directory is watched because saves replace the file by rename.
func NewWatcher(prefs *config.Manager, bus *settings.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(prefs.Path())); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch preferences directory: %w", err)
	}

	w := &Watcher{
		prefs:   prefs,
		bus:     bus,
		watcher: fsw,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	log := logger.WithComponent("control")
	target := filepath.Clean(w.prefs.Path())

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.apply()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Preferences watcher error")
		}
	}
}

// apply re-reads the file and publishes the result to the bus. This
// process's own atomic saves land here too (the rename fires a directory
// event); those reloads carry a state the bus already holds and are
// dropped, so the change signal stays reserved for edits made by other
// processes.
func (w *Watcher) apply() {
	log := logger.WithComponent("control")

	if err := w.prefs.Reload(); err != nil {
		log.Warn().Err(err).Msg("Failed to reload preferences after external change")
		return
	}
	state := w.prefs.Get().State()
	if state == w.bus.State() {
		return
	}
	w.bus.Update(func(s *settings.State) {
		*s = state
	})
	log.Info().Msg("Preferences changed externally, settings reloaded")
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
