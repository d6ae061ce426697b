package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Marceswan/driftpaper/internal/config"
	"github.com/Marceswan/driftpaper/internal/control"
	"github.com/Marceswan/driftpaper/internal/display"
	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/session"
	"github.com/Marceswan/driftpaper/internal/settings"
	"github.com/Marceswan/driftpaper/internal/wallpaper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start rendering (the default command)",
	Example: `  # Wallpaper on every display
  driftpaper

  # Demo window instead of wallpaper
  driftpaper --windowed

  # Cap the frame rate and expose the control API
  driftpaper --fps 30 --control-addr 127.0.0.1:7420`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logLevel := viper.GetString("log_level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, true)
	log := logger.WithComponent("run")

	prefs, err := config.NewManager(prefsFile)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	fps := resolveFPS(viper.GetInt("fps"))

	// Seed the bus from preferences. The effective scheme corrects a
	// stored Custom selection with no cached wheel; the stored value
	// itself is left alone.
	p := prefs.Get()
	state := p.State()
	state.ColorScheme = uint32(p.EffectiveScheme())
	bus := settings.NewBus(state)

	dispatcher := control.NewDispatcher(prefs, bus)
	defer dispatcher.Wait()

	if watcher, werr := control.NewWatcher(prefs, bus); werr != nil {
		log.Warn().Err(werr).Msg("External preference changes will not be picked up")
	} else {
		defer watcher.Close()
	}

	if addr := viper.GetString("control_addr"); addr != "" {
		srv := control.NewServer(dispatcher, prefs)
		go func() {
			if serr := srv.Start(addr); serr != nil {
				log.Error().Err(serr).Msg("Control API stopped")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Stop(ctx)
		}()
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	if viper.GetBool("windowed") {
		return runWindowed(instance, prefs, bus, dispatcher, fps)
	}
	return runWallpaper(instance, prefs, bus, dispatcher, fps)
}

// resolveFPS picks the frame-pacing target from the flag. The preferences
// FPS field is not consulted here; login launches carry their lower target
// as an explicit --fps in the LaunchAgent arguments.
func resolveFPS(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return 60
}

// cachedWheel returns the persisted custom wheel when the stored scheme is
// Custom and a wheel is cached; both modes inject it before the first frame.
func cachedWheel(p config.Preferences) (settings.ColorWheel, bool) {
	if p.ColorScheme != uint32(settings.ColorCustom) || p.CustomColorWheel == nil {
		return settings.ColorWheel{}, false
	}
	return p.CustomColorWheel.Wheel(), true
}

// effectiveMode resolves the in-memory color mode: Custom without any wheel
// to hand the renderer falls back to Original.
func effectiveMode(state settings.State, haveWheel bool) settings.ColorMode {
	if state.ColorScheme == uint32(settings.ColorCustom) && !haveWheel {
		return settings.ColorOriginal
	}
	if state.ColorScheme > uint32(settings.ColorCustom) {
		return settings.ColorOriginal
	}
	return settings.ColorMode(state.ColorScheme)
}

func runWallpaper(instance *wgpu.Instance, prefs *config.Manager,
	bus *settings.Bus, dispatcher *control.Dispatcher, fps int) error {

	log := logger.WithComponent("run")

	svc := display.NewService()
	displays, err := svc.EnumerateStrict()
	if err != nil {
		return fmt.Errorf("wallpaper mode needs at least one display: %w", err)
	}
	log.Info().Int("displays", len(displays)).Msg("Starting wallpaper mode")

	if werr := svc.Watch(func() { bus.SignalTopology() }); werr != nil {
		// Expected on Windows; topology is only read at startup there.
		log.Warn().Err(werr).Msg("Display topology changes will not be tracked at runtime")
	}

	p := prefs.Get()
	haveWheel := p.CustomColorWheel != nil
	snap := config.BuildSnapshot(p.MappingProfile, bus.State(), effectiveMode(bus.State(), haveWheel))

	registry := session.NewRegistry()
	defer registry.ReleaseAll()

	for _, d := range displays {
		sess, serr := createWallpaperSession(instance, d, snap, prefs)
		if serr != nil {
			return serr
		}
		registry.Add(sess)
	}
	installWindowCallbacks(registry, bus)

	return renderLoop(loopConfig{
		svc:        svc,
		registry:   registry,
		instance:   instance,
		prefs:      prefs,
		bus:        bus,
		dispatcher: dispatcher,
		fps:        fps,
		haveWheel:  haveWheel,
		wallpaper:  true,
	})
}

// createWallpaperSession builds the full stack for one display: hidden
// undecorated window, wallpaper embedding, GPU session, renderer, cached
// wheel injection, then first show.
func createWallpaperSession(instance *wgpu.Instance, d display.Descriptor,
	snap settings.Snapshot, prefs *config.Manager) (*session.Session, error) {

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.FocusOnShow, glfw.False)

	win, err := glfw.CreateWindow(d.LogicalWidth, d.LogicalHeight, "driftpaper", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window for display %d: %w", d.Index, err)
	}
	win.SetPos(d.X, d.Y)

	host := wallpaper.NewHost(win, d)
	host.Embed() // soft failure, logged inside

	sess, err := session.Create(instance, win, d)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create render session for display %d: %w", d.Index, err)
	}
	if err := sess.AttachRenderer(snap); err != nil {
		sess.Release()
		win.Destroy()
		return nil, err
	}

	// A cached custom wheel goes in before the first frame.
	if wheel, ok := cachedWheel(prefs.Get()); ok {
		if werr := sess.InjectWheel(wheel); werr != nil {
			logger.WithComponent("run").Warn().Err(werr).Msg("Failed to inject cached color wheel")
		}
	}

	if err := host.Show(); err != nil {
		return nil, err
	}
	return sess, nil
}

func installWindowCallbacks(registry *session.Registry, bus *settings.Bus) {
	for _, s := range registry.Sessions() {
		win := s.Window()
		win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
			if key == glfw.KeyQ && action == glfw.Release {
				bus.RequestQuit()
			}
		})
		win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
			if sess := registry.SessionForWindow(w); sess != nil {
				lw, lh := w.GetSize()
				sess.Resize(uint32(lw), uint32(lh), uint32(width), uint32(height))
			}
		})
	}
}

func runWindowed(instance *wgpu.Instance, prefs *config.Manager,
	bus *settings.Bus, dispatcher *control.Dispatcher, fps int) error {

	log := logger.WithComponent("run")
	log.Info().Msg("Starting windowed mode")

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)

	win, err := glfw.CreateWindow(1280, 800, "DriftPaper", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Destroy()

	fbw, fbh := win.GetFramebufferSize()
	desc := display.Descriptor{
		Name:           "windowed",
		LogicalWidth:   1280,
		LogicalHeight:  800,
		PhysicalWidth:  fbw,
		PhysicalHeight: fbh,
	}

	p := prefs.Get()
	haveWheel := p.CustomColorWheel != nil
	snap := config.BuildSnapshot(p.MappingProfile, bus.State(), effectiveMode(bus.State(), haveWheel))

	sess, err := session.Create(instance, win, desc)
	if err != nil {
		return fmt.Errorf("failed to create render session: %w", err)
	}
	if err := sess.AttachRenderer(snap); err != nil {
		sess.Release()
		return err
	}

	if wheel, ok := cachedWheel(p); ok {
		if werr := sess.InjectWheel(wheel); werr != nil {
			log.Warn().Err(werr).Msg("Failed to inject cached color wheel")
		}
	}

	registry := session.NewRegistry()
	registry.Add(sess)
	defer registry.ReleaseAll()

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if (key == glfw.KeyEscape || key == glfw.KeyQ) && action == glfw.Release {
			w.SetShouldClose(true)
		}
	})
	// Dropping an image extracts a palette from it.
	win.SetDropCallback(func(w *glfw.Window, names []string) {
		if len(names) > 0 {
			dispatcher.Dispatch(control.Event{Kind: control.EventCustomImage, Path: names[0]})
		}
	})
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		lw, lh := w.GetSize()
		sess.Resize(uint32(lw), uint32(lh), uint32(width), uint32(height))
	})

	return renderLoop(loopConfig{
		registry:   registry,
		instance:   instance,
		prefs:      prefs,
		bus:        bus,
		dispatcher: dispatcher,
		fps:        fps,
		haveWheel:  haveWheel,
	})
}

type loopConfig struct {
	svc        *display.Service
	registry   *session.Registry
	instance   *wgpu.Instance
	prefs      *config.Manager
	bus        *settings.Bus
	dispatcher *control.Dispatcher
	fps        int
	haveWheel  bool
	wallpaper  bool
}

// renderLoop is the single-threaded cooperative loop: poll OS events, drain
// the change signals, then pace frames. Every session gets the same
// timestamp per frame so multi-display output stays in step.
func renderLoop(lc loopConfig) error {
	log := logger.WithComponent("run")
	start := time.Now()
	frameTime := time.Second / time.Duration(lc.fps)
	last := time.Now()

	for {
		glfw.PollEvents()

		if lc.bus.QuitRequested() {
			log.Info().Msg("Quit requested")
			return nil
		}
		for _, s := range lc.registry.Sessions() {
			if s.Window().ShouldClose() {
				log.Info().Msg("Window closed")
				return nil
			}
		}

		// A settings change rebuilds one snapshot and applies it to every
		// session before the next frame.
		if state, changed := lc.bus.PollState(); changed {
			profile := lc.prefs.Get().MappingProfile
			snap := config.BuildSnapshot(profile, state, effectiveMode(state, lc.haveWheel))
			lc.registry.ApplyAll(snap)
		}

		if wheel, ok := lc.bus.PollWheel(); ok {
			lc.haveWheel = true
			lc.registry.InjectAll(wheel)
		}

		if lc.bus.PollTopology() && lc.wallpaper {
			lc.reconcileTopology()
		}

		now := time.Now()
		if now.Sub(last) >= frameTime {
			elapsed := float64(now.Sub(start)) / float64(time.Millisecond)
			lc.registry.AnimateAll(elapsed)
			last = now
		}

		if wait := frameTime - time.Since(last); wait > 0 {
			glfw.WaitEventsTimeout(wait.Seconds())
		}
	}
}

func (lc *loopConfig) reconcileTopology() {
	log := logger.WithComponent("run")

	displays, err := lc.svc.EnumerateStrict()
	if err != nil {
		log.Warn().Err(err).Msg("Topology change reported no displays, keeping current sessions")
		return
	}

	state := lc.bus.State()
	profile := lc.prefs.Get().MappingProfile
	snap := config.BuildSnapshot(profile, state, effectiveMode(state, lc.haveWheel))

	lc.registry.Reconcile(displays,
		func(s *session.Session, d display.Descriptor) {
			wallpaper.MoveToDisplay(s.Window(), d)
			pw, ph := s.Window().GetFramebufferSize()
			s.Resize(uint32(d.LogicalWidth), uint32(d.LogicalHeight), uint32(pw), uint32(ph))
		},
		func(d display.Descriptor) (*session.Session, error) {
			return createWallpaperSession(lc.instance, d, snap, lc.prefs)
		})
	installWindowCallbacks(lc.registry, lc.bus)
}
