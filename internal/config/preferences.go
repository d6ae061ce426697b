// Package config persists user preferences and maps the discrete option
// indexes they store onto renderer parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/Marceswan/driftpaper/internal/logger"
	"github.com/Marceswan/driftpaper/internal/settings"
)

// Preferences is the on-disk preference document. The schema is additive:
// fields missing from an older file keep their defaults, unknown fields are
// ignored, and a full document is written back on every save.
type Preferences struct {
	ColorScheme      uint32      `json:"color_scheme"`
	Density          uint32      `json:"density"`
	NoiseStrength    uint32      `json:"noise_strength"`
	LineLength       uint32      `json:"line_length"`
	LineWidth        uint32      `json:"line_width"`
	ViewScale        uint32      `json:"view_scale"`
	Brightness       uint32      `json:"brightness"`
	FPS              uint32      `json:"fps"`
	RunOnLogin       bool        `json:"run_on_login"`
	MappingProfile   string      `json:"mapping_profile,omitempty"`
	CustomImagePath  string      `json:"custom_image_path,omitempty"`
	CustomColorWheel *WheelPrefs `json:"custom_color_wheel,omitempty"`
}

// WheelPrefs is the cached custom color wheel, 6 RGBA quads.
type WheelPrefs [settings.WheelColors * 4]float32

// Wheel converts the cached value into a settings.ColorWheel.
func (w *WheelPrefs) Wheel() settings.ColorWheel {
	return settings.ColorWheel(*w)
}

// Defaults returns the preference values used when no file exists.
func Defaults() Preferences {
	return Preferences{
		ColorScheme:   0,
		Density:       1,
		NoiseStrength: 1,
		LineLength:    1,
		LineWidth:     1,
		ViewScale:     1,
		Brightness:    1,
		FPS:           30,
	}
}

// EffectiveScheme returns the color mode the renderer should start with.
// A stored Custom scheme without a cached wheel falls back to Original in
// memory; the stored preference is left alone so a later palette extraction
// restores the user's choice.
func (p Preferences) EffectiveScheme() settings.ColorMode {
	if p.ColorScheme == uint32(settings.ColorCustom) && p.CustomColorWheel == nil {
		return settings.ColorOriginal
	}
	if p.ColorScheme > uint32(settings.ColorCustom) {
		return settings.ColorOriginal
	}
	return settings.ColorMode(p.ColorScheme)
}

// State returns the raw option indexes for seeding the settings bus.
func (p Preferences) State() settings.State {
	return settings.State{
		ColorScheme:   p.ColorScheme,
		Density:       p.Density,
		NoiseStrength: p.NoiseStrength,
		LineLength:    p.LineLength,
		LineWidth:     p.LineWidth,
		ViewScale:     p.ViewScale,
		Brightness:    p.Brightness,
	}
}

// Manager handles preference persistence
type Manager struct {
	path  string
	prefs Preferences
	mu    sync.RWMutex
}

// DefaultPath returns the conventional per-OS preferences path.
func DefaultPath() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(appData, "DriftPaper", "preferences.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "driftpaper", "preferences.json"), nil
}

// NewManager creates a preferences manager backed by the given file, or the
// per-OS default path when prefsFile is empty. A missing file is not an
// error; defaults are used and written on the first Save.
func NewManager(prefsFile string) (*Manager, error) {
	path := prefsFile
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	m := &Manager{
		path:  path,
		prefs: Defaults(),
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.path).
				Msg("Preferences file not found, using defaults")
		} else {
			// A corrupt file must not take the wallpaper down.
			logger.WithComponent("config").Warn().
				Err(err).
				Str("path", m.path).
				Msg("Failed to read preferences, using defaults")
			m.prefs = Defaults()
		}
	} else {
		logger.WithComponent("config").Info().
			Str("path", m.path).
			Msg("Preferences loaded")
	}

	return m, nil
}

// Path returns the file the manager reads and writes.
func (m *Manager) Path() string {
	return m.path
}

// Get returns a copy of the current preferences.
func (m *Manager) Get() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs
}

// Update applies fn to the preferences under the lock and persists the
// result before returning. The write is atomic: full document to a temp
// file, then rename.
func (m *Manager) Update(fn func(*Preferences)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.prefs)
	return m.save()
}

// Reload re-reads the file, for picking up edits made by another process.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}

	prefs := Defaults()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}

	m.prefs = prefs
	return nil
}

func (m *Manager) save() error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(m.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "preferences-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}

	return nil
}
