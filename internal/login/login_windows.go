//go:build windows

// Package login manages the start-at-login registration for the current
// user.
package login

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"

	"github.com/Marceswan/driftpaper/internal/logger"
)

const (
	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	valueName  = "DriftPaper"
)

// SetEnabled adds or removes the HKCU Run value that starts the wallpaper
// at login.
func SetEnabled(enabled bool) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath,
		registry.SET_VALUE|registry.QUERY_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	if !enabled {
		if err := key.DeleteValue(valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("failed to delete Run value: %w", err)
		}
		logger.WithComponent("login").Info().Msg("Run on login disabled")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}
	if err := key.SetStringValue(valueName, exe); err != nil {
		return fmt.Errorf("failed to set Run value: %w", err)
	}

	logger.WithComponent("login").Info().Str("path", exe).Msg("Run on login enabled")
	return nil
}

// Enabled reports whether the Run value is installed.
func Enabled() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()
	_, _, err = key.GetStringValue(valueName)
	return err == nil
}
