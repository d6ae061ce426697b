//go:build !darwin && !windows

// Package login manages the start-at-login registration for the current
// user.
package login

import "errors"

// ErrUnsupported is returned where no login-item mechanism exists.
var ErrUnsupported = errors.New("run on login not supported on this platform")

// SetEnabled is unavailable on this platform.
func SetEnabled(enabled bool) error {
	return ErrUnsupported
}

// Enabled always reports false on this platform.
func Enabled() bool {
	return false
}
