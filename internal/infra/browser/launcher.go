// Package browser implements checker.Checker on top of a Chromium session
// driven through go-rod.
package browser

import (
	"strconv"

	"github.com/go-rod/rod/lib/launcher"
)

// LaunchConfig holds browser launch settings.
type LaunchConfig struct {
	Headless        bool
	WindowSize      string // "width,height"
	UserDataDir     string
	UserAgent       string
	RemoteDebugPort int

	// Stealth reduces the obvious automation fingerprints.
	Stealth bool
}

func newLauncher(cfg LaunchConfig) *launcher.Launcher {
	options := launcher.New().
		Headless(cfg.Headless).
		Set("disable-infobars").
		Set("disable-extensions")

	if cfg.UserDataDir != "" {
		options = options.UserDataDir(cfg.UserDataDir)
	}
	if cfg.WindowSize != "" {
		options = options.Set("window-size", cfg.WindowSize)
	}
	if cfg.UserAgent != "" {
		options = options.Set("user-agent", cfg.UserAgent)
	}
	if cfg.RemoteDebugPort > 0 {
		options = options.Set("remote-debugging-port", strconv.Itoa(cfg.RemoteDebugPort))
	}
	if cfg.Stealth {
		options = options.Set("disable-blink-features", "AutomationControlled")
	}
	return options
}
