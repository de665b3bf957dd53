package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file, expands environment variables
// in its content and applies defaults. Validation is a separate step so the
// caller can apply flag overrides (like --offline) first.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	m := &cfg.Monitor
	if m.CheckInterval == 0 {
		m.CheckInterval = 300
	}
	if m.MinCheckInterval == 0 {
		m.MinCheckInterval = 180
	}
	if m.MaxCheckInterval == 0 {
		m.MaxCheckInterval = 420
	}
	if m.JitterRatio == 0 {
		m.JitterRatio = 0.20
	}
	if m.ErrorBackoffBase == 0 {
		m.ErrorBackoffBase = 30
	}
	if m.ErrorBackoffMax == 0 {
		m.ErrorBackoffMax = 600
	}
	if m.CooldownSeconds == 0 {
		m.CooldownSeconds = 1800
	}
	if m.FailureThreshold == 0 {
		m.FailureThreshold = 5
	}
	if m.StartAfterLogin == nil {
		enabled := true
		m.StartAfterLogin = &enabled
	}

	t := &cfg.Target
	if t.LoginWaitSeconds == 0 {
		t.LoginWaitSeconds = 90
	}
	if len(t.NegativePatterns) == 0 {
		t.NegativePatterns = []string{
			"no appointment", "not available", "no slots", "no appointments available",
		}
	}
	if len(t.CaptchaMarkers) == 0 {
		t.CaptchaMarkers = []string{"verify", "captcha", "are you human", "robot check"}
	}
	if len(t.BlockMarkers) == 0 {
		t.BlockMarkers = []string{"too many requests", "429", "temporarily blocked", "suspicious activity"}
	}

	b := &cfg.Browser
	if b.WindowSize == "" {
		b.WindowSize = "1280,900"
	}
	if b.UserDataDir == "" {
		b.UserDataDir = "chrome_profile"
	}
	if b.Stealth == nil {
		enabled := true
		b.Stealth = &enabled
	}

	if cfg.Subscribers.Backend == "" {
		cfg.Subscribers.Backend = "file"
	}
	if cfg.Subscribers.File == "" {
		cfg.Subscribers.File = "subscribers.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
