package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/slotwatchhq/slotwatch/internal/limits"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: abc
target:
  login_url: https://example.com/login
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	m := cfg.Monitor
	if m.CheckInterval != 300 || m.MinCheckInterval != 180 || m.MaxCheckInterval != 420 {
		t.Errorf("interval defaults = %d/%d/%d, want 300/180/420",
			m.CheckInterval, m.MinCheckInterval, m.MaxCheckInterval)
	}
	if m.JitterRatio != 0.20 {
		t.Errorf("jitter = %v, want 0.20", m.JitterRatio)
	}
	if m.ErrorBackoffBase != 30 || m.ErrorBackoffMax != 600 {
		t.Errorf("backoff defaults = %d/%d, want 30/600", m.ErrorBackoffBase, m.ErrorBackoffMax)
	}
	if m.CooldownSeconds != 1800 || m.FailureThreshold != 5 {
		t.Errorf("cooldown/threshold defaults = %d/%d, want 1800/5", m.CooldownSeconds, m.FailureThreshold)
	}
	if m.StartAfterLogin == nil || !*m.StartAfterLogin {
		t.Error("start_after_login default is not enabled")
	}
	if cfg.Target.LoginWaitSeconds != 90 {
		t.Errorf("login wait = %d, want 90", cfg.Target.LoginWaitSeconds)
	}
	if len(cfg.Target.CaptchaMarkers) == 0 || len(cfg.Target.BlockMarkers) == 0 || len(cfg.Target.NegativePatterns) == 0 {
		t.Error("marker defaults missing")
	}
	if cfg.Browser.Stealth == nil || !*cfg.Browser.Stealth {
		t.Error("stealth default is not enabled")
	}
	if cfg.Subscribers.Backend != "file" || cfg.Subscribers.File != "subscribers.json" {
		t.Errorf("subscriber defaults = %q/%q", cfg.Subscribers.Backend, cfg.Subscribers.File)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SLOTWATCH_TEST_TOKEN", "secret-token")
	path := writeConfig(t, `
telegram:
  token: ${SLOTWATCH_TEST_TOKEN}
target:
  login_url: https://example.com/login
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "secret-token" {
		t.Errorf("token = %q, want expanded env value", cfg.Telegram.Token)
	}
}

func TestLoad_ExplicitFalseSurvivesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: abc
target:
  login_url: https://example.com/login
browser:
  stealth: false
monitor:
  start_after_login: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Browser.Stealth == nil || *cfg.Browser.Stealth {
		t.Error("explicit stealth=false overridden by default")
	}
	if cfg.Monitor.StartAfterLogin == nil || *cfg.Monitor.StartAfterLogin {
		t.Error("explicit start_after_login=false overridden by default")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "inverted interval window",
			yaml: `
telegram:
  token: abc
target:
  login_url: https://example.com/login
monitor:
  min_check_interval: 400
  max_check_interval: 200
`,
		},
		{
			name: "jitter out of range",
			yaml: `
telegram:
  token: abc
target:
  login_url: https://example.com/login
monitor:
  jitter_ratio: 1.5
`,
		},
		{
			name: "unknown backend",
			yaml: `
telegram:
  token: abc
target:
  login_url: https://example.com/login
subscribers:
  backend: dynamodb
`,
		},
		{
			name: "redis backend without url",
			yaml: `
telegram:
  token: abc
target:
  login_url: https://example.com/login
subscribers:
  backend: redis
`,
		},
		{
			name: "postgres backend without url",
			yaml: `
telegram:
  token: abc
target:
  login_url: https://example.com/login
subscribers:
  backend: postgres
`,
		},
		{
			name: "missing token outside offline mode",
			yaml: `
target:
  login_url: https://example.com/login
`,
		},
		{
			name: "missing login url outside offline mode",
			yaml: `
telegram:
  token: abc
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := cfg.Validate(); !errors.Is(err, limits.ErrInvalidConfig) {
				t.Errorf("Validate error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidate_OfflineModeNeedsNoCredentials(t *testing.T) {
	cfg, err := Load(writeConfig(t, "offline: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Offline {
		t.Error("offline flag not set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_OfflineOverrideRescuesBareConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, limits.ErrInvalidConfig) {
		t.Fatalf("Validate on bare config = %v, want ErrInvalidConfig", err)
	}

	cfg.Offline = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after offline override: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load on missing file returned nil error")
	}
}
