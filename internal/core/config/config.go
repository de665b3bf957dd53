// Package config loads and validates the YAML application configuration.
package config

import (
	"fmt"

	"github.com/slotwatchhq/slotwatch/internal/limits"
	pgstore "github.com/slotwatchhq/slotwatch/internal/subscribers/postgres"
	redisstore "github.com/slotwatchhq/slotwatch/internal/subscribers/redis"
)

// AppConfig is the top-level configuration.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Target      TargetConfig      `yaml:"target"`
	Browser     BrowserConfig     `yaml:"browser"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	Subscribers SubscribersConfig `yaml:"subscribers"`
	Redis       redisstore.Config `yaml:"redis"`
	Database    pgstore.Config    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`

	// Offline runs without a real browser or Telegram API: notifications
	// go to the log and the checker serves a canned page.
	Offline bool `yaml:"offline"`
}

// ServerConfig holds the health/status HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// TelegramConfig holds bot credentials and access control.
type TelegramConfig struct {
	Token     string   `yaml:"token"`
	Whitelist []string `yaml:"whitelist"`
}

// TargetConfig describes the monitored booking site.
type TargetConfig struct {
	LoginURL         string   `yaml:"login_url"`
	LoginWaitSeconds int      `yaml:"login_wait_seconds"`
	NegativePatterns []string `yaml:"negative_patterns"`
	CaptchaMarkers   []string `yaml:"captcha_markers"`
	BlockMarkers     []string `yaml:"block_markers"`
}

// BrowserConfig holds Chromium launch settings. Stealth is a pointer so an
// omitted value can default to enabled.
type BrowserConfig struct {
	Headless        bool   `yaml:"headless"`
	WindowSize      string `yaml:"window_size"`
	UserDataDir     string `yaml:"user_data_dir"`
	UserAgent       string `yaml:"user_agent"`
	RemoteDebugPort int    `yaml:"remote_debug_port"`
	Stealth         *bool  `yaml:"stealth"`
}

// MonitorConfig holds polling cadence and resilience settings, in seconds.
type MonitorConfig struct {
	CheckInterval    int     `yaml:"check_interval"`
	MinCheckInterval int     `yaml:"min_check_interval"`
	MaxCheckInterval int     `yaml:"max_check_interval"`
	JitterRatio      float64 `yaml:"jitter_ratio"`
	ErrorBackoffBase int     `yaml:"error_backoff_base"`
	ErrorBackoffMax  int     `yaml:"error_backoff_max"`
	CooldownSeconds  int     `yaml:"cooldown_on_captcha"`
	FailureThreshold int     `yaml:"failure_threshold"`

	// StartAfterLogin starts the polling loop immediately at boot, right
	// after the best-effort login wait. Defaults to enabled when omitted.
	StartAfterLogin *bool `yaml:"start_after_login"`
}

// SubscribersConfig selects and parameterizes the registry backend.
type SubscribersConfig struct {
	Backend string `yaml:"backend"` // file | memory | redis | postgres
	File    string `yaml:"file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Validate rejects configurations the components would refuse at
// construction time; this keeps every configuration error at startup.
func (c *AppConfig) Validate() error {
	m := c.Monitor
	if _, err := limits.NewRateLimiter(limits.LimiterConfig{
		MinInterval: m.MinCheckInterval,
		MaxInterval: m.MaxCheckInterval,
		JitterRatio: m.JitterRatio,
	}); err != nil {
		return err
	}
	if _, err := limits.NewCircuitBreaker(limits.BreakerConfig{
		FailureThreshold: m.FailureThreshold,
		CooldownSeconds:  m.CooldownSeconds,
		BackoffBase:      m.ErrorBackoffBase,
		BackoffMax:       m.ErrorBackoffMax,
	}); err != nil {
		return err
	}

	switch c.Subscribers.Backend {
	case "file", "memory", "redis", "postgres":
	default:
		return fmt.Errorf("%w: unknown subscriber backend %q", limits.ErrInvalidConfig, c.Subscribers.Backend)
	}
	if c.Subscribers.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("%w: redis backend requires redis.url", limits.ErrInvalidConfig)
	}
	if c.Subscribers.Backend == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("%w: postgres backend requires database.url", limits.ErrInvalidConfig)
	}

	if !c.Offline {
		if c.Telegram.Token == "" {
			return fmt.Errorf("%w: telegram.token is required outside offline mode", limits.ErrInvalidConfig)
		}
		if c.Target.LoginURL == "" {
			return fmt.Errorf("%w: target.login_url is required outside offline mode", limits.ErrInvalidConfig)
		}
	}
	return nil
}
