package browser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/slotwatchhq/slotwatch/internal/checker"
	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// loginPollInterval is how often the login poll re-reads the current URL.
const loginPollInterval = 2 * time.Second

// Config holds everything the rod checker needs.
type Config struct {
	Launch           LaunchConfig
	LoginURL         string
	LoginWaitSeconds int
	Markers          checker.Markers
	StatusTTL        time.Duration
	Logger           *slog.Logger
}

// Checker maintains a logged-in browser session against the booking site
// and classifies the current page on demand. Login detection is heuristic:
// the session counts as logged in once the browser leaves the /login path.
type Checker struct {
	browser    *rod.Browser
	page       *rod.Page
	loginURL   string
	loginWait  time.Duration
	classifier *checker.Classifier
	cache      *checker.StatusCache
	log        *slog.Logger
	loggedIn   bool
}

// NewChecker launches the browser and opens a blank page.
func NewChecker(cfg Config) (*Checker, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	controlURL, err := newLauncher(cfg.Launch).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Checker{
		browser:    b,
		page:       page,
		loginURL:   cfg.LoginURL,
		loginWait:  time.Duration(cfg.LoginWaitSeconds) * time.Second,
		classifier: checker.NewClassifier(cfg.Markers),
		cache:      checker.NewStatusCache(cfg.StatusTTL),
		log:        log,
	}, nil
}

// EnsureLoggedIn navigates to the login page and waits for the operator to
// finish logging in (the site requires a human for that step). Not
// confirming within the window is logged, not fatal.
func (c *Checker) EnsureLoggedIn() error {
	if c.loggedIn {
		return nil
	}
	if err := c.page.Navigate(c.loginURL); err != nil {
		return fmt.Errorf("%w: initial navigation: %v", checker.ErrProbe, err)
	}

	c.log.Info("waiting for manual login / captcha solve", "timeout", c.loginWait)
	deadline := time.Now().Add(c.loginWait)
	for time.Now().Before(deadline) {
		time.Sleep(loginPollInterval)
		info, err := c.page.Info()
		if err != nil {
			// Transient driver hiccup, keep polling.
			continue
		}
		if !strings.Contains(info.URL, "/login") {
			c.loggedIn = true
			c.log.Info("login heuristically confirmed", "current_url", info.URL)
			return nil
		}
	}
	c.log.Warn("login not confirmed after timeout, proceeding anyway")
	return nil
}

// Refresh reloads the current page.
func (c *Checker) Refresh() error {
	if err := c.page.Reload(); err != nil {
		return fmt.Errorf("%w: reload: %v", checker.ErrProbe, err)
	}
	return nil
}

// Status classifies the current page, serving from the short-lived cache
// when fresh. A failed page read is conservatively reported as BLOCKED so
// the monitor backs off instead of alerting.
func (c *Checker) Status() (domain.Status, error) {
	if status, ok := c.cache.Get(); ok {
		return status, nil
	}

	html, err := c.page.HTML()
	if err != nil {
		c.log.Warn("page source read failed", "error", err)
		return domain.StatusBlocked, nil
	}

	status := c.classifier.Classify(html)
	c.cache.Put(status, len(html))
	return status, nil
}

// Close shuts the browser down; errors are suppressed.
func (c *Checker) Close() {
	if err := c.browser.Close(); err != nil {
		c.log.Debug("browser close failed", "error", err)
	}
}
