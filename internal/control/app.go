// Package control assembles the application: subscriber backend, checker,
// notifier, monitor, bot and health server, and manages their lifecycles.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/slotwatchhq/slotwatch/internal/bot"
	"github.com/slotwatchhq/slotwatch/internal/checker"
	"github.com/slotwatchhq/slotwatch/internal/core/config"
	"github.com/slotwatchhq/slotwatch/internal/health"
	"github.com/slotwatchhq/slotwatch/internal/infra/browser"
	"github.com/slotwatchhq/slotwatch/internal/limits"
	"github.com/slotwatchhq/slotwatch/internal/monitor"
	"github.com/slotwatchhq/slotwatch/internal/notify"
	"github.com/slotwatchhq/slotwatch/internal/subscribers"
	filestore "github.com/slotwatchhq/slotwatch/internal/subscribers/file"
	memstore "github.com/slotwatchhq/slotwatch/internal/subscribers/memory"
	pgstore "github.com/slotwatchhq/slotwatch/internal/subscribers/postgres"
	redisstore "github.com/slotwatchhq/slotwatch/internal/subscribers/redis"
)

// offlinePage is what the static checker serves when no browser is wired.
const offlinePage = "<html>no appointments available</html>"

// App owns every component of the running service.
type App struct {
	cfg          *config.AppConfig
	store        subscribers.Store
	redisStore   *redisstore.Store
	db           *pgstore.DB
	monitor      *monitor.Service
	bot          *bot.Bot
	healthServer *health.Server
	log          *slog.Logger
}

// NewApp wires all dependencies from configuration. Every configuration
// error surfaces here, before anything starts.
func NewApp(cfg *config.AppConfig) (*App, error) {
	log := slog.Default()

	app := &App{cfg: cfg, log: log}

	if err := app.buildStore(cfg); err != nil {
		return nil, err
	}

	markers := checker.Markers{
		Captcha:  cfg.Target.CaptchaMarkers,
		Block:    cfg.Target.BlockMarkers,
		Negative: cfg.Target.NegativePatterns,
	}

	var chk checker.Checker
	var notifier notify.Notifier
	var api bot.API

	if cfg.Offline {
		log.Info("offline mode: static checker and log notifier")
		chk = checker.NewStaticChecker(offlinePage, markers)
		notifier = notify.NewLogNotifier(log)
	} else {
		rodChecker, err := browser.NewChecker(browser.Config{
			Launch: browser.LaunchConfig{
				Headless:        cfg.Browser.Headless,
				WindowSize:      cfg.Browser.WindowSize,
				UserDataDir:     cfg.Browser.UserDataDir,
				UserAgent:       cfg.Browser.UserAgent,
				RemoteDebugPort: cfg.Browser.RemoteDebugPort,
				Stealth:         cfg.Browser.Stealth != nil && *cfg.Browser.Stealth,
			},
			LoginURL:         cfg.Target.LoginURL,
			LoginWaitSeconds: cfg.Target.LoginWaitSeconds,
			Markers:          markers,
			Logger:           log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init checker: %w", err)
		}
		chk = rodChecker

		tg := notify.NewTelegramClient(notify.TelegramConfig{Token: cfg.Telegram.Token})
		notifier = tg
		api = tg
	}

	limiter, err := limits.NewRateLimiter(limits.LimiterConfig{
		MinInterval: cfg.Monitor.MinCheckInterval,
		MaxInterval: cfg.Monitor.MaxCheckInterval,
		JitterRatio: cfg.Monitor.JitterRatio,
	})
	if err != nil {
		return nil, err
	}
	breaker, err := limits.NewCircuitBreaker(limits.BreakerConfig{
		FailureThreshold: cfg.Monitor.FailureThreshold,
		CooldownSeconds:  cfg.Monitor.CooldownSeconds,
		BackoffBase:      cfg.Monitor.ErrorBackoffBase,
		BackoffMax:       cfg.Monitor.ErrorBackoffMax,
	})
	if err != nil {
		return nil, err
	}

	app.monitor = monitor.New(monitor.Config{
		Checker:         chk,
		Notifier:        notifier,
		Subscribers:     app.store,
		Limiter:         limiter,
		Breaker:         breaker,
		IntervalSeconds: cfg.Monitor.CheckInterval,
		Logger:          log,
	})

	app.healthServer = health.NewServer(app.monitor, app.store, cfg.Server.Port)

	if api != nil {
		app.bot = bot.New(bot.Config{
			API:         api,
			Subscribers: app.store,
			Monitor:     app.monitor,
			Whitelist:   cfg.Telegram.Whitelist,
			Logger:      log,
		})
	}

	return app, nil
}

func (a *App) buildStore(cfg *config.AppConfig) error {
	switch cfg.Subscribers.Backend {
	case "postgres":
		db, err := pgstore.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return fmt.Errorf("failed to migrate db: %w", err)
		}
		a.db = db
		a.store = pgstore.NewStore(db)
		a.log.Info("using PostgreSQL subscriber store")
	case "redis":
		store, err := redisstore.NewStore(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisStore = store
		a.store = store
		a.log.Info("using Redis subscriber store")
	case "file":
		store, err := filestore.NewStore(cfg.Subscribers.File)
		if err != nil {
			return fmt.Errorf("failed to init subscriber file: %w", err)
		}
		a.store = store
		a.log.Info("using file subscriber store", "path", cfg.Subscribers.File)
	default:
		a.store = memstore.NewStore()
		a.log.Info("using in-memory subscriber store")
	}
	return nil
}

// Start launches the health server, the bot poller and, unless deferred by
// configuration, the monitor loop.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("health server failed", "error", err)
		}
	}()

	if a.bot != nil {
		go func() {
			if err := a.bot.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("bot poller failed", "error", err)
			}
		}()
	}

	if a.cfg.Monitor.StartAfterLogin == nil || *a.cfg.Monitor.StartAfterLogin {
		a.monitor.Start()
	} else {
		a.log.Info("monitor start deferred by configuration")
	}

	return nil
}

// Monitor exposes the monitor service for hosts that manage it directly.
func (a *App) Monitor() *monitor.Service {
	return a.monitor
}

// Stop shuts everything down: the monitor first (so the checker closes),
// then the stores and the HTTP server.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("stopping slotwatch...")

	a.monitor.Stop()
	a.monitor.Join(10 * time.Second)

	if a.redisStore != nil {
		if err := a.redisStore.Close(); err != nil {
			a.log.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("failed to close database", "error", err)
		}
	}

	return a.healthServer.Stop(ctx)
}
