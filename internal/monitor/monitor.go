// Package monitor runs the polling loop: probe, classify, react, wait.
// One worker goroutine owns the whole cycle; Start/Stop/IsRunning/Join form
// the control surface and are safe from any goroutine.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/slotwatchhq/slotwatch/internal/checker"
	"github.com/slotwatchhq/slotwatch/internal/core/domain"
	"github.com/slotwatchhq/slotwatch/internal/limits"
	"github.com/slotwatchhq/slotwatch/internal/metrics"
	"github.com/slotwatchhq/slotwatch/internal/notify"
	"github.com/slotwatchhq/slotwatch/internal/subscribers"
)

// settleDelay gives the page a moment to stabilize after a refresh before
// the status read.
const settleDelay = 5 * time.Second

const (
	availabilityNotice = "🎉 Appointment slots may be available! Check now."
	cooldownNotice     = "⚠️ CAPTCHA / anti-bot detected. Pausing checks for a while."
)

// Snapshot is a point-in-time copy of the monitor state for status
// reporting. Readers never see the loop's live fields.
type Snapshot struct {
	Running    bool                `json:"running"`
	LastStatus domain.Status       `json:"last_status,omitempty"`
	Breaker    limits.BreakerState `json:"breaker"`
}

// Config wires the monitor service.
type Config struct {
	Checker     checker.Checker
	Notifier    notify.Notifier
	Subscribers subscribers.Store
	Limiter     *limits.RateLimiter
	Breaker     *limits.CircuitBreaker

	// IntervalSeconds is the base wait between successful cycles.
	IntervalSeconds int

	Logger *slog.Logger
}

// Service is the orchestrating state machine around the checker.
type Service struct {
	checker  checker.Checker
	notifier notify.Notifier
	subs     subscribers.Store
	limiter  *limits.RateLimiter
	breaker  *limits.CircuitBreaker
	interval int
	log      *slog.Logger

	// sleep is the settle-delay primitive, swapped out in tests.
	sleep limits.SleepFunc

	// lastNoSlots is owned exclusively by the worker goroutine. Nil until
	// the first successful classification.
	lastNoSlots *bool

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	dispatcher *dispatcher
	snap       Snapshot
}

// New builds a monitor service. The limiter and breaker must already be
// validated by their constructors.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		checker:  cfg.Checker,
		notifier: cfg.Notifier,
		subs:     cfg.Subscribers,
		limiter:  cfg.Limiter,
		breaker:  cfg.Breaker,
		interval: cfg.IntervalSeconds,
		log:      log,
		sleep:    ctxSleep,
	}
	s.snap.Breaker = cfg.Breaker.State()
	return s
}

// Start spawns the polling worker. Starting while already running is a
// no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.snap.Running = true
	s.dispatcher = newDispatcher(s.notifier, s.log)
	s.dispatcher.start()
	done := s.done
	disp := s.dispatcher
	s.mu.Unlock()

	go s.run(ctx, done, disp)
}

// Stop signals the worker to end. An in-progress wait is cut short; the
// stop itself is still only acted on at the cycle boundary.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// IsRunning reports worker liveness.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Join blocks until the worker ends or the timeout elapses. A zero or
// negative timeout waits indefinitely.
func (s *Service) Join(timeout time.Duration) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return
	}
	if timeout <= 0 {
		<-done
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// Snapshot returns a copy of the current monitor state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	snap.Breaker = s.breaker.State()
	return snap
}

func (s *Service) run(ctx context.Context, done chan struct{}, disp *dispatcher) {
	defer func() {
		// Cleanup is guaranteed even when the loop exits abnormally:
		// the checker closes exactly once and pending notifications
		// drain before the worker reports stopped.
		s.checker.Close()
		disp.stop()
		s.mu.Lock()
		s.running = false
		s.snap.Running = false
		s.mu.Unlock()
		close(done)
	}()

	if err := s.checker.EnsureLoggedIn(); err != nil {
		s.log.Warn("login not confirmed, proceeding anyway", "error", err)
	}

	for ctx.Err() == nil {
		s.runCycle(ctx)
	}
}

// runCycle performs one probe-classify-react-wait iteration. Nothing it
// does can terminate the loop; every failure is absorbed into the breaker.
func (s *Service) runCycle(ctx context.Context) {
	status, err := s.observe(ctx)
	if err != nil {
		s.log.Error("check error", "error", err)
		metrics.ProbeErrorsTotal.Inc()
		s.breaker.RecordFailure()
		metrics.BreakerFailures.Set(float64(s.breaker.State().Failures))
		waited := s.breaker.BackoffSleep(ctx)
		metrics.WaitSeconds.WithLabelValues("backoff").Add(float64(waited))
		metrics.CyclesTotal.WithLabelValues("error").Inc()
		return
	}

	metrics.StatusObserved.WithLabelValues(string(status)).Inc()
	s.publishStatus(status)

	if status.Special() {
		s.handleSpecial(ctx, status)
		metrics.CyclesTotal.WithLabelValues("special").Inc()
		return
	}

	s.advance(ctx, status)
	metrics.CyclesTotal.WithLabelValues("ok").Inc()
}

// observe refreshes the page, lets the DOM settle, and reads the status.
func (s *Service) observe(ctx context.Context) (domain.Status, error) {
	if err := s.checker.Refresh(); err != nil {
		return "", err
	}
	s.sleep(ctx, settleDelay)
	return s.checker.Status()
}

// handleSpecial reacts to anti-automation statuses: record the failure,
// then either take the long cooldown (CAPTCHA at threshold, announced to
// subscribers) or a short backoff.
func (s *Service) handleSpecial(ctx context.Context, status domain.Status) {
	s.log.Info("special status detected", "status", status)
	s.breaker.RecordFailure()
	metrics.BreakerFailures.Set(float64(s.breaker.State().Failures))

	if status == domain.StatusCaptcha && s.breaker.ShouldCooldown() {
		s.broadcast(ctx, cooldownNotice, "cooldown")
		waited := s.breaker.CooldownSleep(ctx)
		metrics.WaitSeconds.WithLabelValues("cooldown").Add(float64(waited))
		metrics.BreakerFailures.Set(0)
		return
	}

	waited := s.breaker.BackoffSleep(ctx)
	metrics.WaitSeconds.WithLabelValues("backoff").Add(float64(waited))
}

// advance handles a normal status: reset the breaker, fire the
// availability notice exactly once per NO_SLOTS -> not-NO_SLOTS edge, then
// take the jittered interval wait.
func (s *Service) advance(ctx context.Context, status domain.Status) {
	s.breaker.Reset()
	metrics.BreakerFailures.Set(0)

	isNoSlots := status == domain.StatusNoSlots
	if s.lastNoSlots != nil && *s.lastNoSlots && !isNoSlots {
		s.log.Info("transition to maybe slots detected", "status", status)
		s.broadcast(ctx, availabilityNotice, "availability")
	}
	s.lastNoSlots = &isNoSlots

	base := s.interval
	if base < 1 {
		base = 1
	}
	waited := s.limiter.SleepWithJitter(ctx, base)
	metrics.WaitSeconds.WithLabelValues("interval").Add(float64(waited))
}

// broadcast snapshots the subscriber set and hands the fan-out to the
// dispatcher; the worker does not wait for deliveries.
func (s *Service) broadcast(ctx context.Context, text, kind string) {
	chats, err := s.subs.All(ctx)
	if err != nil {
		s.log.Warn("failed to snapshot subscribers", "error", err)
		return
	}
	if len(chats) == 0 {
		return
	}
	metrics.BroadcastsTotal.WithLabelValues(kind).Inc()

	s.mu.Lock()
	disp := s.dispatcher
	s.mu.Unlock()
	disp.dispatch(chats, text)
}

func (s *Service) publishStatus(status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastStatus = status
}

func ctxSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
