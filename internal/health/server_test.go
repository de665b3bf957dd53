package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slotwatchhq/slotwatch/internal/checker"
	"github.com/slotwatchhq/slotwatch/internal/limits"
	"github.com/slotwatchhq/slotwatch/internal/monitor"
	"github.com/slotwatchhq/slotwatch/internal/notify"
	"github.com/slotwatchhq/slotwatch/internal/subscribers/memory"
)

func testServer(t *testing.T) (*Server, *monitor.Service, *memory.Store) {
	t.Helper()
	limiter, err := limits.NewRateLimiter(limits.LimiterConfig{MinInterval: 1, MaxInterval: 1})
	if err != nil {
		t.Fatalf("NewRateLimiter: %v", err)
	}
	breaker, err := limits.NewCircuitBreaker(limits.BreakerConfig{FailureThreshold: 5, BackoffBase: 1, BackoffMax: 10})
	if err != nil {
		t.Fatalf("NewCircuitBreaker: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	mon := monitor.New(monitor.Config{
		Checker:         checker.NewStaticChecker("", checker.Markers{}),
		Notifier:        notify.NewLogNotifier(log),
		Subscribers:     store,
		Limiter:         limiter,
		Breaker:         breaker,
		IntervalSeconds: 1,
		Logger:          log,
	})
	return NewServer(mon, store, 0), mon, store
}

func TestHandleHealth_CriticalWhenStopped(t *testing.T) {
	srv, _, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != string(StatusCritical) {
		t.Errorf("status = %q, want critical", body["status"])
	}
}

func TestHandleHealth_HealthyWhileRunning(t *testing.T) {
	srv, mon, _ := testServer(t)
	mon.Start()
	defer func() {
		mon.Stop()
		mon.Join(5 * time.Second)
	}()

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
}

func TestHandleStatus_ReportsRegistryAndBreaker(t *testing.T) {
	srv, _, store := testServer(t)
	_, _ = store.Add(context.Background(), 1)
	_, _ = store.Add(context.Background(), 2)

	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var report StatusReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Running {
		t.Error("report shows running before Start")
	}
	if report.Subscribers != 2 {
		t.Errorf("subscribers = %d, want 2", report.Subscribers)
	}
	if report.Breaker.Threshold != 5 {
		t.Errorf("breaker threshold = %d, want 5", report.Breaker.Threshold)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		report StatusReport
		want   SystemStatus
	}{
		{
			name:   "stopped is critical",
			report: StatusReport{Running: false},
			want:   StatusCritical,
		},
		{
			name:   "open breaker degrades",
			report: StatusReport{Running: true, Breaker: limits.BreakerState{Open: true}},
			want:   StatusDegraded,
		},
		{
			name:   "running with closed breaker is healthy",
			report: StatusReport{Running: true},
			want:   StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Classify(); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
