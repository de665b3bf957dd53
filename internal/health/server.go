package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slotwatchhq/slotwatch/internal/monitor"
	"github.com/slotwatchhq/slotwatch/internal/subscribers"
)

// Server provides the /health, /status and /metrics endpoints.
type Server struct {
	monitor *monitor.Service
	subs    subscribers.Store
	server  *http.Server
}

// NewServer builds the HTTP surface around the monitor and registry.
func NewServer(mon *monitor.Service, subs subscribers.Store, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		monitor: mon,
		subs:    subs,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) report(ctx context.Context) StatusReport {
	snap := s.monitor.Snapshot()
	count, err := s.subs.Count(ctx)
	if err != nil {
		count = -1
	}
	return StatusReport{
		Running:     snap.Running,
		Subscribers: count,
		LastStatus:  snap.LastStatus,
		Breaker:     snap.Breaker,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := s.report(ctx).Classify()

	w.Header().Set("Content-Type", "application/json")
	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": string(status)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.report(ctx))
}
