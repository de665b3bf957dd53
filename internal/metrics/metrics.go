// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed monitor cycles by outcome.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotwatch_cycles_total",
			Help: "Total number of monitor cycles",
		},
		[]string{"outcome"},
	)

	// ProbeErrorsTotal counts probe failures absorbed by the breaker.
	ProbeErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slotwatch_probe_errors_total",
			Help: "Total number of probe failures",
		},
	)

	// StatusObserved counts classified page statuses.
	StatusObserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotwatch_status_observed_total",
			Help: "Total number of page classifications by status",
		},
		[]string{"status"},
	)

	// BroadcastsTotal counts broadcasts by kind (availability, cooldown).
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotwatch_broadcasts_total",
			Help: "Total number of subscriber broadcasts",
		},
		[]string{"kind"},
	)

	// NotifyErrorsTotal counts failed deliveries to individual recipients.
	NotifyErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slotwatch_notify_errors_total",
			Help: "Total number of failed notification deliveries",
		},
	)

	// BreakerFailures mirrors the breaker's consecutive failure count.
	BreakerFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slotwatch_breaker_failures",
			Help: "Current consecutive failure count of the circuit breaker",
		},
	)

	// WaitSeconds counts time spent waiting by wait kind.
	WaitSeconds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotwatch_wait_seconds_total",
			Help: "Total seconds spent in scheduled waits",
		},
		[]string{"kind"},
	)
)
