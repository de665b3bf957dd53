// Package health exposes the monitor's status over HTTP.
package health

import (
	"github.com/slotwatchhq/slotwatch/internal/core/domain"
	"github.com/slotwatchhq/slotwatch/internal/limits"
)

// SystemStatus is the aggregate health of the service.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// StatusReport is the full /status payload.
type StatusReport struct {
	Running     bool                `json:"running"`
	Subscribers int                 `json:"subscribers"`
	LastStatus  domain.Status       `json:"last_status,omitempty"`
	Breaker     limits.BreakerState `json:"breaker"`
}

// Classify derives the aggregate status: a stopped monitor is critical, an
// open breaker degrades, everything else is healthy.
func (r StatusReport) Classify() SystemStatus {
	switch {
	case !r.Running:
		return StatusCritical
	case r.Breaker.Open:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}
