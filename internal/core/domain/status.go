// Package domain holds the shared vocabulary of the slot monitor.
package domain

import "time"

// Status classifies the booking page content into a small fixed vocabulary.
type Status string

const (
	StatusOK         Status = "OK"
	StatusNoSlots    Status = "NO_SLOTS"
	StatusMaybeSlots Status = "MAYBE_SLOTS"
	StatusCaptcha    Status = "CAPTCHA"
	StatusBlocked    Status = "BLOCKED"
)

// Special reports whether the status requires anti-automation handling
// instead of the normal transition check.
func (s Status) Special() bool {
	return s == StatusCaptcha || s == StatusBlocked
}

// StatusSnapshot is a classified page observation with its timestamp.
// Cached by the checker so repeated reads within a cycle do not re-parse
// the page source.
type StatusSnapshot struct {
	Status    Status
	At        time.Time
	RawLength int
}
