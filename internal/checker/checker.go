// Package checker defines the probing contract against the booking site and
// the page classification heuristic. The monitor only ever talks to the
// Checker interface; the rod-backed implementation, a stub page source or an
// in-memory fake are equally valid behind it.
package checker

import (
	"errors"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// ErrProbe marks recoverable probe failures. The monitor absorbs these into
// the breaker; they never cross a cycle boundary.
var ErrProbe = errors.New("probe failure")

// Checker owns the fetch/refresh/login operations against the target page.
type Checker interface {
	// Refresh reloads the target page.
	Refresh() error

	// Status classifies the current page content.
	Status() (domain.Status, error)

	// EnsureLoggedIn establishes a logged-in session, best effort. Callers
	// may log and proceed on error.
	EnsureLoggedIn() error

	// Close releases the underlying session. Errors are suppressed.
	Close()
}
