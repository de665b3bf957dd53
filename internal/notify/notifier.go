// Package notify delivers text messages to subscribers.
package notify

import (
	"context"
	"errors"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// ErrDelivery marks a failed delivery to a single recipient. Deliveries are
// isolated per recipient; one failure never aborts a broadcast.
var ErrDelivery = errors.New("delivery failure")

// Notifier sends a text message to one recipient.
type Notifier interface {
	Send(ctx context.Context, chat domain.ChatID, text string) error
}
