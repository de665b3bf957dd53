// Package subscribers defines the recipient registry contract. Uniqueness is
// enforced by the store; the monitor only ever reads a snapshot per
// broadcast.
package subscribers

import (
	"context"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// Store persists the set of subscribed chats.
type Store interface {
	// Add registers a chat; reports false when it was already subscribed.
	Add(ctx context.Context, chat domain.ChatID) (bool, error)

	// Remove unregisters a chat; reports false when it was not subscribed.
	Remove(ctx context.Context, chat domain.ChatID) (bool, error)

	// All returns a snapshot of every subscribed chat, order unspecified.
	All(ctx context.Context) ([]domain.ChatID, error)

	// Count returns the number of subscribed chats.
	Count(ctx context.Context) (int, error)

	// Exists reports whether a chat is subscribed.
	Exists(ctx context.Context, chat domain.ChatID) (bool, error)
}
