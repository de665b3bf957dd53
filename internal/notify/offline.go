package notify

import (
	"context"
	"log/slog"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// LogNotifier writes messages to the log instead of delivering them.
// Used in offline mode when no bot token is configured.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier builds an offline notifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

// Send logs the message and always succeeds.
func (n *LogNotifier) Send(_ context.Context, chat domain.ChatID, text string) error {
	n.log.Info("offline notification", "chat_id", int64(chat), "text", text)
	return nil
}
