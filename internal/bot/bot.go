// Package bot is the Telegram command front-end: it long-polls for updates
// and serves the /start, /subscribe, /unsubscribe and /status commands.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
	"github.com/slotwatchhq/slotwatch/internal/limits"
	"github.com/slotwatchhq/slotwatch/internal/monitor"
	"github.com/slotwatchhq/slotwatch/internal/notify"
	"github.com/slotwatchhq/slotwatch/internal/subscribers"
)

const (
	pollSeconds   = 30
	errorPause    = 3 * time.Second
	welcomeText   = "👋 slotwatch monitors the appointment page for you.\nCommands: /subscribe /unsubscribe /status"
	notAllowedMsg = "Sorry, this bot is restricted."
)

// API is the slice of the Telegram client the bot consumes.
type API interface {
	Send(ctx context.Context, chat domain.ChatID, text string) error
	GetUpdates(ctx context.Context, offset int64, pollSeconds int) ([]notify.Update, error)
}

// Config wires the bot poller.
type Config struct {
	API         API
	Subscribers subscribers.Store
	Monitor     *monitor.Service

	// Whitelist restricts commands to these usernames. Empty means open.
	Whitelist []string

	Logger *slog.Logger
}

// Bot polls for commands and mutates the subscriber registry.
type Bot struct {
	api       API
	subs      subscribers.Store
	mon       *monitor.Service
	whitelist map[string]struct{}
	log       *slog.Logger
}

// New builds the bot poller.
func New(cfg Config) *Bot {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	wl := make(map[string]struct{}, len(cfg.Whitelist))
	for _, name := range cfg.Whitelist {
		name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
		if name != "" {
			wl[name] = struct{}{}
		}
	}
	return &Bot{
		api:       cfg.API,
		subs:      cfg.Subscribers,
		mon:       cfg.Monitor,
		whitelist: wl,
		log:       log,
	}
}

// Run long-polls until ctx is cancelled. Poll errors pause briefly and
// continue; the bot never gives up on a transient API failure.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for ctx.Err() == nil {
		updates, err := b.api.GetUpdates(ctx, offset, pollSeconds)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			b.log.Warn("getUpdates failed", "error", err)
			pause(ctx, errorPause)
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.handle(ctx, u)
		}
	}
	return ctx.Err()
}

func (b *Bot) handle(ctx context.Context, u notify.Update) {
	if u.Message == nil || u.Message.Text == "" {
		return
	}
	msg := u.Message
	chat := domain.ChatID(msg.Chat.ID)

	command, ok := parseCommand(msg.Text)
	if !ok {
		return
	}
	if !b.allowed(msg.From) {
		b.reply(ctx, chat, notAllowedMsg)
		return
	}

	switch command {
	case "/start":
		b.reply(ctx, chat, welcomeText)
	case "/subscribe":
		added, err := b.subs.Add(ctx, chat)
		switch {
		case err != nil:
			b.log.Warn("subscribe failed", "chat_id", int64(chat), "error", err)
			b.reply(ctx, chat, "Something went wrong, try again later.")
		case added:
			b.reply(ctx, chat, "✅ Subscribed. You will be notified when slots may be available.")
		default:
			b.reply(ctx, chat, "Already subscribed.")
		}
	case "/unsubscribe":
		removed, err := b.subs.Remove(ctx, chat)
		switch {
		case err != nil:
			b.log.Warn("unsubscribe failed", "chat_id", int64(chat), "error", err)
			b.reply(ctx, chat, "Something went wrong, try again later.")
		case removed:
			b.reply(ctx, chat, "🛑 Unsubscribed.")
		default:
			b.reply(ctx, chat, "You were not subscribed.")
		}
	case "/status":
		b.reply(ctx, chat, b.renderStatus(ctx))
	}
}

func (b *Bot) renderStatus(ctx context.Context) string {
	snap := b.mon.Snapshot()
	count, err := b.subs.Count(ctx)
	if err != nil {
		count = -1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "monitor running: %v\n", snap.Running)
	fmt.Fprintf(&sb, "subscribers: %d\n", count)
	if snap.LastStatus != "" {
		fmt.Fprintf(&sb, "last status: %s\n", snap.LastStatus)
	}
	fmt.Fprintf(&sb, "breaker: %d/%d failures", snap.Breaker.Failures, snap.Breaker.Threshold)
	if snap.Breaker.Open {
		sb.WriteString(" (open)")
	}
	if snap.Breaker.LastAction != limits.ActionNone {
		fmt.Fprintf(&sb, ", last action: %s", snap.Breaker.LastAction)
	}
	return sb.String()
}

func (b *Bot) allowed(u *notify.User) bool {
	if len(b.whitelist) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	_, ok := b.whitelist[strings.ToLower(u.Username)]
	return ok
}

func (b *Bot) reply(ctx context.Context, chat domain.ChatID, text string) {
	if err := b.api.Send(ctx, chat, text); err != nil {
		b.log.Warn("reply failed", "chat_id", int64(chat), "error", err)
	}
}

// parseCommand extracts the leading bot command, stripping any @botname
// suffix. Non-command messages are ignored.
func parseCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	command := strings.ToLower(fields[0])
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	return command, true
}

func pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
