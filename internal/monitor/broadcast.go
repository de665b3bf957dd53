package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
	"github.com/slotwatchhq/slotwatch/internal/metrics"
	"github.com/slotwatchhq/slotwatch/internal/notify"
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 10 * time.Second

// broadcastJob is one fan-out request: the same text to a snapshot of
// recipients, correlated in logs by id.
type broadcastJob struct {
	id    string
	chats []domain.ChatID
	text  string
}

// dispatcher decouples notification delivery from the monitor worker.
// Jobs go through a bounded queue to a dedicated sender goroutine; each
// recipient is attempted independently and failures are only logged.
type dispatcher struct {
	notifier notify.Notifier
	log      *slog.Logger
	queue    chan broadcastJob
	done     chan struct{}
}

func newDispatcher(notifier notify.Notifier, log *slog.Logger) *dispatcher {
	return &dispatcher{
		notifier: notifier,
		log:      log,
		queue:    make(chan broadcastJob, 16),
		done:     make(chan struct{}),
	}
}

func (d *dispatcher) start() {
	go d.run()
}

// stop closes the queue and waits for pending jobs to drain.
func (d *dispatcher) stop() {
	close(d.queue)
	<-d.done
}

// dispatch enqueues without blocking. A full queue drops the job; the
// monitor worker must never stall on notification delivery.
func (d *dispatcher) dispatch(chats []domain.ChatID, text string) {
	job := broadcastJob{id: uuid.NewString(), chats: chats, text: text}
	select {
	case d.queue <- job:
	default:
		d.log.Warn("broadcast queue full, dropping", "broadcast_id", job.id, "recipients", len(chats))
	}
}

func (d *dispatcher) run() {
	defer close(d.done)
	for job := range d.queue {
		for _, chat := range job.chats {
			d.send(job, chat)
		}
	}
}

func (d *dispatcher) send(job broadcastJob, chat domain.ChatID) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := d.notifier.Send(ctx, chat, job.text); err != nil {
		metrics.NotifyErrorsTotal.Inc()
		d.log.Warn("notify error", "broadcast_id", job.id, "chat_id", int64(chat), "error", err)
	}
}
