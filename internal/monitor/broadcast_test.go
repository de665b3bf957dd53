package monitor

import (
	"testing"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

func TestDispatcher_FailedRecipientDoesNotBlockOthers(t *testing.T) {
	notifier := &recordingNotifier{failOn: map[domain.ChatID]bool{1: true}}
	d := newDispatcher(notifier, discardLogger())
	d.start()

	d.dispatch([]domain.ChatID{1, 2, 3}, "slots")
	d.stop()

	if got := notifier.messages(); len(got) != 2 {
		t.Fatalf("got %d deliveries, want 2: %v", len(got), got)
	}
	for _, chat := range notifier.chats {
		if chat == 1 {
			t.Errorf("delivery recorded for failing recipient %d", chat)
		}
	}
}

func TestDispatcher_DrainsQueueOnStop(t *testing.T) {
	notifier := &recordingNotifier{failOn: map[domain.ChatID]bool{}}
	d := newDispatcher(notifier, discardLogger())
	d.start()

	for i := 0; i < 5; i++ {
		d.dispatch([]domain.ChatID{domain.ChatID(i + 1)}, "ping")
	}
	d.stop()

	if got := len(notifier.messages()); got != 5 {
		t.Errorf("got %d deliveries after stop, want 5", got)
	}
}

func TestDispatcher_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	notifier := &recordingNotifier{failOn: map[domain.ChatID]bool{}}
	d := newDispatcher(notifier, discardLogger())
	// Not started: the queue only fills, nothing drains.

	for i := 0; i < 50; i++ {
		d.dispatch([]domain.ChatID{1}, "ping") // must return promptly
	}

	d.start()
	d.stop()
	if got := len(notifier.messages()); got > cap(d.queue) {
		t.Errorf("delivered %d jobs, more than queue capacity %d", got, cap(d.queue))
	}
}
