package checker

import (
	"testing"
	"time"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

func TestStatusCache_TTL(t *testing.T) {
	clock := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewStatusCache(2 * time.Second)
	c.now = func() time.Time { return clock }

	if _, ok := c.Get(); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Put(domain.StatusNoSlots, 4096)

	status, ok := c.Get()
	if !ok || status != domain.StatusNoSlots {
		t.Fatalf("Get = %q, %v; want fresh hit", status, ok)
	}

	clock = clock.Add(1900 * time.Millisecond)
	if _, ok := c.Get(); !ok {
		t.Error("cache expired before TTL")
	}

	clock = clock.Add(200 * time.Millisecond)
	if _, ok := c.Get(); ok {
		t.Error("cache still fresh past TTL")
	}

	// Last keeps serving the stale snapshot for reporting.
	last := c.Last()
	if last == nil || last.Status != domain.StatusNoSlots || last.RawLength != 4096 {
		t.Errorf("Last = %+v, want stale snapshot preserved", last)
	}
}

func TestStatusCache_PutRefreshes(t *testing.T) {
	clock := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewStatusCache(2 * time.Second)
	c.now = func() time.Time { return clock }

	c.Put(domain.StatusNoSlots, 10)
	clock = clock.Add(3 * time.Second)
	c.Put(domain.StatusMaybeSlots, 20)

	status, ok := c.Get()
	if !ok || status != domain.StatusMaybeSlots {
		t.Errorf("Get = %q, %v; want refreshed hit", status, ok)
	}
}

func TestNewStatusCache_DefaultTTL(t *testing.T) {
	c := NewStatusCache(0)
	if c.ttl != DefaultStatusTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultStatusTTL)
	}
}
