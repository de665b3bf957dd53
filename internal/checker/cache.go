package checker

import (
	"sync"
	"time"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// DefaultStatusTTL keeps classification results fresh enough for a single
// cycle while avoiding repeated DOM parsing.
const DefaultStatusTTL = 2 * time.Second

// StatusCache remembers the last classified snapshot for a short TTL.
type StatusCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	snap *domain.StatusSnapshot
}

// NewStatusCache builds a cache; ttl <= 0 falls back to DefaultStatusTTL.
func NewStatusCache(ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusCache{ttl: ttl, now: time.Now}
}

// Get returns the cached status if it is still fresh.
func (c *StatusCache) Get() (domain.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil || c.now().Sub(c.snap.At) >= c.ttl {
		return "", false
	}
	return c.snap.Status, true
}

// Put stores a freshly classified status.
func (c *StatusCache) Put(status domain.Status, rawLength int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = &domain.StatusSnapshot{Status: status, At: c.now(), RawLength: rawLength}
}

// Last returns the most recent snapshot regardless of freshness, for status
// reporting. Nil when nothing has been classified yet.
func (c *StatusCache) Last() *domain.StatusSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil
	}
	cp := *c.snap
	return &cp
}
