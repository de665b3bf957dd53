package checker

import (
	"sync"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// StaticChecker serves a fixed page body through the real classifier.
// Used for offline runs where no browser is available.
type StaticChecker struct {
	mu         sync.Mutex
	classifier *Classifier
	html       string
}

// NewStaticChecker builds a checker around a canned page.
func NewStaticChecker(html string, markers Markers) *StaticChecker {
	return &StaticChecker{
		classifier: NewClassifier(markers),
		html:       html,
	}
}

// SetHTML swaps the canned page content.
func (c *StaticChecker) SetHTML(html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.html = html
}

func (c *StaticChecker) Refresh() error { return nil }

func (c *StaticChecker) Status() (domain.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.Classify(c.html), nil
}

func (c *StaticChecker) EnsureLoggedIn() error { return nil }

func (c *StaticChecker) Close() {}
