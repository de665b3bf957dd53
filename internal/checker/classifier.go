package checker

import (
	"strings"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// Markers are the lowercase substrings that drive page classification.
// The lists themselves come from configuration; their contents are owned by
// the operator, not by this package.
type Markers struct {
	Captcha  []string
	Block    []string
	Negative []string
}

// Classifier turns raw page HTML into a Status. Matching is ordered:
// anti-bot markers win over block markers, block over negative, and a page
// with no matches at all is optimistically MAYBE_SLOTS.
type Classifier struct {
	markers Markers
}

// NewClassifier builds a classifier, normalizing all markers to lowercase.
func NewClassifier(m Markers) *Classifier {
	return &Classifier{markers: Markers{
		Captcha:  lowered(m.Captcha),
		Block:    lowered(m.Block),
		Negative: lowered(m.Negative),
	}}
}

// Classify maps page content to a Status. It cannot fail: an unclassifiable
// page falls through to MAYBE_SLOTS, and the conservative OK fallback for a
// broken read path lives with the caller that reads the page.
func (c *Classifier) Classify(html string) domain.Status {
	page := strings.ToLower(html)
	switch {
	case containsAny(page, c.markers.Captcha):
		return domain.StatusCaptcha
	case containsAny(page, c.markers.Block):
		return domain.StatusBlocked
	case containsAny(page, c.markers.Negative):
		return domain.StatusNoSlots
	default:
		return domain.StatusMaybeSlots
	}
}

func containsAny(page string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(page, m) {
			return true
		}
	}
	return false
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
