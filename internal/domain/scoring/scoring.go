// Package scoring picks the canonical Score among duplicate upstream records.
package scoring

import (
	"github.com/okian/sfscore/internal/domain/model"
)

// Selector picks one record from the records matching an identity.
type Selector interface {
	// Select returns the canonical record, or false when scores is empty.
	Select(scores []model.Score) (model.Score, bool)
}

// New returns the best-of selector when streaks are tracked and the
// first-record selector otherwise.
func New(withStreak bool) Selector {
	if withStreak {
		return BestOf{}
	}
	return First{}
}

// First returns the first record as upstream ordered them.
type First struct{}

// Select implements Selector.
func (First) Select(scores []model.Score) (model.Score, bool) {
	if len(scores) == 0 {
		return model.Score{}, false
	}
	return scores[0], true
}

// BestOf returns the record with the highest score, then the highest streak,
// then the latest modification time. Full ties keep the earlier record.
type BestOf struct{}

// Select implements Selector.
func (BestOf) Select(scores []model.Score) (model.Score, bool) {
	if len(scores) == 0 {
		return model.Score{}, false
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if Better(s, best) {
			best = s
		}
	}
	return best, true
}

// Better reports whether a ranks strictly above b.
func Better(a, b model.Score) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if as, bs := a.StreakValue(), b.StreakValue(); as != bs {
		return as > bs
	}
	return a.ModifiedMillis > b.ModifiedMillis
}
