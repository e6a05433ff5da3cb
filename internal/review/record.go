// Package review implements SM-2 review scheduling and the stores that persist review state.
package review

import "time"

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Record is the review state of one learnable item.
// Schedule is the only function that produces a new Record from an existing one.
type Record struct {
	ItemID       string    `db:"item_id" yaml:"item_id" json:"item_id"`
	LastReviewed time.Time `db:"last_reviewed" yaml:"last_reviewed" json:"last_reviewed"`
	NextReview   time.Time `db:"next_review" yaml:"next_review" json:"next_review"`
	IntervalDays int       `db:"interval_days" yaml:"interval_days" json:"interval_days"`
	Repetitions  int       `db:"repetitions" yaml:"repetitions" json:"repetitions"`
	EaseFactor   float64   `db:"ease_factor" yaml:"ease_factor" json:"ease_factor"`
}

// NewSeed returns the state of an item that has never been graded.
// A seed is due immediately.
func NewSeed(itemID string, now time.Time) Record {
	return Record{
		ItemID:       itemID,
		LastReviewed: now,
		NextReview:   now,
		IntervalDays: 0,
		Repetitions:  0,
		EaseFactor:   DefaultEaseFactor,
	}
}
