// Package activity records what the learner did, for history views.
package activity

import (
	"context"
	"time"
)

//go:generate mockgen -source=activity.go -destination=../mocks/activity/mock_activity.go -package=mock_activity

const TypeReview = "review"

// Log is one entry of the activity feed.
type Log struct {
	ID           int64     `db:"id" yaml:"id"`
	Type         string    `db:"type" yaml:"type"`
	Title        string    `db:"title" yaml:"title"`
	ItemID       string    `db:"item_id" yaml:"item_id"`
	Quality      int       `db:"quality" yaml:"quality"`
	IntervalDays int       `db:"interval_days" yaml:"interval_days"`
	CreatedAt    time.Time `db:"created_at" yaml:"created_at"`
}

// Recorder appends entries to the activity feed.
type Recorder interface {
	Record(ctx context.Context, log *Log) error
}

// NewReviewLog builds the entry written after an item is graded.
func NewReviewLog(itemID string, quality, intervalDays int, at time.Time) *Log {
	return &Log{
		Type:         TypeReview,
		Title:        "Reviewed " + itemID,
		ItemID:       itemID,
		Quality:      quality,
		IntervalDays: intervalDays,
		CreatedAt:    at,
	}
}
