// Package apiv1 defines the messages of the recall.v1 review service.
package apiv1

import (
	"time"

	"github.com/at-ishikawa/recall/internal/review"
)

const (
	ReviewServiceName = "recall.v1.ReviewService"

	ReviewServiceListDueReviewsProcedure = "/" + ReviewServiceName + "/ListDueReviews"
	ReviewServiceGradeReviewProcedure    = "/" + ReviewServiceName + "/GradeReview"
)

// Review is the wire form of review.Record.
type Review struct {
	ItemID       string    `json:"item_id"`
	LastReviewed time.Time `json:"last_reviewed"`
	NextReview   time.Time `json:"next_review"`
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`
	EaseFactor   float64   `json:"ease_factor"`
}

func FromRecord(r review.Record) *Review {
	return &Review{
		ItemID:       r.ItemID,
		LastReviewed: r.LastReviewed,
		NextReview:   r.NextReview,
		IntervalDays: r.IntervalDays,
		Repetitions:  r.Repetitions,
		EaseFactor:   r.EaseFactor,
	}
}

func FromRecords(records []review.Record) []*Review {
	reviews := make([]*Review, 0, len(records))
	for _, r := range records {
		reviews = append(reviews, FromRecord(r))
	}
	return reviews
}

func (r *Review) Record() review.Record {
	return review.Record{
		ItemID:       r.ItemID,
		LastReviewed: r.LastReviewed,
		NextReview:   r.NextReview,
		IntervalDays: r.IntervalDays,
		Repetitions:  r.Repetitions,
		EaseFactor:   r.EaseFactor,
	}
}

// ListDueReviewsRequest asks for the queue at Now, or at the server's clock when Now is nil.
type ListDueReviewsRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

type ListDueReviewsResponse struct {
	Reviews    []*Review `json:"reviews"`
	DueReviews []*Review `json:"due_reviews"`
	TotalCount int       `json:"total_count"`
	DueCount   int       `json:"due_count"`
}

type GradeReviewRequest struct {
	ItemID  string `json:"item_id" validate:"required"`
	Quality *int   `json:"quality" validate:"required,min=0,max=5"`
}

type GradeReviewResponse struct {
	Review *Review `json:"review"`
}
