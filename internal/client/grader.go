package client

import (
	"context"
	"time"

	apiv1 "github.com/at-ishikawa/recall/internal/api/v1"
	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/session"
)

// Grader runs the review workflow on a remote server.
type Grader struct {
	client *Client
}

func NewGrader(client *Client) *Grader {
	return &Grader{client: client}
}

func (g *Grader) Grade(ctx context.Context, itemID string, quality review.Quality) (review.Record, error) {
	res, err := g.client.GradeReview(ctx, itemID, quality)
	if err != nil {
		return review.Record{}, err
	}
	return res.Record(), nil
}

// Due asks the server for the queue at now; a zero now leaves the time to the server.
func (g *Grader) Due(ctx context.Context, now time.Time) (*session.DueSummary, error) {
	var at *time.Time
	if !now.IsZero() {
		at = &now
	}
	res, err := g.client.ListDueReviews(ctx, at)
	if err != nil {
		return nil, err
	}
	return &session.DueSummary{
		Reviews:    toRecords(res.Reviews),
		DueReviews: toRecords(res.DueReviews),
		TotalCount: res.TotalCount,
		DueCount:   res.DueCount,
	}, nil
}

func toRecords(reviews []*apiv1.Review) []review.Record {
	records := make([]review.Record, 0, len(reviews))
	for _, r := range reviews {
		if r == nil {
			continue
		}
		records = append(records, r.Record())
	}
	return records
}
