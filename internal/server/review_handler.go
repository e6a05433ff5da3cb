// Package server provides Connect RPC handlers for the review service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"

	apiv1 "github.com/at-ishikawa/recall/internal/api/v1"
	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/session"
)

// ReviewService is the workflow the handler serves.
type ReviewService interface {
	Grade(ctx context.Context, itemID string, quality review.Quality) (review.Record, error)
	Due(ctx context.Context, now time.Time) (*session.DueSummary, error)
}

// ReviewHandler implements recall.v1.ReviewService.
type ReviewHandler struct {
	service   ReviewService
	validator *requestValidator
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service ReviewService) (*ReviewHandler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	return &ReviewHandler{
		service:   service,
		validator: v,
	}, nil
}

// ListDueReviews returns every review and the ones due at the requested time.
func (h *ReviewHandler) ListDueReviews(
	ctx context.Context,
	req *connect.Request[apiv1.ListDueReviewsRequest],
) (*connect.Response[apiv1.ListDueReviewsResponse], error) {
	var now time.Time
	if req.Msg.Now != nil {
		now = *req.Msg.Now
	}

	summary, err := h.service.Due(ctx, now)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("list due reviews: %w", err))
	}

	return connect.NewResponse(&apiv1.ListDueReviewsResponse{
		Reviews:    apiv1.FromRecords(summary.Reviews),
		DueReviews: apiv1.FromRecords(summary.DueReviews),
		TotalCount: summary.TotalCount,
		DueCount:   summary.DueCount,
	}), nil
}

// GradeReview applies a quality grade to an item and returns its new schedule.
func (h *ReviewHandler) GradeReview(
	ctx context.Context,
	req *connect.Request[apiv1.GradeReviewRequest],
) (*connect.Response[apiv1.GradeReviewResponse], error) {
	if err := h.validator.check(req.Msg); err != nil {
		return nil, err
	}

	record, err := h.service.Grade(ctx, req.Msg.ItemID, review.Quality(*req.Msg.Quality))
	if err != nil {
		return nil, toConnectError(fmt.Errorf("grade review(%s): %w", req.Msg.ItemID, err))
	}

	return connect.NewResponse(&apiv1.GradeReviewResponse{
		Review: apiv1.FromRecord(record),
	}), nil
}

// NewReviewServiceHandler builds the HTTP handler serving h and returns the path to mount it on.
func NewReviewServiceHandler(h *ReviewHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(apiv1.JSONCodec{})}, opts...)

	listDueReviews := connect.NewUnaryHandler(
		apiv1.ReviewServiceListDueReviewsProcedure,
		h.ListDueReviews,
		append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...,
	)
	gradeReview := connect.NewUnaryHandler(
		apiv1.ReviewServiceGradeReviewProcedure,
		h.GradeReview,
		opts...,
	)

	return "/" + apiv1.ReviewServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case apiv1.ReviewServiceListDueReviewsProcedure:
			listDueReviews.ServeHTTP(w, r)
		case apiv1.ReviewServiceGradeReviewProcedure:
			gradeReview.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, review.ErrInvalidQuality), errors.Is(err, review.ErrInvalidItemID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, session.ErrStoreUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
