package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	apiv1 "github.com/at-ishikawa/recall/internal/api/v1"
	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/session"
)

type failingStore struct {
	review.Store
}

func (failingStore) Get(context.Context, string) (*review.Record, error) {
	return nil, nil
}

func (failingStore) Upsert(context.Context, review.Record) error {
	return errors.New("database is down")
}

func (failingStore) ListAll(context.Context) ([]review.Record, error) {
	return nil, errors.New("database is down")
}

type canceledStore struct {
	review.Store
}

func (canceledStore) Get(context.Context, string) (*review.Record, error) {
	return nil, context.Canceled
}

func (canceledStore) ListAll(context.Context) ([]review.Record, error) {
	return nil, context.DeadlineExceeded
}

func newTestHandler(t *testing.T, store review.Store) *ReviewHandler {
	t.Helper()
	service := session.NewService(store, nil, session.Options{UpsertAttempts: 2, UpsertBackoff: time.Millisecond})
	handler, err := NewReviewHandler(service)
	require.NoError(t, err)
	return handler
}

func intPtr(v int) *int {
	return &v
}

func TestReviewHandler_GradeReview(t *testing.T) {
	tests := []struct {
		name     string
		store    review.Store
		request  *apiv1.GradeReviewRequest
		wantCode connect.Code
		wantErr  bool
	}{
		{
			name:    "grades a new item",
			store:   review.NewMemoryStore(),
			request: &apiv1.GradeReviewRequest{ItemID: "two-sum", Quality: intPtr(4)},
		},
		{
			name:    "accepts quality zero",
			store:   review.NewMemoryStore(),
			request: &apiv1.GradeReviewRequest{ItemID: "two-sum", Quality: intPtr(0)},
		},
		{
			name:     "returns INVALID_ARGUMENT when quality is missing",
			store:    review.NewMemoryStore(),
			request:  &apiv1.GradeReviewRequest{ItemID: "two-sum"},
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
		{
			name:     "returns INVALID_ARGUMENT when quality is above 5",
			store:    review.NewMemoryStore(),
			request:  &apiv1.GradeReviewRequest{ItemID: "two-sum", Quality: intPtr(6)},
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
		{
			name:     "returns INVALID_ARGUMENT when item id is empty",
			store:    review.NewMemoryStore(),
			request:  &apiv1.GradeReviewRequest{Quality: intPtr(3)},
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
		{
			name:     "returns INVALID_ARGUMENT when item id is a path",
			store:    review.NewMemoryStore(),
			request:  &apiv1.GradeReviewRequest{ItemID: "../two-sum", Quality: intPtr(3)},
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
		{
			name:     "returns UNAVAILABLE when the store fails",
			store:    failingStore{},
			request:  &apiv1.GradeReviewRequest{ItemID: "two-sum", Quality: intPtr(5)},
			wantCode: connect.CodeUnavailable,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, tt.store)

			resp, err := handler.GradeReview(context.Background(), connect.NewRequest(tt.request))
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, resp)
				connectErr, ok := err.(*connect.Error)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, connectErr.Code())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.request.ItemID, resp.Msg.Review.ItemID)
			assert.Equal(t, 1, resp.Msg.Review.IntervalDays)
			assert.Equal(t, resp.Msg.Review.LastReviewed.AddDate(0, 0, 1), resp.Msg.Review.NextReview)
		})
	}
}

func TestReviewHandler_GradeReview_FieldViolations(t *testing.T) {
	handler := newTestHandler(t, review.NewMemoryStore())

	_, err := handler.GradeReview(context.Background(), connect.NewRequest(&apiv1.GradeReviewRequest{}))
	require.Error(t, err)

	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	require.Len(t, connectErr.Details(), 1)

	value, err := connectErr.Details()[0].Value()
	require.NoError(t, err)
	badRequest, ok := value.(*errdetails.BadRequest)
	require.True(t, ok)

	fields := make([]string, 0, len(badRequest.GetFieldViolations()))
	for _, v := range badRequest.GetFieldViolations() {
		fields = append(fields, v.GetField())
	}
	assert.Equal(t, []string{"item_id", "quality"}, fields)
}

func TestReviewHandler_ListDueReviews(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	store := review.NewMemoryStore(
		review.Record{ItemID: "later", NextReview: now.AddDate(0, 0, 2), IntervalDays: 6, Repetitions: 2, EaseFactor: 2.5},
		review.Record{ItemID: "due", NextReview: now.Add(-time.Hour), IntervalDays: 1, Repetitions: 1, EaseFactor: 2.5},
	)

	t.Run("at an explicit time", func(t *testing.T) {
		handler := newTestHandler(t, store)
		resp, err := handler.ListDueReviews(context.Background(), connect.NewRequest(&apiv1.ListDueReviewsRequest{Now: &now}))
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Msg.TotalCount)
		assert.Equal(t, 1, resp.Msg.DueCount)
		require.Len(t, resp.Msg.Reviews, 2)
		assert.Equal(t, "due", resp.Msg.Reviews[0].ItemID)
		assert.Equal(t, "later", resp.Msg.Reviews[1].ItemID)
		require.Len(t, resp.Msg.DueReviews, 1)
		assert.Equal(t, "due", resp.Msg.DueReviews[0].ItemID)
	})

	t.Run("returns UNAVAILABLE when the store fails", func(t *testing.T) {
		handler := newTestHandler(t, failingStore{})
		_, err := handler.ListDueReviews(context.Background(), connect.NewRequest(&apiv1.ListDueReviewsRequest{}))
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	})
}

func TestReviewHandler_ContextErrors(t *testing.T) {
	handler := newTestHandler(t, canceledStore{})

	_, err := handler.GradeReview(context.Background(), connect.NewRequest(&apiv1.GradeReviewRequest{
		ItemID:  "two-sum",
		Quality: intPtr(4),
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeCanceled, connect.CodeOf(err))

	_, err = handler.ListDueReviews(context.Background(), connect.NewRequest(&apiv1.ListDueReviewsRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeDeadlineExceeded, connect.CodeOf(err))
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{name: "invalid quality", err: review.ErrInvalidQuality, want: connect.CodeInvalidArgument},
		{name: "invalid item id", err: review.ErrInvalidItemID, want: connect.CodeInvalidArgument},
		{name: "store unavailable", err: session.ErrStoreUnavailable, want: connect.CodeUnavailable},
		{
			name: "canceled while the store was failing",
			err:  fmt.Errorf("%w: %w", session.ErrStoreUnavailable, context.Canceled),
			want: connect.CodeCanceled,
		},
		{name: "deadline", err: context.DeadlineExceeded, want: connect.CodeDeadlineExceeded},
		{name: "unknown", err: errors.New("boom"), want: connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}
}

func TestNewReviewServiceHandler(t *testing.T) {
	handler := newTestHandler(t, review.NewMemoryStore())
	path, h := NewReviewServiceHandler(handler)
	assert.Equal(t, "/recall.v1.ReviewService/", path)

	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Run("connect client round trip", func(t *testing.T) {
		grade := connect.NewClient[apiv1.GradeReviewRequest, apiv1.GradeReviewResponse](
			srv.Client(), srv.URL+apiv1.ReviewServiceGradeReviewProcedure, connect.WithCodec(apiv1.JSONCodec{}),
		)
		resp, err := grade.CallUnary(context.Background(), connect.NewRequest(&apiv1.GradeReviewRequest{
			ItemID:  "valid-anagram",
			Quality: intPtr(5),
		}))
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Msg.Review.Repetitions)
		assert.InDelta(t, 2.6, resp.Msg.Review.EaseFactor, 1e-9)

		list := connect.NewClient[apiv1.ListDueReviewsRequest, apiv1.ListDueReviewsResponse](
			srv.Client(), srv.URL+apiv1.ReviewServiceListDueReviewsProcedure, connect.WithCodec(apiv1.JSONCodec{}),
		)
		later := resp.Msg.Review.NextReview
		listResp, err := list.CallUnary(context.Background(), connect.NewRequest(&apiv1.ListDueReviewsRequest{Now: &later}))
		require.NoError(t, err)
		assert.Equal(t, 1, listResp.Msg.DueCount)
	})

	t.Run("plain JSON post", func(t *testing.T) {
		resp, err := srv.Client().Post(
			srv.URL+apiv1.ReviewServiceGradeReviewProcedure,
			"application/json",
			strings.NewReader(`{"item_id":"two-sum","quality":9}`),
		)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown procedure", func(t *testing.T) {
		resp, err := srv.Client().Post(srv.URL+"/recall.v1.ReviewService/Unknown", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
