package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiv1 "github.com/at-ishikawa/recall/internal/api/v1"
	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/server"
	"github.com/at-ishikawa/recall/internal/session"
)

func newTestServer(t *testing.T, store review.Store) *httptest.Server {
	t.Helper()
	service := session.NewService(store, nil, session.Options{UpsertAttempts: 1})
	handler, err := server.NewReviewHandler(service)
	require.NoError(t, err)

	path, h := server.NewReviewServiceHandler(handler)
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GradeReview(t *testing.T) {
	tests := []struct {
		name           string
		itemID         string
		quality        review.Quality
		wantCode       connect.Code
		wantViolations map[string]string
		wantErr        bool
	}{
		{
			name:    "grades an item",
			itemID:  "two-sum",
			quality: 5,
		},
		{
			name:     "invalid quality",
			itemID:   "two-sum",
			quality:  7,
			wantCode: connect.CodeInvalidArgument,
			wantViolations: map[string]string{
				"quality": "quality must be 5 or less",
			},
			wantErr: true,
		},
		{
			name:     "invalid item id",
			itemID:   "a/b",
			quality:  3,
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, review.NewMemoryStore())
			c := NewClient(srv.URL, 0)

			got, err := c.GradeReview(context.Background(), tt.itemID, tt.quality)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				if tt.wantViolations != nil {
					assert.Equal(t, tt.wantViolations, FieldViolations(err))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.itemID, got.ItemID)
			assert.Equal(t, 1, got.Repetitions)
			assert.Equal(t, 1, got.IntervalDays)
		})
	}
}

func TestClient_ListDueReviews(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	store := review.NewMemoryStore(
		review.Record{ItemID: "b", NextReview: now, IntervalDays: 1, Repetitions: 1, EaseFactor: 2.5},
		review.Record{ItemID: "a", NextReview: now, IntervalDays: 1, Repetitions: 1, EaseFactor: 2.5},
		review.Record{ItemID: "c", NextReview: now.AddDate(0, 0, 1), IntervalDays: 6, Repetitions: 2, EaseFactor: 2.5},
	)
	srv := newTestServer(t, store)
	c := NewClient(srv.URL+"/", 0)

	got, err := c.ListDueReviews(context.Background(), &now)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalCount)
	assert.Equal(t, 2, got.DueCount)
	require.Len(t, got.DueReviews, 2)
	assert.Equal(t, "a", got.DueReviews[0].ItemID)
	assert.Equal(t, "b", got.DueReviews[1].ItemID)
	assert.True(t, now.Equal(got.DueReviews[0].NextReview))
}

func TestClient_ListDueReviews_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiv1.ReviewServiceListDueReviewsProcedure, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"code":"unavailable","message":"session: review store unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"reviews":[],"due_reviews":[],"total_count":0,"due_count":0}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 2)
	got, err := c.ListDueReviews(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, got.TotalCount)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GradeReview_NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":"unavailable","message":"session: review store unavailable"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 3)
	_, err := c.GradeReview(context.Background(), "two-sum", 4)
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	assert.Equal(t, int32(1), calls.Load())

	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, "session: review store unavailable", connectErr.Message())
}

func TestClient_NonConnectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 0)
	_, err := c.ListDueReviews(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
}
