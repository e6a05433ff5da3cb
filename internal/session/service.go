// Package session runs the review workflow: grading an item and building the due queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/at-ishikawa/recall/internal/activity"
	"github.com/at-ishikawa/recall/internal/review"
)

// ErrStoreUnavailable means the review store failed; the request can be retried.
var ErrStoreUnavailable = errors.New("session: review store unavailable")

type Options struct {
	// UpsertAttempts is the number of times a graded record is written before giving up.
	UpsertAttempts uint
	UpsertBackoff  time.Duration
}

// DueSummary is the review queue at a point in time.
type DueSummary struct {
	Reviews    []review.Record
	DueReviews []review.Record
	TotalCount int
	DueCount   int
}

// Service grades items against a review.Store.
// Grades of the same item are serialized; grades of different items run independently.
type Service struct {
	store    review.Store
	recorder activity.Recorder
	opts     Options
	locks    *itemLocks
	now      func() time.Time
}

// NewService creates a Service. recorder may be nil when the store has no activity feed.
func NewService(store review.Store, recorder activity.Recorder, opts Options) *Service {
	if opts.UpsertAttempts == 0 {
		opts.UpsertAttempts = 1
	}
	return &Service{
		store:    store,
		recorder: recorder,
		opts:     opts,
		locks:    newItemLocks(),
		now:      time.Now,
	}
}

// Grade schedules itemID with quality and persists the result.
// An item that was never reviewed starts from a seed record.
// The returned record is only reported after the store confirmed the write.
func (s *Service) Grade(ctx context.Context, itemID string, quality review.Quality) (review.Record, error) {
	if err := review.ValidateItemID(itemID); err != nil {
		return review.Record{}, err
	}
	if err := quality.Validate(); err != nil {
		return review.Record{}, err
	}

	unlock := s.locks.lock(itemID)
	defer unlock()

	current, err := s.store.Get(ctx, itemID)
	if err != nil {
		return review.Record{}, storeError(fmt.Sprintf("load review %s", itemID), err)
	}

	now := s.now()
	if current == nil {
		seed := review.NewSeed(itemID, now)
		current = &seed
		slog.Debug("seeding review", "item_id", itemID)
	}

	next := review.Schedule(*current, quality, now)
	if err := s.upsert(ctx, next); err != nil {
		return review.Record{}, err
	}
	slog.Debug("graded review",
		"item_id", itemID,
		"quality", int(quality),
		"repetitions", next.Repetitions,
		"interval_days", next.IntervalDays,
		"ease_factor", next.EaseFactor,
	)

	s.recordActivity(ctx, next, quality)
	return next, nil
}

// Due lists every record and the due subset at now. A zero now means the current time.
func (s *Service) Due(ctx context.Context, now time.Time) (*DueSummary, error) {
	if now.IsZero() {
		now = s.now()
	}
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, storeError("list reviews", err)
	}
	review.SortByNextReview(all)
	due := review.DueItems(all, now)

	return &DueSummary{
		Reviews:    all,
		DueReviews: due,
		TotalCount: len(all),
		DueCount:   len(due),
	}, nil
}

func (s *Service) upsert(ctx context.Context, record review.Record) error {
	err := retry.Do(
		func() error {
			return s.store.Upsert(ctx, record)
		},
		retry.Context(ctx),
		retry.Attempts(s.opts.UpsertAttempts),
		retry.Delay(s.opts.UpsertBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("retrying review upsert", "item_id", record.ItemID, "attempt", n+1, "error", err)
		}),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, review.ErrInvalidItemID) {
		return err
	}
	return storeError(fmt.Sprintf("save review %s", record.ItemID), err)
}

// storeError marks err as ErrStoreUnavailable unless the caller gave up first.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func isRetryable(err error) bool {
	return !errors.Is(err, review.ErrInvalidItemID) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// recordActivity never fails the grade: the review itself is already saved.
func (s *Service) recordActivity(ctx context.Context, record review.Record, quality review.Quality) {
	if s.recorder == nil {
		return
	}
	log := activity.NewReviewLog(record.ItemID, int(quality), record.IntervalDays, record.LastReviewed)
	if err := s.recorder.Record(ctx, log); err != nil {
		slog.Warn("failed to record review activity", "item_id", record.ItemID, "error", err)
	}
}
