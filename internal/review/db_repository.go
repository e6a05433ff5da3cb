package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/recall/internal/database"
)

const reviewColumns = "item_id, last_reviewed, next_review, interval_days, repetitions, ease_factor"

// DBRepository implements Store on the reviews table of MySQL or SQLite.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Get returns the record for itemID, or nil if not found.
func (r *DBRepository) Get(ctx context.Context, itemID string) (*Record, error) {
	var record Record
	err := r.db.GetContext(ctx, &record,
		"SELECT "+reviewColumns+" FROM reviews WHERE item_id = ?", itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load review %s: %w", itemID, err)
	}
	return &record, nil
}

// Upsert inserts record or replaces every column of the existing row.
func (r *DBRepository) Upsert(ctx context.Context, record Record) error {
	if err := ValidateItemID(record.ItemID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.upsertQuery(), upsertArgs(record)...); err != nil {
		return fmt.Errorf("upsert review %s: %w", record.ItemID, err)
	}
	return nil
}

// BatchUpsert writes all records in a single transaction.
func (r *DBRepository) BatchUpsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	query := r.upsertQuery()
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare review upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, record := range records {
			if err := ValidateItemID(record.ItemID); err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, upsertArgs(record)...); err != nil {
				return fmt.Errorf("upsert review %s: %w", record.ItemID, err)
			}
		}
		return nil
	})
}

// ListAll returns all records ordered by next review, then item id.
func (r *DBRepository) ListAll(ctx context.Context) ([]Record, error) {
	records := []Record{}
	if err := r.db.SelectContext(ctx, &records,
		"SELECT "+reviewColumns+" FROM reviews ORDER BY next_review, item_id"); err != nil {
		return nil, fmt.Errorf("load all reviews: %w", err)
	}
	return records, nil
}

func (r *DBRepository) upsertQuery() string {
	const insert = "INSERT INTO reviews (" + reviewColumns + ") VALUES (?, ?, ?, ?, ?, ?)"
	if r.db.DriverName() == database.DriverSQLite {
		return insert + ` ON CONFLICT(item_id) DO UPDATE SET
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			ease_factor = excluded.ease_factor`
	}
	return insert + ` ON DUPLICATE KEY UPDATE
			last_reviewed = VALUES(last_reviewed),
			next_review = VALUES(next_review),
			interval_days = VALUES(interval_days),
			repetitions = VALUES(repetitions),
			ease_factor = VALUES(ease_factor)`
}

func upsertArgs(record Record) []interface{} {
	return []interface{}{
		record.ItemID,
		record.LastReviewed.UTC(),
		record.NextReview.UTC(),
		record.IntervalDays,
		record.Repetitions,
		record.EaseFactor,
	}
}
