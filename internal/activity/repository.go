package activity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBRepository stores activity logs in the activity_logs table.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Record inserts log and sets its ID.
func (r *DBRepository) Record(ctx context.Context, log *Log) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (type, title, item_id, quality, interval_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		log.Type, log.Title, log.ItemID, log.Quality, log.IntervalDays, log.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get activity log insert ID: %w", err)
	}
	log.ID = id
	return nil
}

// FindRecent returns up to limit logs, newest first.
func (r *DBRepository) FindRecent(ctx context.Context, limit int) ([]Log, error) {
	logs := []Log{}
	if err := r.db.SelectContext(ctx, &logs,
		"SELECT id, type, title, item_id, quality, interval_days, created_at FROM activity_logs ORDER BY created_at DESC, id DESC LIMIT ?",
		limit); err != nil {
		return nil, fmt.Errorf("load recent activity logs: %w", err)
	}
	return logs, nil
}
