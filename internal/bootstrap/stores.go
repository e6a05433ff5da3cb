package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/recall/internal/activity"
	"github.com/at-ishikawa/recall/internal/config"
	"github.com/at-ishikawa/recall/internal/database"
	"github.com/at-ishikawa/recall/internal/review"
)

// Stores holds the persistence selected by configuration.
type Stores struct {
	Reviews review.Store
	// Activity is nil unless the store is backed by a database.
	Activity *activity.DBRepository
	DB       *sqlx.DB
}

// OpenStores opens the configured review store. Database stores are migrated to the latest schema.
func OpenStores(cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return &Stores{Reviews: review.NewMemoryStore()}, nil
	case config.StoreDriverYAML:
		return &Stores{Reviews: review.NewYAMLRepository(cfg.Store.YAMLDirectory)}, nil
	case config.StoreDriverMySQL, config.StoreDriverSQLite:
		db, err := database.Open(cfg.Store.Driver, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
		version, err := database.Migrate(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database.Migrate() > %w", err)
		}
		slog.Debug("database schema is up to date", "driver", cfg.Store.Driver, "version", version)

		return &Stores{
			Reviews:  review.NewDBRepository(db),
			Activity: activity.NewDBRepository(db),
			DB:       db,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}
}

// Recorder returns the activity recorder, or nil when the store keeps no activity.
func (s *Stores) Recorder() activity.Recorder {
	if s.Activity == nil {
		return nil
	}
	return s.Activity
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
