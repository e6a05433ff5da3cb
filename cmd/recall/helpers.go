package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/recall/internal/bootstrap"
	"github.com/at-ishikawa/recall/internal/cli"
	"github.com/at-ishikawa/recall/internal/client"
	"github.com/at-ishikawa/recall/internal/config"
	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/session"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func openStores() (*bootstrap.Stores, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	stores, err := bootstrap.OpenStores(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open stores: %w", err)
	}
	return stores, cfg, nil
}

// openGrader grades against serverURL when it is set and against the configured store otherwise.
func openGrader(serverURL string) (cli.Grader, func(), error) {
	if serverURL != "" {
		slog.Debug("using remote server", "url", serverURL)
		return client.NewGrader(client.NewClient(serverURL, 2)), func() {}, nil
	}

	stores, cfg, err := openStores()
	if err != nil {
		return nil, nil, err
	}
	service := session.NewService(stores.Reviews, stores.Recorder(), session.Options{
		UpsertAttempts: cfg.Workflow.UpsertAttempts,
		UpsertBackoff:  cfg.Workflow.UpsertBackoff(),
	})
	return service, func() { _ = stores.Close() }, nil
}

func addServerFlag(flags *pflag.FlagSet, target *string) {
	flags.StringVar(target, "server", "", "URL of a recall server; the local store is used when empty")
}

func parseQualityArg(arg string) (review.Quality, error) {
	quality, err := review.ParseQuality(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q (want 0-5 or again/hard/good/easy): %w", arg, err)
	}
	return quality, nil
}

// parseTimeFlag accepts RFC3339, a date, or a unix timestamp. An empty value is the zero time.
func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(seconds, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 (2006-01-02T15:04:05Z07:00) or a date (2006-01-02)", value)
}
