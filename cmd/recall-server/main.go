package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/recall/internal/bootstrap"
	"github.com/at-ishikawa/recall/internal/config"
	"github.com/at-ishikawa/recall/internal/server"
	"github.com/at-ishikawa/recall/internal/session"
)

const shutdownTimeout = 10 * time.Second

var (
	configFile string
	envFile    string
	debugMode  bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recall-server",
		Short:         "Recall review service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	return rootCmd
}

func run(ctx context.Context) error {
	setupLogger(debugMode)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load(%s) > %w", envFile, err)
	}

	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	srv, stores, err := newServer(cfg)
	if err != nil {
		return err
	}
	app.AddShutdownHook(func(context.Context) error {
		return stores.Close()
	})
	app.AddShutdownHook(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func newServer(cfg *config.Config) (*http.Server, *bootstrap.Stores, error) {
	stores, err := bootstrap.OpenStores(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap.OpenStores() > %w", err)
	}

	service := session.NewService(stores.Reviews, stores.Recorder(), session.Options{
		UpsertAttempts: cfg.Workflow.UpsertAttempts,
		UpsertBackoff:  cfg.Workflow.UpsertBackoff(),
	})
	handler, err := server.NewReviewHandler(service)
	if err != nil {
		_ = stores.Close()
		return nil, nil, fmt.Errorf("server.NewReviewHandler() > %w", err)
	}
	path, h := server.NewReviewServiceHandler(handler)

	mux := http.NewServeMux()
	mux.Handle(path, h)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           corsMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}, stores, nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         3600,
	}).Handler(next)
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}
