package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jala-community/jala-match/internal/config"
	"github.com/jala-community/jala-match/pkg/payments"
	"github.com/jala-community/jala-match/pkg/server"
	"github.com/jala-community/jala-match/pkg/store"
	"github.com/jala-community/jala-match/pkg/store/memstore"
	"github.com/jala-community/jala-match/pkg/store/postgres"
	"github.com/jala-community/jala-match/pkg/store/sheets"
	"github.com/jala-community/jala-match/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	store  store.Store
	logger *zap.Logger
}

var (
	env        string
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jala-match",
		Short: "Jala Match - community musician matchmaking API",
		Long:  `API service connecting volunteer musicians with committees requesting Feast and Holy Day music, with optional paid bookings.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "prod", "Environment name used for log files")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: jala_config.yaml in cwd or home)")

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the persistence backend
func initApp(ctx context.Context) error {
	logger, err := logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return err
	}

	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app = &App{cfg: cfg, store: st, logger: logger}
	return nil
}

// buildStore selects the backend by deployment configuration. Missing
// backend settings install an unconfigured store so the process still
// serves requests with a setup message instead of refusing to boot.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if msg := cfg.BackendMissing(); msg != "" {
		logger.Warn("backend not configured", zap.String("backend", cfg.Backend), zap.String("detail", msg))
		return store.Unconfigured(msg), nil
	}

	switch cfg.Backend {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("using postgres backend")
		return db, nil
	case "sheets":
		client, err := sheets.NewClient(ctx, cfg.Sheets.ServiceAccountEmail, cfg.Sheets.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		logger.Info("using sheets backend", zap.String("spreadsheetID", cfg.Sheets.SpreadsheetID))
		return sheets.NewStore(client, cfg.Sheets.SpreadsheetID), nil
	case "memory":
		logger.Info("using in-memory backend")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	defer app.store.Close()

	var sessions payments.SessionClient
	if app.cfg.Stripe.SecretKey != "" {
		sessions = payments.NewStripeClient(app.cfg.Stripe.SecretKey)
	} else {
		app.logger.Warn("stripe not configured; payment endpoints will report missing configuration")
	}
	reconciler := payments.NewReconciler(app.store, sessions, app.cfg.Stripe.WebhookSecret, app.logger)

	mux := http.NewServeMux()
	server.New(app.store, reconciler, app.logger).Register(mux)

	httpServer := &http.Server{
		Addr:              app.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("listening", zap.String("addr", app.cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
