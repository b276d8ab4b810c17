package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vitcanteen/canteen-backend/internal/cache"
	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/database"
	"github.com/vitcanteen/canteen-backend/internal/logging"
	"github.com/vitcanteen/canteen-backend/internal/repository"
	"github.com/vitcanteen/canteen-backend/internal/seed"
	"github.com/vitcanteen/canteen-backend/internal/server"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "canteen",
		Short:         "Campus canteen ordering backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate, seed and run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, db, err := bootstrap()
				if err != nil {
					return err
				}
				return database.Close(db)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Provision the demo accounts and the menu",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, db, err := bootstrap()
				if err != nil {
					return err
				}
				defer database.Close(db)
				return seedAll(cmd.Context(), cfg, db)
			},
		},
	)
	return root
}

// bootstrap loads config, connects and migrates. Errors are logged before
// they are returned.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err.Error())
		return nil, nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err.Error())
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err.Error())
		_ = database.Close(db)
		return nil, nil, err
	}
	slog.Info("database migrated")
	return cfg, db, nil
}

func seedAll(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	users := repository.NewUserRepository(db)
	auth := services.NewAuthService(users, cfg)

	if _, err := seed.Users(ctx, users, auth, cfg, seed.Students); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := seed.Catalog(ctx, repository.NewMenuRepository(db), seed.Menu); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	return nil
}

func serve(ctx context.Context) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}

	if err := seedAll(ctx, cfg, db); err != nil {
		slog.Error("seeding failed", "error", err.Error())
		_ = database.Close(db)
		return err
	}

	// ERROR records are also persisted to system_logs.
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, cfg.LogLevel),
		dbLogHandler,
	)))

	cleanup, err := logging.StartCleanup(db, cfg.LogRetentionDays)
	if err != nil {
		slog.Error("log cleanup scheduling failed", "error", err.Error())
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err.Error())
		}
	}

	var snapshots cache.OrderCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			// Polling still works against the database.
			slog.Warn("order cache disabled", "error", err.Error())
		} else {
			defer rdb.Close()
			snapshots = cache.NewRedisOrderCache(rdb, cfg.OrderCacheTTL)
			slog.Info("order cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.OrderCacheTTL.String())
		}
	}

	app, err := server.New(cfg, db, snapshots)
	if err != nil {
		slog.Error("server setup failed", "error", err.Error())
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-listenErr:
		if err != nil {
			slog.Error("server failed to start", "error", err.Error())
		}
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err.Error())
	}

	<-cleanup.Stop().Done()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err.Error())
	}

	slog.Info("server stopped")
	return nil
}
