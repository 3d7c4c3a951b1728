package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mrs-ressorts/portail/auth"
	"github.com/mrs-ressorts/portail/internal/backend"
	"github.com/mrs-ressorts/portail/internal/config"
	"github.com/mrs-ressorts/portail/internal/logging"
	"github.com/mrs-ressorts/portail/internal/metrics"
	"github.com/mrs-ressorts/portail/internal/store/mongostore"
	"github.com/mrs-ressorts/portail/internal/store/sqlstore"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run SQL store migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the SQL store with demo data and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := logging.New(cfg.App.Dev, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Auth.JWTSecret != "" {
		auth.SetSecret(cfg.Auth.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx := context.Background()

	if *migrateOnlyFlag || *seedOnlyFlag {
		return runSQLTask(ctx, cfg, logger)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	mc := metrics.New()
	api, err := backend.New(cfg.Backend.URL, cfg.Backend.Timeout,
		backend.WithRecorder(mc),
		backend.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(cfg, logger, store, api, mc),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("backend", cfg.Backend.URL),
			zap.Bool("dev", cfg.App.Dev),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
		logger.Info("shutdown signal received")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
	return nil
}

// openStore connects the configured store. SQL stores are migrated and
// optionally seeded on startup.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	sc := cfg.Store
	if sc.Driver == config.DriverMongo {
		connectCtx, cancel := context.WithTimeout(ctx, sc.ConnectTimeout)
		defer cancel()
		logger.Info("connecting to mongo", zap.String("database", sc.MongoDatabase))
		ms, err := mongostore.Connect(connectCtx, mongostore.Config{
			URI:             sc.MongoURI,
			Database:        sc.MongoDatabase,
			Collections:     sc.Collections,
			UsersCollection: sc.UsersCollection,
			ConnectTimeout:  sc.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}

	store, err := openSQL(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if sc.Seed {
		if err := store.Seed(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return store, nil
}

func openSQL(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlstore.Store, error) {
	sc := cfg.Store
	logger.Info("connecting to database", zap.String("driver", sc.Driver), zap.String("dsn", sqlstore.MaskDSN(sc.DSN)))
	store, err := sqlstore.Open(sc.Driver, sc.DSN, sc.Debug)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	// Versioned SQL migrations are postgres-only; AutoMigrate is the fallback.
	if sc.Migrations && sc.Driver == config.DriverPostgres {
		err = sqlstore.RunSQLMigrations(sc.MigrationsDir, sc.DSN)
	} else {
		err = store.AutoMigrate()
	}
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return store, nil
}

// runSQLTask handles -migrate-only and -seed-only.
func runSQLTask(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Store.Driver == config.DriverMongo {
		return fmt.Errorf("-migrate-only and -seed-only need a SQL store driver")
	}
	store, err := openSQL(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()
	logger.Info("migrations completed")

	if *seedOnlyFlag {
		if err := store.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seeding completed")
	}
	return nil
}
