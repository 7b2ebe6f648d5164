package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/kfz-werkstatt/internal/config"
	"github.com/diewo77/kfz-werkstatt/internal/db"
	"github.com/diewo77/kfz-werkstatt/internal/logging"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed default settings and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}

	if *migrateOnlyFlag {
		mode := cfg.App.Migrations
		if mode == config.MigrateOff {
			mode = config.MigrateAuto
		}
		if err := migrate(dbConn, mode); err != nil {
			return err
		}
		log.Info("migrations completed", zap.String("mode", mode))
		return nil
	}
	if err := migrate(dbConn, cfg.App.Migrations); err != nil {
		return err
	}

	app, err := NewApp(dbConn, cfg, log)
	if err != nil {
		return err
	}

	if *seedOnlyFlag || cfg.App.Seed {
		n, err := app.settings.SeedDefaults(context.Background())
		if err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
		log.Info("default settings seeded", zap.Int64("inserted", n))
		if *seedOnlyFlag {
			return nil
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  config.Timeout(cfg.Server.ReadTimeout),
		WriteTimeout: config.Timeout(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Timeout(cfg.Server.IdleTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

func migrate(dbConn *gorm.DB, mode string) error {
	switch mode {
	case config.MigrateSQL:
		return db.MigrateSQL(dbConn)
	case config.MigrateOff:
		return nil
	default:
		return db.Migrate(dbConn)
	}
}
