// Package db opens the store connection and applies schema migrations.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/kfz-werkstatt/internal/config"
)

// Open connects to the configured database. Postgres connections are retried
// a few times to give the server time to start.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true}

	switch cfg.Driver {
	case "postgres":
		var db *gorm.DB
		var err error
		for i := 0; i < 5; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				break
			}
			log.Warn("database connection failed, retrying",
				zap.Int("attempt", i+1), zap.Error(err))
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("connected to database",
			zap.String("driver", "postgres"), zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port), zap.String("dbname", cfg.DBName))
		return db, nil
	case "sqlite", "":
		db, err := OpenSQLite(cfg.DSN(), gcfg)
		if err != nil {
			return nil, err
		}
		log.Info("connected to database", zap.String("driver", "sqlite"), zap.String("path", cfg.Path))
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// OpenSQLite opens a sqlite database with foreign keys enforced and a single
// connection, so that transactions serialise on the file.
func OpenSQLite(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}
	}
	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
