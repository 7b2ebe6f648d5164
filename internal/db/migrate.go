package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/diewo77/kfz-werkstatt/internal/models"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// requiredTables must exist after any migration path.
var requiredTables = []string{"settings", "customers", "vehicles", "products", "services", "estimates", "estimate_items", "invoices", "invoice_items", "number_sequences"}

// Migrate applies gorm AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return checkTables(db)
}

// MigrateSQL applies the embedded versioned SQL migrations with golang-migrate.
// Only the sqlite dialect ships SQL files; postgres uses AutoMigrate.
func MigrateSQL(db *gorm.DB) error {
	if db.Dialector.Name() != "sqlite" {
		return fmt.Errorf("sql migrations are only available for sqlite, got %s", db.Dialector.Name())
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	src, err := iofs.New(sqliteMigrations, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	// m is not closed: the driver would close the shared *sql.DB.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sql migrations: %w", err)
	}
	return checkTables(db)
}

func checkTables(db *gorm.DB) error {
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
