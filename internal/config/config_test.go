package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "MIGRATIONS", "DB_SEED", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if got := cfg.Database.DSN(); got != "file:werkstatt.db?_foreign_keys=on" {
		t.Fatalf("unexpected sqlite dsn %q", got)
	}
	if cfg.App.Migrations != MigrateAuto || !cfg.App.Seed {
		t.Fatalf("unexpected app defaults %+v", cfg.App)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("expected json log format, got %s", cfg.Log.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("MIGRATIONS", "SQL")
	t.Setenv("DB_SEED", "no")
	t.Setenv("LOG_FORMAT", "yaml")
	t.Setenv("SERVER_READ_TIMEOUT", "abc")

	cfg := Load()
	want := "host=db port=6543 user=werkstatt password=werkstatt dbname=werkstatt sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
	if cfg.App.Migrations != MigrateSQL {
		t.Fatalf("expected sql migrations, got %s", cfg.App.Migrations)
	}
	if cfg.App.Seed {
		t.Fatalf("expected seeding disabled")
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("unknown format should fall back to json, got %s", cfg.Log.Format)
	}
	if cfg.Server.ReadTimeout != 15 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.Server.ReadTimeout)
	}
}
