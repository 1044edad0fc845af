package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpattn/klinik/internal/db"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Import.MaxRows != 5000 {
		t.Fatalf("expected default max rows 5000, got %d", cfg.Import.MaxRows)
	}
	if cfg.Import.ErrorCap != 50 {
		t.Fatalf("expected default error cap 50, got %d", cfg.Import.ErrorCap)
	}
	if cfg.Import.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MiB upload limit, got %d", cfg.Import.MaxUploadBytes)
	}
	if cfg.Database.Driver != db.DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Import.UploadDir == "" {
		t.Fatalf("expected upload dir to fall back to temp dir")
	}
	if !cfg.IsDevAuth() {
		t.Fatalf("expected header identity without jwt secret")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("database:\n  driver: mysql\n  host: db.internal\n  port: 3306\nimport:\n  max_rows: 100\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KLINIK_IMPORT_ERROR_CAP", "7")
	t.Setenv("KLINIK_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Database.Driver != db.DriverMySQL || cfg.Database.Host != "db.internal" || cfg.Database.Port != 3306 {
		t.Fatalf("file values not applied: %+v", cfg.Database)
	}
	if cfg.Import.MaxRows != 100 {
		t.Fatalf("expected max rows 100, got %d", cfg.Import.MaxRows)
	}
	if cfg.Import.ErrorCap != 7 {
		t.Fatalf("expected env error cap 7, got %d", cfg.Import.ErrorCap)
	}
	if cfg.IsDevAuth() {
		t.Fatalf("expected jwt identity when secret is set")
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("KLINIK_DATABASE_DRIVER", "sqlite")

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
