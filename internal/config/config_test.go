package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Admin.Username != "admin" || cfg.SweepSchedule != "@every 1h" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, `
addr: ":9000"
db: /var/lib/inv.db
admin:
  username: ravnatelj
  email: ravnatelj@sola.si
sweep_schedule: "0 * * * *"
shutdown_timeout: 10s
`)
	t.Setenv(EnvPrefix+"ADDR", ":9100")
	t.Setenv(EnvPrefix+"IMAGE_MAX_DIMENSION", "512")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("expected env to override addr, got %s", cfg.Addr)
	}
	if cfg.DBPath != "/var/lib/inv.db" {
		t.Errorf("expected db from file, got %s", cfg.DBPath)
	}
	if cfg.Admin.Username != "ravnatelj" || cfg.Admin.Email != "ravnatelj@sola.si" {
		t.Errorf("unexpected admin config: %+v", cfg.Admin)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if cfg.ImageMaxDimension != 512 {
		t.Errorf("expected image max 512, got %d", cfg.ImageMaxDimension)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %s", cfg.LogLevel)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvPrefix+"JWT_SECRET=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets variables directly; make sure it is cleared afterwards.
	t.Setenv(EnvPrefix+"JWT_SECRET", "")
	os.Unsetenv(EnvPrefix + "JWT_SECRET")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "from-dotenv" {
		t.Errorf("expected secret from .env, got %q", cfg.JWTSecret)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
	if _, err := Load(writeFile(t, "addr: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := Load(writeFile(t, "log_level: loud")); err == nil {
		t.Error("expected error for unknown log level")
	}

	t.Setenv(EnvPrefix+"SHUTDOWN_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad duration")
	}
}
