package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "DB_DSN", "LOG_LEVEL", "LOG_PRETTY", "CORS_ORIGINS", "GRADING_NUMERIC_TOLERANCE", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" || cfg.LogLevel != "info" || !cfg.LogPretty {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.NumericTolerance >= 0 {
		t.Fatalf("numeric tolerance enabled by default: %v", cfg.NumericTolerance)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout = %v", cfg.ShutdownTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("GRADING_NUMERIC_TOLERANCE", "0.05")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBDriver != "postgres" || cfg.LogPretty {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %q", cfg.CORSOrigins)
	}
	if cfg.NumericTolerance != 0.05 || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("parsed values wrong: %+v", cfg)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"GRADING_NUMERIC_TOLERANCE": "-1",
		"SHUTDOWN_TIMEOUT":          "soon",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%q accepted", k, v)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9191\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "warn") // set in the environment, so the file must not override it
	os.Unsetenv("HTTP_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9191" {
		t.Fatalf("HTTP_ADDR = %q, want value from .env", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LOG_LEVEL = %q, want environment value", cfg.LogLevel)
	}
}
