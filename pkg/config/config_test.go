package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8082/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Search.Debounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %v", cfg.Search.Debounce)
	}
	if cfg.Session.Backend != SessionBackendFile {
		t.Fatalf("expected file session backend, got %q", cfg.Session.Backend)
	}
	if !cfg.Server.DefaultBalance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected default balance %s", cfg.Server.DefaultBalance)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvBackendBaseURL, "http://shop.test/api/v1")
	t.Setenv(EnvBackendTimeout, "3s")
	t.Setenv(EnvSearchDebounce, "250ms")
	t.Setenv(EnvSessionProfile, "work")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Backend.BaseURL != "http://shop.test/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Backend.Timeout)
	}
	if cfg.Search.Debounce != 250*time.Millisecond {
		t.Fatalf("unexpected debounce %v", cfg.Search.Debounce)
	}
	if cfg.Session.Profile != "work" {
		t.Fatalf("unexpected profile %q", cfg.Session.Profile)
	}
}

func TestLoad_RedisSessionRequiresURL(t *testing.T) {
	t.Setenv(EnvSessionBackend, SessionBackendRedis)
	if _, err := Load(); err == nil {
		t.Fatal("expected redis session backend without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv(EnvDBDriver, "mysql")
	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver to fail")
	}
}

func TestValidateServerRequiresSecret(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected missing jwt secret to fail")
	}
	cfg.JWT.Secret = "secret"
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionFilePath(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	s := SessionConfig{Profile: "work"}
	if got := s.FilePath(); got != filepath.Join(base, "storefront", "sessions", "work.yaml") {
		t.Fatalf("unexpected session path %q", got)
	}
	s.Path = "/tmp/custom.yaml"
	if got := s.FilePath(); got != "/tmp/custom.yaml" {
		t.Fatalf("explicit path should win, got %q", got)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() || devConfig.IsProd() {
		t.Fatalf("unexpected helpers for %q", devConfig.Env)
	}
	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
