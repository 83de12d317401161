package env

import (
	"path/filepath"
	"testing"
)

func TestGetFallsBack(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_VALUE", "")
	if got := Get("STOREFRONT_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("STOREFRONT_TEST_VALUE", "set")
	if got := Get("STOREFRONT_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestConfigDirHonoursXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	if got := ConfigDir("storefront"); got != filepath.Join(base, "storefront") {
		t.Fatalf("unexpected config dir %q", got)
	}
}
