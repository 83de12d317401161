package env

import (
	"os"
	"path/filepath"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// ConfigDir returns the per-user configuration directory for app, falling back
// to the working directory when the platform does not expose one.
func ConfigDir(app string) string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, app)
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, app)
	}
	return filepath.Join(".", "."+app)
}
