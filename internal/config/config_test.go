package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONDECK_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserLimit != 2 || cfg.DeviceLimit != 3 || cfg.MaxQuestionLen != 140 {
		t.Fatalf("limits = %d/%d/%d", cfg.UserLimit, cfg.DeviceLimit, cfg.MaxQuestionLen)
	}
	if cfg.MinPlaceholder != 1500*time.Millisecond {
		t.Fatalf("MinPlaceholder = %v", cfg.MinPlaceholder)
	}
	if cfg.LazyFallback != 2*time.Second {
		t.Fatalf("LazyFallback = %v", cfg.LazyFallback)
	}
	if cfg.LazyMarginRows != 4 {
		t.Fatalf("LazyMarginRows = %d", cfg.LazyMarginRows)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONDECK_DIR", "/tmp/deck")
	t.Setenv("CONDECK_USER_LIMIT", "5")
	t.Setenv("CONDECK_LAZY_MIN_DISPLAY", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dir != "/tmp/deck" {
		t.Fatalf("Dir = %q", cfg.Dir)
	}
	if cfg.UserLimit != 5 {
		t.Fatalf("UserLimit = %d", cfg.UserLimit)
	}
	if cfg.MinPlaceholder != 250*time.Millisecond {
		t.Fatalf("MinPlaceholder = %v", cfg.MinPlaceholder)
	}
}
