// Package config resolves runtime configuration from the environment.
//
// Defaults mirror the production landing page: 2 questions per submitter,
// 3 per device, 140-character questions, 1.5s minimum placeholder display.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Dir is where persistent Q&A state lives (default ~/.condeck).
	Dir string `env:"CONDECK_DIR"`

	// GuestsFile overrides the embedded roster.
	GuestsFile string `env:"CONDECK_GUESTS"`

	// SinkURL is the outbound notification endpoint. Empty disables the sink;
	// the local store is authoritative either way.
	SinkURL string `env:"CONDECK_SINK_URL"`

	UserLimit      int `env:"CONDECK_USER_LIMIT" envDefault:"2"`
	DeviceLimit    int `env:"CONDECK_DEVICE_LIMIT" envDefault:"3"`
	MaxQuestionLen int `env:"CONDECK_MAX_QUESTION_LEN" envDefault:"140"`

	// Lazy loader timings.
	MinPlaceholder time.Duration `env:"CONDECK_LAZY_MIN_DISPLAY" envDefault:"1500ms"`
	LazyFallback   time.Duration `env:"CONDECK_LAZY_FALLBACK" envDefault:"2s"`
	// LazyMarginRows is how many rows ahead of the viewport a placeholder
	// starts loading (the proximity margin).
	LazyMarginRows int `env:"CONDECK_LAZY_MARGIN_ROWS" envDefault:"4"`

	// ImagesDir is where portrait files referenced by the feed are looked up.
	ImagesDir string `env:"CONDECK_IMAGES_DIR" envDefault:"images"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Dir = filepath.Join(home, ".condeck")
	}
	return cfg, nil
}
