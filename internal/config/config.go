package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.parley/config.toml.
type Config struct {
	DefaultProfile string    `toml:"default_profile"`
	Channels       Channels  `toml:"channels"`
	Coalescer      Coalescer `toml:"coalescer"`
	Layout         Layout    `toml:"layout"`
}

// Channels holds the endpoints of the three push channels.
type Channels struct {
	BackendURL  string `toml:"backend_url"`
	BusURL      string `toml:"bus_url"`
	RealtimeURL string `toml:"realtime_url"`
	ProfileURL  string `toml:"profile_url"`
}

// Coalescer tunes the batched profile fetch coalescer.
type Coalescer struct {
	DebounceMs   int `toml:"debounce_ms"`
	BatchCeiling int `toml:"batch_ceiling"`
}

// Layout tunes the meeting tile layout engine.
type Layout struct {
	MinTileWidth int     `toml:"min_tile_width"`
	TileAspect   float64 `toml:"tile_aspect"`
}

// Default returns a config with usable defaults for every tunable.
func Default() *Config {
	return &Config{
		DefaultProfile: "main",
		Coalescer: Coalescer{
			DebounceMs:   50,
			BatchCeiling: 10,
		},
		Layout: Layout{
			MinTileWidth: 320,
			TileAspect:   16.0 / 9.0,
		},
	}
}

// Load reads config from the given path, applying defaults for any
// tunable left unset. Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.Coalescer.DebounceMs <= 0 {
		cfg.Coalescer.DebounceMs = 50
	}
	if cfg.Coalescer.BatchCeiling <= 0 {
		cfg.Coalescer.BatchCeiling = 10
	}
	if cfg.Layout.MinTileWidth <= 0 {
		cfg.Layout.MinTileWidth = 320
	}
	if cfg.Layout.TileAspect <= 0 {
		cfg.Layout.TileAspect = 16.0 / 9.0
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
