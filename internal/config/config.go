// Package config handles map view configuration loading and management.
package config

import (
	"github.com/e555321e/cladeview/internal/engine/camera"
)

// Config holds all map view settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	World   WorldConfig   `yaml:"world"`
	Camera  camera.State  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	ShowFPS    bool   `yaml:"show_fps"`
}

// WorldConfig holds the demo world generation settings.
type WorldConfig struct {
	Seed    int64 `yaml:"seed"`
	Columns int   `yaml:"columns"`
	Rows    int   `yaml:"rows"`
	Species int   `yaml:"species"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values. The camera snapshot
// defaults to the zero value, which means "no saved position".
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Title:      "cladeview",
			Fullscreen: false,
			ShowFPS:    false,
		},
		World: WorldConfig{
			Seed:    42,
			Columns: 100,
			Rows:    60,
			Species: 8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// HasCamera reports whether the config carries a saved camera snapshot.
// A zero zoom marks the snapshot as unset.
func (c *Config) HasCamera() bool {
	return c.Camera.Zoom != 0
}
