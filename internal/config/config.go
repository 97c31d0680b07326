// Package config loads tracker configuration from a yaml file with viper,
// applying defaults for anything unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the full tracker configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Overlay OverlayConfig `mapstructure:"overlay"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// EngineConfig carries the reconciliation engine's timing knobs.
type EngineConfig struct {
	StartDebounce        time.Duration `mapstructure:"start_debounce"`
	RefreshInterval      time.Duration `mapstructure:"refresh_interval"`
	SnapshotDelay        time.Duration `mapstructure:"snapshot_delay"`
	TurnCountdownSeconds int           `mapstructure:"turn_countdown_seconds"`
}

// OverlayConfig configures the websocket overlay feed.
type OverlayConfig struct {
	Address string `mapstructure:"address"`
}

// ReplayConfig configures fact recording.
type ReplayConfig struct {
	RecordPath string `mapstructure:"record_path"` // empty disables recording
}

// Load reads the configuration file at path. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("engine.start_debounce", 3*time.Second)
	v.SetDefault("engine.refresh_interval", 500*time.Millisecond)
	v.SetDefault("engine.snapshot_delay", 300*time.Millisecond)
	v.SetDefault("engine.turn_countdown_seconds", 75)
	v.SetDefault("overlay.address", ":8090")
	v.SetDefault("replay.record_path", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
