package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML strings like "16ms" decode.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Collision CollisionConfig `toml:"collision"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type EngineConfig struct {
	TickRate Duration `toml:"tick_rate"`
}

type CollisionConfig struct {
	// CellSize seeds the spatial bin; auto-tuning adjusts it at runtime.
	CellSize float64 `toml:"cell_size"`
	// AutoTuneEvery is in frames; 0 disables auto-tuning.
	AutoTuneEvery int `toml:"auto_tune_every"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate: Duration{16 * time.Millisecond}, // ~60 fps
		},
		Collision: CollisionConfig{
			CellSize:      128,
			AutoTuneEvery: 60,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
