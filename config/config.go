// Package config loads the TOML configuration of the trdinfo runner.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decibelcooper/infogen"
	"github.com/decibelcooper/infogen/cuts"
	"github.com/decibelcooper/infogen/proioevt"
)

type Config struct {
	Run            RunConfig              `toml:"run"`
	Geometry       infogen.Geometry       `toml:"geometry"`
	EventSelection infogen.EventSelection `toml:"event_selection"`
	TrackSelection infogen.TrackSelection `toml:"track_selection"`
	EventCut       *cuts.EventCut         `toml:"event_cut"`
	TrackCut       *cuts.TrackCut         `toml:"track_cut"`
	V0Cut          *cuts.V0Cut            `toml:"v0_cut"`
	Input          proioevt.Options       `toml:"input"`
	Logging        LoggingConfig          `toml:"logging"`
}

type RunConfig struct {
	Collision bool `toml:"collision"`
	MC        bool `toml:"mc"`
	// OCDB is the calibration database; empty skips the bootstrap.
	OCDB      string `toml:"ocdb"`
	StatsPath string `toml:"stats_path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`

	// DebugLevel >= 1 enables the track-info debug stream.
	DebugLevel  int    `toml:"debug_level"`
	DebugStream string `toml:"debug_stream"`
}

func Default() *Config {
	return &Config{
		Run: RunConfig{
			StatsPath: "TRD.Stat.yoda",
		},
		Geometry:       infogen.DefaultGeometry(),
		EventSelection: infogen.DefaultEventSelection(),
		TrackSelection: infogen.DefaultTrackSelection(),
		Input:          proioevt.DefaultOptions(),
		Logging: LoggingConfig{
			Level:       "info",
			DebugStream: "TRD.DebugInfoGen.json",
		},
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if c.EventSelection.MaxVertexZ <= 0 {
		return fmt.Errorf("event_selection.max_vertex_z must be positive")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.DebugLevel > 0 && c.Logging.DebugStream == "" {
		return fmt.Errorf("logging.debug_stream is required with debug_level > 0")
	}
	return c.Input.Validate()
}

// Options turns the configuration into generator options.
func (c *Config) Options(log, debug *zap.Logger) infogen.Options {
	opts := infogen.Options{
		Geometry:       c.Geometry,
		EventSelection: c.EventSelection,
		TrackSelection: c.TrackSelection,
		Collision:      c.Run.Collision,
		MC:             c.Run.MC,
		DebugLevel:     c.Logging.DebugLevel,
		DebugStream:    debug,
		Logger:         log,
	}
	if c.EventCut != nil {
		opts.EventCut = c.EventCut
	}
	if c.TrackCut != nil {
		opts.TrackCut = c.TrackCut
	}
	if c.V0Cut != nil {
		opts.V0Cut = c.V0Cut
	}
	return opts
}

// NewLogger builds the console logger of the runner.
func NewLogger(c LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = level
	zc.DisableStacktrace = true
	return zc.Build()
}

// NewDebugStream opens the JSON debug stream of track records. It returns a
// no-op logger when the debug level is zero.
func NewDebugStream(c LoggingConfig) (*zap.Logger, error) {
	if c.DebugLevel < 1 {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zc.Sampling = nil
	zc.OutputPaths = []string{c.DebugStream}
	zc.DisableCaller = true
	return zc.Build()
}
