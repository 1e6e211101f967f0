package main

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type config struct {
	Scene       string  `env:"BOX2D_SCENE"`
	Wasm        string  `env:"BOX2D_WASM"`
	Steps       int     `env:"BOX2D_STEPS" envDefault:"60"`
	DT          float64 `env:"BOX2D_DT" envDefault:"0.016666668"`
	Velocity    int     `env:"BOX2D_VELOCITY_ITERATIONS" envDefault:"8"`
	Position    int     `env:"BOX2D_POSITION_ITERATIONS" envDefault:"3"`
	List        bool    `env:"BOX2D_LIST"`
	Interactive bool    `env:"BOX2D_INTERACTIVE"`
	Watch       bool    `env:"BOX2D_WATCH"`
	LogLevel    string  `env:"BOX2D_LOG_LEVEL" envDefault:"info"`
	LogFormat   string  `env:"BOX2D_LOG_FORMAT" envDefault:"auto"`
}

// parseConfig loads defaults from the environment, then applies flags.
func parseConfig(fs *flag.FlagSet, args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Scene, "scene", cfg.Scene, "Scene file (.yaml, .yml or .toml); a built-in scene when empty")
	fs.StringVar(&cfg.Wasm, "wasm", cfg.Wasm, "Guest module importing the box2d host module")
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "Number of frames to simulate")
	fs.Float64Var(&cfg.DT, "dt", cfg.DT, "Time step in seconds")
	fs.IntVar(&cfg.Velocity, "vel", cfg.Velocity, "Velocity iterations per step")
	fs.IntVar(&cfg.Position, "pos", cfg.Position, "Position iterations per step")
	fs.BoolVar(&cfg.List, "list", cfg.List, "List host functions and exit")
	fs.BoolVar(&cfg.Interactive, "i", cfg.Interactive, "Interactive mode with TUI")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Rebuild the world when the scene file changes")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (auto, console, json)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Steps < 0 {
		return cfg, fmt.Errorf("-steps must be non-negative, got %d", cfg.Steps)
	}
	if cfg.DT <= 0 {
		return cfg, fmt.Errorf("-dt must be positive, got %v", cfg.DT)
	}
	if cfg.Watch && cfg.Scene == "" {
		return cfg, fmt.Errorf("-watch needs -scene")
	}
	if cfg.Watch && cfg.Wasm != "" {
		return cfg, fmt.Errorf("-watch cannot be combined with -wasm")
	}
	return cfg, nil
}
