package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/host"
	"github.com/wippyai/box2d-bridge/scene"
)

//go:embed default.yaml
var defaultScene []byte

func main() {
	os.Exit(realMain(flag.CommandLine, os.Args[1:]))
}

// realMain runs the command and returns its exit code, so deferred calls
// complete before the process exits.
func realMain(fs *flag.FlagSet, args []string) int {
	cfg, err := parseConfig(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if cfg.List {
		listFunctions()
		return 0
	}

	if cfg.Interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer log.Sync()
	bridge.SetLogger(log)
	host.SetLogger(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("run failed", zap.Error(err))
		return 1
	}
	return 0
}

func listFunctions() {
	w := bridge.NewWorld(0, 0)
	defer w.Close()
	for _, f := range host.New(w).Functions() {
		fmt.Println(host.Signature(f))
	}
}

func loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		return scene.Parse(defaultScene, scene.FormatYAML)
	}
	return scene.Load(path)
}

func run(ctx context.Context, cfg config, log *zap.Logger) error {
	s, err := loadScene(cfg.Scene)
	if err != nil {
		return err
	}

	if cfg.Wasm != "" {
		return runGuest(ctx, cfg, s, log)
	}
	if err := simulate(cfg, s, log); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	watcher, err := scene.NewWatcher(cfg.Scene)
	if err != nil {
		return err
	}
	defer watcher.Close()
	log.Info("watching scene", zap.String("path", cfg.Scene))
	for {
		select {
		case name, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Info("scene changed", zap.String("path", name))
			s, err := scene.Load(cfg.Scene)
			if err != nil {
				log.Warn("reload failed", zap.Error(err))
				continue
			}
			if err := simulate(cfg, s, log); err != nil {
				log.Warn("simulation failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
