package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/host"
	"github.com/wippyai/box2d-bridge/marshal"
	"github.com/wippyai/box2d-bridge/scene"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func simulate(cfg config, s *scene.Scene, log *zap.Logger) error {
	w, built, err := s.NewWorld(bridge.WithLogger(log), bridge.WithIterations(cfg.Velocity, cfg.Position))
	if err != nil {
		return err
	}
	defer w.Close()

	for i := 0; i < cfg.Steps; i++ {
		if err := w.Step(float32(cfg.DT), 0, 0); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	contacts, err := w.ContactList(nil)
	if err != nil {
		return err
	}
	log.Info("simulated",
		zap.Int("steps", cfg.Steps),
		zap.Int("bodies", len(built.Bodies)),
		zap.Int("joints", len(built.Joints)),
		zap.Int("contacts", len(contacts)),
	)

	rows, err := bodyRows(w, built)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(bodyColumns...).
		Rows(rows...)
	fmt.Println(t.Render())
	return nil
}

var bodyColumns = []string{"body", "type", "x", "y", "angle", "vx", "vy"}

// bodyRows renders one row per named body, sorted by name.
func bodyRows(w *bridge.World, built *scene.Built) ([][]string, error) {
	names := slices.Sorted(maps.Keys(built.Bodies))
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		h := built.Bodies[name]
		typ, err := w.Bodies.Type(h)
		if err != nil {
			return nil, err
		}
		var pos, vel marshal.Vec2
		if err := w.Bodies.Position(h, &pos); err != nil {
			return nil, err
		}
		if err := w.Bodies.LinearVelocity(h, &vel); err != nil {
			return nil, err
		}
		angle, err := w.Bodies.Angle(h)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{
			name,
			typ.String(),
			num(pos[0]), num(pos[1]),
			num(angle),
			num(vel[0]), num(vel[1]),
		})
	}
	return rows, nil
}

func num(v float32) string {
	return fmt.Sprintf("%.3f", v)
}

// runGuest drives the world from a guest module. The guest's update(dt)
// export is called once per frame; without it _start runs once.
func runGuest(ctx context.Context, cfg config, s *scene.Scene, log *zap.Logger) error {
	bin, err := os.ReadFile(cfg.Wasm)
	if err != nil {
		return fmt.Errorf("read wasm: %w", err)
	}

	w, built, err := s.NewWorld(bridge.WithLogger(log), bridge.WithIterations(cfg.Velocity, cfg.Position))
	if err != nil {
		return err
	}
	defer w.Close()

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return fmt.Errorf("instantiate wasi: %w", err)
	}
	if _, err := host.New(w, host.WithLogger(log)).Instantiate(ctx, r); err != nil {
		return err
	}

	guest, err := r.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().
		WithName("guest").
		WithArgs("guest").
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithStartFunctions())
	if err != nil {
		return fmt.Errorf("instantiate guest: %w", err)
	}
	defer guest.Close(ctx)

	if update := guest.ExportedFunction("update"); update != nil {
		dt := api.EncodeF32(float32(cfg.DT))
		for i := 0; i < cfg.Steps; i++ {
			if _, err := update.Call(ctx, dt); err != nil {
				return fmt.Errorf("update frame %d: %w", i, err)
			}
		}
		log.Info("guest updated", zap.Int("frames", cfg.Steps))
	} else if start := guest.ExportedFunction("_start"); start != nil {
		if _, err := start.Call(ctx); err != nil {
			var exit *sys.ExitError
			if !errors.As(err, &exit) || exit.ExitCode() != 0 {
				return fmt.Errorf("_start: %w", err)
			}
		}
	} else {
		return fmt.Errorf("guest exports neither update nor _start")
	}

	rows, err := bodyRows(w, built)
	if err != nil {
		return err
	}
	fmt.Println(table.New().
		Border(lipgloss.NormalBorder()).
		Headers(bodyColumns...).
		Rows(rows...).
		Render())
	return nil
}
