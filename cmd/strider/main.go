package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/strider/internal/config"
	"github.com/Versifine/strider/internal/controller"
	"github.com/Versifine/strider/internal/debug"
	"github.com/Versifine/strider/internal/event"
	"github.com/Versifine/strider/internal/logger"
	"github.com/Versifine/strider/internal/physics"
	"github.com/Versifine/strider/internal/telemetry"
	"github.com/Versifine/strider/internal/terrain"
)

const (
	configPath = "configs/config.yaml"

	terrainRows     = 64
	terrainCols     = 64
	terrainCellSize = 1.0
)

func main() {
	cfg, err := config.Load(configPath)
	if os.IsNotExist(err) {
		cfg = config.Default()
	} else if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	field, err := terrain.Generate(terrainRows, terrainCols, terrainCellSize, rollingHills)
	if err != nil {
		slog.Error("Failed to generate terrain", "error", err)
		os.Exit(1)
	}

	start := r3.Vec{X: 32, Z: 32}
	start.Y = field.HeightAt(start.X, start.Z)
	body := physics.NewBody(start)

	bus := event.NewBus()
	subscribeTransitions(bus)

	ctrl := controller.New(body, field, bus, paramsFromConfig(cfg))

	recorder, err := telemetry.NewRecorder(cfg.Telemetry.Output)
	if err != nil {
		slog.Error("Failed to open telemetry output", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Error("Failed to close telemetry output", "error", err)
		}
	}()

	console := debug.NewConsole(ctrl, body, field, recorder, cfg.Sim.TickRate)

	go watchConfig(ctx, console)

	if err := console.Start(ctx); err != nil {
		slog.Error("Console exited", "error", err)
		os.Exit(1)
	}
}

// rollingHills is the demo surface: gentle sine hills, everywhere walkable at
// the default ground threshold.
func rollingHills(x, z float64) float64 {
	return 1.5*math.Sin(x/8) + 1.0*math.Cos(z/11)
}

func paramsFromConfig(cfg *config.Config) controller.Params {
	return controller.Params{
		SpeedMax:        cfg.Controller.SpeedMax,
		AccelerationMax: cfg.Controller.AccelerationMax,
		AirMultiplier:   cfg.Controller.AirMultiplier,
		GroundThreshold: cfg.Controller.GroundThreshold,
		ProbeDistance:   cfg.Controller.ProbeDistance,
		Sensitivity:     cfg.Controller.Sensitivity,
		FOV:             cfg.Controller.FOV,
	}
}

func subscribeTransitions(bus *event.Bus) {
	bus.Subscribe(controller.EventGrounded, func(evt any) {
		if t, ok := evt.(controller.Transition); ok {
			slog.Debug("grounded", "tick", t.Tick, "y", t.Position.Y, "normal_y", t.Normal.Y)
		}
	})
	bus.Subscribe(controller.EventAirborne, func(evt any) {
		if t, ok := evt.(controller.Transition); ok {
			slog.Debug("airborne", "tick", t.Tick, "y", t.Position.Y)
		}
	})
	bus.Subscribe(controller.EventSnap, func(evt any) {
		if t, ok := evt.(controller.Transition); ok {
			slog.Debug("snapped to ground", "tick", t.Tick, "y", t.Position.Y, "normal_y", t.Normal.Y)
		}
	})
}

// watchConfig forwards valid config reloads to the console until ctx ends.
func watchConfig(ctx context.Context, console *debug.Console) {
	watcher, err := config.Watch(configPath)
	if err != nil {
		slog.Warn("Config watch disabled", "error", err)
		return
	}
	defer func() { _ = watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-watcher.Configs:
			console.ApplyParams(paramsFromConfig(cfg))
			slog.Info("Config reloaded", "path", configPath)
		case err := <-watcher.Errors:
			slog.Warn("Config reload rejected", "error", err)
		}
	}
}
