// Package config loads and validates the simulation configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Sim        SimConfig        `yaml:"sim"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ControllerConfig tunes the locomotion controller. GroundThreshold is the
// minimum dot product between a contact normal and world up for the contact
// to count as walkable ground.
type ControllerConfig struct {
	SpeedMax        float64 `yaml:"speed_max"`
	AccelerationMax float64 `yaml:"acceleration_max"`
	AirMultiplier   float64 `yaml:"air_multiplier"`
	GroundThreshold float64 `yaml:"ground_threshold"`
	ProbeDistance   float64 `yaml:"probe_distance"`
	Sensitivity     float64 `yaml:"sensitivity"`
	FOV             float64 `yaml:"fov"`
}

type SimConfig struct {
	TickRate int `yaml:"tick_rate"`
}

type TelemetryConfig struct {
	Output string `yaml:"output"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration. Load starts from these values
// so a partial file only overrides what it names.
func Default() *Config {
	return &Config{
		Controller: ControllerConfig{
			SpeedMax:        8,
			AccelerationMax: 30,
			AirMultiplier:   0.3,
			GroundThreshold: 0.9,
			ProbeDistance:   1.25,
			Sensitivity:     0.5,
			FOV:             70,
		},
		Sim: SimConfig{
			TickRate: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	ctrl := c.Controller
	if ctrl.SpeedMax <= 0 {
		return fmt.Errorf("controller.speed_max must be positive, got %v", ctrl.SpeedMax)
	}
	if ctrl.AccelerationMax <= 0 {
		return fmt.Errorf("controller.acceleration_max must be positive, got %v", ctrl.AccelerationMax)
	}
	if ctrl.AirMultiplier < 0 || ctrl.AirMultiplier > 1 {
		return fmt.Errorf("controller.air_multiplier must be in [0, 1], got %v", ctrl.AirMultiplier)
	}
	if ctrl.GroundThreshold <= 0 || ctrl.GroundThreshold > 1 {
		return fmt.Errorf("controller.ground_threshold must be in (0, 1], got %v", ctrl.GroundThreshold)
	}
	if ctrl.ProbeDistance <= 0 {
		return fmt.Errorf("controller.probe_distance must be positive, got %v", ctrl.ProbeDistance)
	}
	if ctrl.Sensitivity <= 0 {
		return fmt.Errorf("controller.sensitivity must be positive, got %v", ctrl.Sensitivity)
	}
	if ctrl.FOV <= 0 || ctrl.FOV >= 180 {
		return fmt.Errorf("controller.fov must be in (0, 180), got %v", ctrl.FOV)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	return nil
}
