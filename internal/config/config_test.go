package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "full file overrides defaults",
			createFile: true,
			content: `controller:
  speed_max: 10
  acceleration_max: 40
  air_multiplier: 0.5
  ground_threshold: 0.85
  probe_distance: 2
  sensitivity: 0.25
  fov: 90
sim:
  tick_rate: 60
telemetry:
  output: out
logging:
  level: debug
  format: text
`,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Controller.SpeedMax != 10 {
					t.Errorf("SpeedMax = %v, want 10", cfg.Controller.SpeedMax)
				}
				if cfg.Controller.GroundThreshold != 0.85 {
					t.Errorf("GroundThreshold = %v, want 0.85", cfg.Controller.GroundThreshold)
				}
				if cfg.Sim.TickRate != 60 {
					t.Errorf("TickRate = %d, want 60", cfg.Sim.TickRate)
				}
				if cfg.Telemetry.Output != "out" {
					t.Errorf("Telemetry.Output = %q, want %q", cfg.Telemetry.Output, "out")
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
				}
			},
		},
		{
			name:       "partial file keeps defaults elsewhere",
			createFile: true,
			content: `controller:
  speed_max: 12
`,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Controller.SpeedMax != 12 {
					t.Errorf("SpeedMax = %v, want 12", cfg.Controller.SpeedMax)
				}
				if cfg.Controller.GroundThreshold != 0.9 {
					t.Errorf("GroundThreshold = %v, want default 0.9", cfg.Controller.GroundThreshold)
				}
				if cfg.Sim.TickRate != 50 {
					t.Errorf("TickRate = %d, want default 50", cfg.Sim.TickRate)
				}
			},
		},
		{
			name:       "missing file",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("want not-exist error, got: %v", err)
				}
			},
		},
		{
			name:       "malformed yaml",
			createFile: true,
			content: `controller:
  speed_max: [8
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("want yaml parse error, got: %v", err)
				}
			},
		},
		{
			name:       "air multiplier out of range",
			createFile: true,
			content: `controller:
  air_multiplier: 1.5
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "air_multiplier") {
					t.Errorf("want air_multiplier validation error, got: %v", err)
				}
			},
		},
		{
			name:       "ground threshold of zero rejected",
			createFile: true,
			content: `controller:
  ground_threshold: 0
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "ground_threshold") {
					t.Errorf("want ground_threshold validation error, got: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("write test config: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg == nil {
				t.Fatal("Load() returned nil config")
			}
			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}
