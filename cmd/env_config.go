package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	sim "github.com/navsim/navsim/sim"
)

// EnvConfigFile is the YAML shape of the environment configuration.
type EnvConfigFile struct {
	Simulation struct {
		PhysicsDT float64 `yaml:"physics_dt"` // seconds, e.g. 0.01 for 100 Hz
		RenderDT  float64 `yaml:"render_dt"`  // seconds, integer multiple of physics_dt
	} `yaml:"simulation"`
	Gravity          float64 `yaml:"gravity"`            // m/s², default 9.81
	PublishTimeoutMS int     `yaml:"publish_timeout_ms"` // 0 = one render period
	Motion           struct {
		Profile     string  `yaml:"profile"`      // hover or orbit
		OrbitRadius float64 `yaml:"orbit_radius"` // meters
		OrbitRate   float64 `yaml:"orbit_rate"`   // rad/s
	} `yaml:"motion"`
}

// DefaultEnvConfig mirrors the conventional 100 Hz physics / 20 Hz
// render setup.
func DefaultEnvConfig() sim.Config {
	return sim.Config{
		Clock:  sim.ClockConfig{PhysicsDT: 0.01, RenderDT: 0.05},
		Motion: sim.MotionConfig{Profile: "hover"},
	}
}

// LoadEnvConfig reads the environment YAML at path, or returns the
// built-in defaults when path is empty. Unknown fields are rejected.
func LoadEnvConfig(path string) (sim.Config, error) {
	if path == "" {
		return DefaultEnvConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("open env config: %w", err)
	}
	defer f.Close()

	var file EnvConfigFile
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return sim.Config{}, fmt.Errorf("parse env config %s: %w", path, err)
	}

	cfg := sim.Config{
		Clock: sim.ClockConfig{
			PhysicsDT: file.Simulation.PhysicsDT,
			RenderDT:  file.Simulation.RenderDT,
		},
		Gravity:        file.Gravity,
		PublishTimeout: time.Duration(file.PublishTimeoutMS) * time.Millisecond,
		Motion: sim.MotionConfig{
			Profile:     file.Motion.Profile,
			OrbitRadius: file.Motion.OrbitRadius,
			OrbitRate:   file.Motion.OrbitRate,
		},
	}
	return cfg, nil
}
