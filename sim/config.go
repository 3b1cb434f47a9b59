package sim

import "time"

// ClockConfig groups the fixed timestep parameters for NewClock.
type ClockConfig struct {
	PhysicsDT float64 // physics step in seconds (must be > 0, e.g. 0.01 for 100 Hz)
	RenderDT  float64 // render/sensor step in seconds (integer multiple of PhysicsDT)
}

// MotionConfig selects the kinematic motion profile driving the body.
// Profiles are a closed set evaluated analytically from the tick count,
// so body state never accumulates float drift across steps.
type MotionConfig struct {
	Profile     string  // "hover" (default) or "orbit"
	OrbitRadius float64 // orbit radius in meters (orbit only, default 2.0)
	OrbitRate   float64 // orbit angular rate in rad/s (orbit only, default 0.5)
}

// Config groups the environment-level parameters for New.
type Config struct {
	Clock          ClockConfig
	Motion         MotionConfig
	Gravity        float64       // gravitational acceleration magnitude, m/s² (default 9.81)
	PublishTimeout time.Duration // max block per reliable publish (0 = one render period)
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.Gravity == 0 {
		c.Gravity = 9.81
	}
	if c.Motion.Profile == "" {
		c.Motion.Profile = "hover"
	}
	if c.Motion.OrbitRadius == 0 {
		c.Motion.OrbitRadius = 2.0
	}
	if c.Motion.OrbitRate == 0 {
		c.Motion.OrbitRate = 0.5
	}
	return c
}
