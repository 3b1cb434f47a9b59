package sim

import "math"

// ratioEps absorbs rounding introduced when timestep values travel
// through YAML floats (e.g. 0.05/0.01 evaluating to 4.999999...).
const ratioEps = 1e-9

// Clock is the single authority over simulation time. Time advances in
// fixed physics ticks; every renderInterval-th tick is a render tick, at
// which sensors publish and the bridge transmits. Time is derived from
// the integer tick counter so that repeated runs are bit-identical.
type Clock struct {
	physicsDT      float64 // seconds per physics tick
	renderDT       float64 // seconds per render tick
	renderInterval int64   // physics ticks per render tick
	tick           int64
}

// NewClock validates the timestep relationship and returns a clock at t=0.
// renderDT must be a positive integer multiple of physicsDT; anything else
// is a configuration error caught before any stepping occurs.
func NewClock(physicsDT, renderDT float64) (*Clock, error) {
	if physicsDT <= 0 {
		return nil, &ConfigError{Field: "physics_dt", Reason: "must be > 0"}
	}
	if renderDT <= 0 {
		return nil, &ConfigError{Field: "render_dt", Reason: "must be > 0"}
	}
	ratio := renderDT / physicsDT
	k := math.Round(ratio)
	if k < 1 || math.Abs(ratio-k) > ratioEps {
		return nil, &ConfigError{Field: "render_dt", Reason: "must be an integer multiple of physics_dt"}
	}
	return &Clock{
		physicsDT:      physicsDT,
		renderDT:       renderDT,
		renderInterval: int64(k),
	}, nil
}

// Advance moves simulation time forward by one physics tick and returns
// the new time. It never blocks.
func (c *Clock) Advance() float64 {
	c.tick++
	return c.Now()
}

// Now returns the current simulation time in seconds.
func (c *Clock) Now() float64 {
	return float64(c.tick) * c.physicsDT
}

// DueRenderTick reports whether the current tick is a render tick. It is
// a pure query: true exactly on every renderInterval-th Advance, counted
// from reset, independent of wall-clock execution speed.
func (c *Clock) DueRenderTick() bool {
	return c.tick > 0 && c.tick%c.renderInterval == 0
}

// Reset returns the clock to t=0.
func (c *Clock) Reset() {
	c.tick = 0
}

// Tick returns the physics tick counter.
func (c *Clock) Tick() int64 { return c.tick }

// PhysicsDT returns the physics timestep in seconds.
func (c *Clock) PhysicsDT() float64 { return c.physicsDT }

// RenderDT returns the render timestep in seconds.
func (c *Clock) RenderDT() float64 { return c.renderDT }

// RenderInterval returns the number of physics ticks per render tick.
func (c *Clock) RenderInterval() int64 { return c.renderInterval }
