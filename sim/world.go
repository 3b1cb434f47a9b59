package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/navsim/navsim/sim/scene"
	"github.com/navsim/navsim/sim/sensor"
)

// BodyState is the ground-truth kinematic state of the simulated body.
// Pos/Vel/Acc are world frame; AngVel is body frame.
type BodyState struct {
	Pos    r3.Vec
	Vel    r3.Vec
	Acc    r3.Vec
	Orient quat.Number // body → world
	AngVel r3.Vec
}

// World owns the physics context: the loaded scene, gravity, and the
// body driven by a closed set of analytic motion profiles. State is
// evaluated from the tick counter each query, so stepping accumulates no
// float drift and identical episodes replay bit-identically.
type World struct {
	motion  MotionConfig
	gravity r3.Vec
	dt      float64

	scene    *scene.Scene
	spawnPos r3.Vec
	spawnYaw float64
	tick     int64
}

// NewWorld validates the motion profile and returns an un-reset world.
func NewWorld(motion MotionConfig, gravity, dt float64) (*World, error) {
	switch motion.Profile {
	case "hover", "orbit":
	default:
		return nil, &ConfigError{Field: "motion.profile", Reason: "must be \"hover\" or \"orbit\""}
	}
	return &World{
		motion:  motion,
		gravity: r3.Vec{Z: -gravity},
		dt:      dt,
	}, nil
}

// Reset installs the scene and samples a spawn pose uniformly inside its
// spawn region: xyz plus yaw, drawn from the episode's scene stream.
func (w *World) Reset(sc *scene.Scene, rng *rand.Rand) {
	w.scene = sc
	w.tick = 0

	region := sc.SpawnRegion
	w.spawnPos = r3.Vec{
		X: uniform(rng, region.Min.X, region.Max.X),
		Y: uniform(rng, region.Min.Y, region.Max.Y),
		Z: uniform(rng, region.Min.Z, region.Max.Z),
	}
	w.spawnYaw = uniform(rng, -math.Pi, math.Pi)
}

// Step advances the body by one physics tick.
func (w *World) Step() {
	w.tick++
}

// Scene returns the currently loaded scene (nil before the first reset).
func (w *World) Scene() *scene.Scene { return w.scene }

// Body evaluates the ground-truth body state at the current tick.
func (w *World) Body() BodyState {
	t := float64(w.tick) * w.dt
	switch w.motion.Profile {
	case "orbit":
		return w.orbitState(t)
	default:
		return w.hoverState()
	}
}

// hoverState holds the body stationary at the spawn pose.
func (w *World) hoverState() BodyState {
	return BodyState{
		Pos:    w.spawnPos,
		Orient: sensor.QuatFromRPY(0, 0, w.spawnYaw),
	}
}

// orbitState flies a constant-speed circle around the spawn point with
// the nose tracking the tangent, giving the inertial sensor non-zero
// centripetal acceleration and yaw rate.
func (w *World) orbitState(t float64) BodyState {
	r := w.motion.OrbitRadius
	omega := w.motion.OrbitRate
	theta := omega * t

	center := r3.Add(w.spawnPos, r3.Vec{X: -r})
	pos := r3.Add(center, r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
	vel := r3.Vec{X: -r * omega * math.Sin(theta), Y: r * omega * math.Cos(theta)}
	acc := r3.Vec{X: -r * omega * omega * math.Cos(theta), Y: -r * omega * omega * math.Sin(theta)}

	return BodyState{
		Pos:    pos,
		Vel:    vel,
		Acc:    acc,
		Orient: sensor.QuatFromRPY(0, 0, w.spawnYaw+theta),
		AngVel: r3.Vec{Z: omega},
	}
}

// GroundTruth packages the body state for sensor consumption, including
// the body-frame specific force an ideal accelerometer reads:
// R^T · (a_world − g).
func (w *World) GroundTruth() sensor.GroundTruth {
	body := w.Body()
	return sensor.GroundTruth{
		Pos:           body.Pos,
		Vel:           body.Vel,
		Acc:           body.Acc,
		Orient:        body.Orient,
		AngVel:        body.AngVel,
		SpecificForce: sensor.RotateInv(body.Orient, r3.Sub(body.Acc, w.gravity)),
		Scene:         w.scene,
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
