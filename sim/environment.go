package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/navsim/navsim/sim/bridge"
	"github.com/navsim/navsim/sim/scene"
	"github.com/navsim/navsim/sim/sensor"
	"github.com/navsim/navsim/sim/trace"
)

// EnvState is the environment controller lifecycle phase.
type EnvState int

const (
	Constructed EnvState = iota
	Initialized
	Ready
	Closed
)

// String returns the state name.
func (s EnvState) String() string {
	switch s {
	case Constructed:
		return "Constructed"
	case Initialized:
		return "Initialized"
	case Ready:
		return "Ready"
	case Closed:
		return "Closed"
	default:
		return fmt.Sprintf("EnvState(%d)", int(s))
	}
}

// Option customizes an Environment at construction.
type Option func(*Environment)

// WithTrace attaches an episode trace recorder. Nil disables tracing.
func WithTrace(t *trace.EpisodeTrace) Option {
	return func(e *Environment) { e.trace = t }
}

// Environment is the top-level lifecycle controller. It owns the clock,
// world, sensor registry, and transport bridge, and enforces the strict
// Constructed → Initialized → Ready → Closed ordering across them. All
// dependencies are constructor-injected; there is no hidden global
// simulation state.
//
// Single-threaded cooperative stepping: initialization, reset, step, and
// close must all be called from one goroutine. The bridge's transport
// may run its own I/O goroutines; the core only ever hands it copies.
type Environment struct {
	cfg          Config
	specs        []sensor.Spec
	channelSpecs []bridge.ChannelSpec
	provider     scene.Provider
	transport    bridge.Transport
	trace        *trace.EpisodeTrace

	state    EnvState
	clock    *Clock
	world    *World
	registry *sensor.Registry
	bridge   *bridge.Bridge
	rng      *PartitionedRNG
	scene    *scene.Scene

	metrics Metrics
}

// New validates configuration and returns an environment in Constructed.
// channels may be nil, in which case the conventional channel table is
// derived from the sensor suite. The transport may be nil: the bridge
// then runs as a no-op publisher (offline mode).
func New(cfg Config, specs []sensor.Spec, channels []bridge.ChannelSpec,
	provider scene.Provider, transport bridge.Transport, opts ...Option) (*Environment, error) {

	if provider == nil {
		return nil, &ConfigError{Field: "provider", Reason: "scene provider is required"}
	}
	if len(specs) == 0 {
		return nil, &ConfigError{Field: "sensors", Reason: "at least one sensor is required"}
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, &ConfigError{Field: "sensors", Reason: err.Error()}
		}
	}
	if channels == nil {
		channels = bridge.DefaultChannels(specs)
	}
	for _, c := range channels {
		if err := c.Validate(); err != nil {
			return nil, &ConfigError{Field: "channels", Reason: err.Error()}
		}
	}

	e := &Environment{
		cfg:          cfg.withDefaults(),
		specs:        specs,
		channelSpecs: channels,
		provider:     provider,
		transport:    transport,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Initialize constructs the physics context and validates the timestep
// relationship, builds the sensor suite, and sets up the bridge. Legal
// only from Constructed. Initialization order is strict: clock, then
// sensors, then bridge, so the bridge never sees an unvalidated clock.
func (e *Environment) Initialize() error {
	if e.state != Constructed {
		return &SequenceError{Op: "Initialize", State: e.state}
	}

	clock, err := NewClock(e.cfg.Clock.PhysicsDT, e.cfg.Clock.RenderDT)
	if err != nil {
		return err
	}
	world, err := NewWorld(e.cfg.Motion, e.cfg.Gravity, clock.PhysicsDT())
	if err != nil {
		return err
	}
	registry, err := sensor.NewRegistry(e.specs)
	if err != nil {
		return &ConfigError{Field: "sensors", Reason: err.Error()}
	}

	timeout := e.cfg.PublishTimeout
	if timeout == 0 {
		timeout = time.Duration(clock.RenderDT() * float64(time.Second))
	}
	br := bridge.New(e.transport, timeout)
	if err := br.Setup(context.Background(), e.channelSpecs); err != nil {
		return &ConfigError{Field: "channels", Reason: err.Error()}
	}

	e.clock = clock
	e.world = world
	e.registry = registry
	e.bridge = br
	e.state = Initialized

	logrus.Infof("environment initialized: physics_dt=%.4fs render_dt=%.4fs (interval %d), %d sensors, %d channels",
		clock.PhysicsDT(), clock.RenderDT(), clock.RenderInterval(), registry.Len(), len(e.channelSpecs))
	return nil
}

// Reset starts a new episode keyed by (sceneID, seed): drains in-flight
// publishes from the previous episode, loads the scene, reseeds all RNG
// streams, zeroes the clock and every sensor, and performs exactly one
// assemble+publish cycle at t=0 to produce the initial observation.
// Legal from Initialized or Ready. A scene load failure is fatal for
// this call only: the controller stays in Initialized and the caller
// may retry with different parameters.
func (e *Environment) Reset(sceneID string, seed int64) (sensor.Snapshot, error) {
	if e.state != Initialized && e.state != Ready {
		return sensor.Snapshot{}, &SequenceError{Op: "Reset", State: e.state}
	}

	// Drain before reseeding sensors, so a stale reliable-channel
	// retransmission cannot bleed into the new episode's stream.
	if err := e.bridge.Reset(context.Background()); err != nil {
		return sensor.Snapshot{}, err
	}

	sc, err := e.provider.Load(sceneID, seed)
	if err != nil {
		e.state = Initialized
		return sensor.Snapshot{}, &SceneLoadError{SceneID: sceneID, Seed: seed, Err: err}
	}

	e.scene = sc
	e.rng = NewPartitionedRNG(SimulationKey{SceneID: sceneID, Seed: seed})
	e.clock.Reset()
	e.world.Reset(sc, e.rng.ForSubsystem(SubsystemScene))
	e.registry.Reset(e.rng.ForSensor)

	if e.trace != nil {
		if err := e.trace.BeginEpisode(sceneID, seed); err != nil {
			logrus.Warnf("trace: begin episode: %v", err)
		}
	}

	// Initial cycle at t=0. No sensor is due yet, so the first snapshot
	// reports every sample invalid by construction.
	gt := e.world.GroundTruth()
	e.registry.UpdateDue(0, gt)
	snap := sensor.Assemble(0, e.registry)
	if err := e.bridge.Publish(snap, e.frames()); err != nil {
		return sensor.Snapshot{}, err
	}
	e.recordStep(snap)

	e.metrics.Resets++
	e.state = Ready
	logrus.Infof("[t=%07.3f] reset: scene=%s seed=%d", snap.Time, sceneID, seed)
	return snap, nil
}

// Step advances the clock by one physics tick, updates due sensors at
// render ticks, assembles the observation snapshot, publishes it, and
// returns it. Legal only from Ready.
func (e *Environment) Step() (sensor.Snapshot, error) {
	if e.state != Ready {
		return sensor.Snapshot{}, &SequenceError{Op: "Step", State: e.state}
	}

	now := e.clock.Advance()
	e.world.Step()
	gt := e.world.GroundTruth()
	e.registry.Integrate(now, e.clock.PhysicsDT(), gt)

	renderTick := e.clock.DueRenderTick()
	if renderTick {
		e.registry.UpdateDue(now, gt)
		e.metrics.RenderTicks++
	}

	snap := sensor.Assemble(now, e.registry)
	if renderTick {
		if err := e.bridge.Publish(snap, e.frames()); err != nil {
			return sensor.Snapshot{}, err
		}
	}
	e.recordStep(snap)

	e.metrics.Steps++
	e.metrics.Snapshots++
	if snap.Complete {
		e.metrics.CompleteSnapshots++
	}
	return snap, nil
}

// Close drains the bridge, releases sensors, and tears down the physics
// context. Idempotent: callable from any state, and a second call is a
// no-op. After Close every other operation fails with a SequenceError.
func (e *Environment) Close() error {
	if e.state == Closed {
		return nil
	}
	if e.bridge != nil {
		if err := e.bridge.Close(context.Background()); err != nil {
			logrus.Warnf("close bridge: %v", err)
		}
	}
	if e.trace != nil {
		if err := e.trace.Flush(); err != nil {
			logrus.Warnf("trace: flush: %v", err)
		}
	}
	e.registry = nil
	e.world = nil
	e.scene = nil
	e.state = Closed
	logrus.Info("environment closed")
	return nil
}

// State returns the controller lifecycle phase.
func (e *Environment) State() EnvState { return e.state }

// Metrics returns the step counters merged with the bridge's publish
// stats.
func (e *Environment) Metrics() Metrics {
	m := e.metrics
	if e.bridge != nil {
		m.Bridge = e.bridge.Stats()
	}
	return m
}

// frames builds the transform tree for the current body state: the
// kinematic world→body edge plus the static body→mount edges.
func (e *Environment) frames() []bridge.Frame {
	body := e.world.Body()
	frames := make([]bridge.Frame, 0, len(e.specs)+1)
	frames = append(frames, bridge.Frame{
		ID:     "body",
		Parent: "world",
		Pos:    [3]float64{body.Pos.X, body.Pos.Y, body.Pos.Z},
		Orient: [4]float64{body.Orient.Real, body.Orient.Imag, body.Orient.Jmag, body.Orient.Kmag},
	})
	for _, s := range e.specs {
		q := s.Mount.Quat()
		frames = append(frames, bridge.Frame{
			ID:     s.Name,
			Parent: "body",
			Pos:    [3]float64{s.Mount.Position.X, s.Mount.Position.Y, s.Mount.Position.Z},
			Orient: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		})
	}
	return frames
}

func (e *Environment) recordStep(snap sensor.Snapshot) {
	if e.trace == nil {
		return
	}
	if err := e.trace.RecordStep(snap); err != nil {
		logrus.Warnf("trace: record step: %v", err)
	}
}
