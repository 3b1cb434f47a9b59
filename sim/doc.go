// Package sim provides the simulation-environment lifecycle controller:
// a deterministic clock, ground-truth body kinematics, and the top-level
// state machine that drives sensors and the transport bridge.
//
// # Reading Guide
//
// Start with these three files to understand the stepping kernel:
//   - clock.go: the timestep authority (physics ticks, derived render ticks)
//   - world.go: ground-truth body state from analytic motion profiles
//   - environment.go: the Constructed → Initialized → Ready → Closed
//     controller and the per-step update/assemble/publish cycle
//
// # Architecture
//
// The sim package owns lifecycle and time; domain behavior lives in
// sub-packages:
//   - sim/sensor/: sensor specs, noise strategies, multi-rate registry,
//     observation snapshots
//   - sim/scene/: static scene catalog with ray-castable geometry
//   - sim/bridge/: channel specs, QoS, wire codec, loopback and
//     websocket transports
//   - sim/trace/: episode trace recording (JSONL) and summaries
//
// # Determinism
//
// All randomness derives from a SimulationKey (scene id + seed) through
// PartitionedRNG, which hands each subsystem an isolated stream. Time is
// an integer tick counter multiplied out to seconds. Two resets with the
// same key produce bit-identical observation streams.
package sim
