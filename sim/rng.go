package sim

import (
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible episode.
// Two resets with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical observation streams.
type SimulationKey struct {
	SceneID string // scene family identifier
	Seed    int64  // caller-supplied episode seed
}

// MasterSeed derives the episode master seed:
// seed XOR fnv1a64(sceneID), so distinct scenes with the same seed diverge.
func (k SimulationKey) MasterSeed() int64 {
	return k.Seed ^ fnv1a64(k.SceneID)
}

// === Subsystem Constants ===

const (
	// SubsystemScene is the RNG subsystem for spawn pose sampling at reset.
	SubsystemScene = "scene"

	// SubsystemMotion is the RNG subsystem for motion profile jitter.
	SubsystemMotion = "motion"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName), so the stream a
// subsystem sees is independent of the order subsystems first ask for one.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	masterSeed int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: key.MasterSeed(),
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	rng := rand.New(rand.NewSource(p.masterSeed ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// ForSensor returns the noise RNG stream for the named sensor.
// Convenience for ForSubsystem("sensor/<name>").
func (p *PartitionedRNG) ForSensor(name string) *rand.Rand {
	return p.ForSubsystem("sensor/" + name)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
