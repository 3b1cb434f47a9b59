package sensor

import (
	"fmt"
	"math/rand"
)

// NoiseModel perturbs scalar readings. Advance steps any accumulated
// state (bias random walk) once per native sensor update; Perturb applies
// the model to one reading without mutating state, so a multi-axis sensor
// may share one model across components sampled in a fixed order.
type NoiseModel interface {
	Advance(rng *rand.Rand)
	Perturb(rng *rand.Rand, v float64) float64
	Reset()
}

// NewNoiseModel builds the configured noise strategy.
func NewNoiseModel(spec NoiseSpec) (NoiseModel, error) {
	switch spec.Model {
	case "", "none":
		return noneNoise{}, nil

	case "gaussian":
		if spec.Sigma < 0 {
			return nil, fmt.Errorf("gaussian noise: sigma must be >= 0")
		}
		return &gaussianNoise{sigma: spec.Sigma}, nil

	case "bias-walk":
		if spec.WalkSigma < 0 {
			return nil, fmt.Errorf("bias-walk noise: walk_sigma must be >= 0")
		}
		if spec.WalkBound < 0 {
			return nil, fmt.Errorf("bias-walk noise: walk_bound must be >= 0")
		}
		return &biasWalkNoise{
			bias:      spec.Bias,
			sigma:     spec.Sigma,
			walkSigma: spec.WalkSigma,
			walkBound: spec.WalkBound,
		}, nil

	default:
		return nil, fmt.Errorf("unknown noise model %q", spec.Model)
	}
}

// noneNoise passes readings through unchanged.
type noneNoise struct{}

func (noneNoise) Advance(*rand.Rand)                      {}
func (noneNoise) Perturb(_ *rand.Rand, v float64) float64 { return v }
func (noneNoise) Reset()                                  {}

// gaussianNoise adds zero-mean white noise with fixed sigma.
type gaussianNoise struct {
	sigma float64
}

func (g *gaussianNoise) Advance(*rand.Rand) {}

func (g *gaussianNoise) Perturb(rng *rand.Rand, v float64) float64 {
	if g.sigma == 0 {
		return v
	}
	return v + rng.NormFloat64()*g.sigma
}

func (g *gaussianNoise) Reset() {}

// biasWalkNoise adds a fixed bias plus a bounded random walk, with
// optional white noise on top. The walk advances once per native sensor
// update and is zeroed on reset.
type biasWalkNoise struct {
	bias      float64
	sigma     float64
	walkSigma float64
	walkBound float64

	walk float64 // accumulated walk state
}

func (b *biasWalkNoise) Advance(rng *rand.Rand) {
	if b.walkSigma == 0 {
		return
	}
	b.walk += rng.NormFloat64() * b.walkSigma
	if b.walkBound > 0 {
		if b.walk > b.walkBound {
			b.walk = b.walkBound
		} else if b.walk < -b.walkBound {
			b.walk = -b.walkBound
		}
	}
}

func (b *biasWalkNoise) Perturb(rng *rand.Rand, v float64) float64 {
	out := v + b.bias + b.walk
	if b.sigma != 0 {
		out += rng.NormFloat64() * b.sigma
	}
	return out
}

func (b *biasWalkNoise) Reset() {
	b.walk = 0
}
