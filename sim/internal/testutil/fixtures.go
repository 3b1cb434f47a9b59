// Package testutil provides shared test fixtures for the navsim
// environment: a small, fast sensor suite and helpers used across sim/
// and its sub-package test suites.
package testutil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/navsim/navsim/sim/sensor"
)

// Specs returns a miniature noise-free sensor suite: an 8x6 depth camera
// at 20 Hz, a 100 Hz IMU published at 20 Hz, and 20 Hz odometry. Small
// images keep stepping tests fast; no noise keeps payloads exactly
// predictable.
func Specs() []sensor.Spec {
	return []sensor.Spec{
		{
			Name:   "depth",
			Kind:   sensor.KindRangeImage,
			RateHz: 20,
			Mount:  sensor.Mount{Position: r3.Vec{X: 0.1}},
			Width:  8, Height: 6,
			FOVX:     90 * math.Pi / 180,
			MinRange: 0.1, MaxRange: 30.0,
		},
		{
			Name:          "imu",
			Kind:          sensor.KindInertial,
			RateHz:        100,
			PublishRateHz: 20,
			MaxAccel:      50, MaxAngVel: 20,
		},
		{
			Name:   "odom",
			Kind:   sensor.KindPoseVelocity,
			RateHz: 20,
		},
	}
}

// NoisySpecs returns the same suite with each kind's conventional noise
// strategy enabled.
func NoisySpecs() []sensor.Spec {
	specs := Specs()
	specs[0].Noise = sensor.NoiseSpec{Model: "gaussian", Sigma: 0.01}
	specs[1].Noise = sensor.NoiseSpec{
		Model: "bias-walk", Bias: 0.02, Sigma: 0.005,
		WalkSigma: 0.0005, WalkBound: 0.05,
	}
	specs[2].Noise = sensor.NoiseSpec{Model: "gaussian", Sigma: 0.005}
	return specs
}

// GroundTruthAt returns a stationary hover ground truth at the given
// position with identity orientation: the accelerometer reads +g along
// body z.
func GroundTruthAt(pos r3.Vec, gravity float64) sensor.GroundTruth {
	return sensor.GroundTruth{
		Pos:           pos,
		Orient:        sensor.QuatFromRPY(0, 0, 0),
		SpecificForce: r3.Vec{Z: gravity},
	}
}
