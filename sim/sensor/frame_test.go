package sensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVecInDelta(t *testing.T, want, got r3.Vec, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta)
	assert.InDelta(t, want.Y, got.Y, delta)
	assert.InDelta(t, want.Z, got.Z, delta)
}

func TestQuatFromRPY(t *testing.T) {
	tests := []struct {
		name             string
		roll, pitch, yaw float64
		in, want         r3.Vec
	}{
		{name: "identity", in: r3.Vec{X: 1}, want: r3.Vec{X: 1}},
		{name: "yaw 90 maps x to y", yaw: math.Pi / 2, in: r3.Vec{X: 1}, want: r3.Vec{Y: 1}},
		{name: "pitch 90 maps x to -z", pitch: math.Pi / 2, in: r3.Vec{X: 1}, want: r3.Vec{Z: -1}},
		{name: "roll 90 maps y to z", roll: math.Pi / 2, in: r3.Vec{Y: 1}, want: r3.Vec{Z: 1}},
		{name: "yaw 180", yaw: math.Pi, in: r3.Vec{X: 1}, want: r3.Vec{X: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromRPY(tt.roll, tt.pitch, tt.yaw)
			assert.InDelta(t, 1.0, quat.Abs(q), 1e-12, "unit quaternion")
			assertVecInDelta(t, tt.want, Rotate(q, tt.in), 1e-12)
		})
	}
}

func TestRotateInv_UndoesRotate(t *testing.T) {
	q := QuatFromRPY(0.3, -0.7, 1.9)
	v := r3.Vec{X: 1.2, Y: -0.4, Z: 2.5}
	assertVecInDelta(t, v, RotateInv(q, Rotate(q, v)), 1e-12)
}

func TestMountQuat_MatchesRPY(t *testing.T) {
	m := Mount{Roll: 0.1, Pitch: -0.2, Yaw: 0.3}
	assert.Equal(t, QuatFromRPY(0.1, -0.2, 0.3), m.Quat())
}
