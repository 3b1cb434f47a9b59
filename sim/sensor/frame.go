// Package sensor models the simulated sensor suite: immutable per-kind
// specs, configurable noise strategies, due-based multi-rate updates, and
// the per-step observation snapshot handed to the caller and the bridge.
package sensor

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mount is a sensor's pose relative to the body frame. Immutable.
type Mount struct {
	Position r3.Vec  // offset from body origin, body frame, meters
	Roll     float64 // radians, applied in ZYX (yaw-pitch-roll) order
	Pitch    float64
	Yaw      float64
}

// Quat returns the mount orientation as a unit quaternion (sensor → body).
func (m Mount) Quat() quat.Number {
	return QuatFromRPY(m.Roll, m.Pitch, m.Yaw)
}

// QuatFromRPY builds a unit quaternion from roll/pitch/yaw (ZYX order).
func QuatFromRPY(roll, pitch, yaw float64) quat.Number {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)
	return quat.Number{
		Real: cy*cp*cr + sy*sp*sr,
		Imag: cy*cp*sr - sy*sp*cr,
		Jmag: cy*sp*cr + sy*cp*sr,
		Kmag: sy*cp*cr - cy*sp*sr,
	}
}

// Rotate applies the rotation q to v (q v q*).
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// RotateInv applies the inverse rotation of q to v (world → body for a
// body-to-world orientation).
func RotateInv(q quat.Number, v r3.Vec) r3.Vec {
	return Rotate(quat.Conj(q), v)
}
