package sensor

// Intrinsics is the pinhole camera model embedded in every range image so
// receivers can reproject pixels without a side channel.
type Intrinsics struct {
	FX float64
	FY float64
	CX float64
	CY float64
}

// RangeImage is a depth-camera payload: per-pixel range along the ray in
// row-major order. Out-of-range or missed rays are NaN, never clipped.
type RangeImage struct {
	Width      int
	Height     int
	Intrinsics Intrinsics
	MinRange   float64
	MaxRange   float64
	Depths     []float32
}

// InertialReading is an accelerometer/gyroscope payload in the body frame.
type InertialReading struct {
	Accel [3]float64 // specific force, m/s²
	Gyro  [3]float64 // angular velocity, rad/s
}

// PoseVelReading is an odometry payload in the world frame.
type PoseVelReading struct {
	Pos    [3]float64
	Vel    [3]float64
	Orient [4]float64 // unit quaternion, w-x-y-z
}

// Sample is one sensor measurement. Exactly one payload pointer matching
// Kind is non-nil. A sample starts invalid at construction, is
// overwritten in place on each due update, and returns to invalid on
// reset. The owning sensor retains it; consumers receive clones.
type Sample struct {
	Time  float64 // simulation time of the last update
	Valid bool
	Kind  Kind

	Range    *RangeImage
	Inertial *InertialReading
	PoseVel  *PoseVelReading
}

// Clone deep-copies the sample, including the range buffer, so snapshot
// consumers can never alias sensor-owned state.
func (s Sample) Clone() Sample {
	out := s
	if s.Range != nil {
		img := *s.Range
		img.Depths = make([]float32, len(s.Range.Depths))
		copy(img.Depths, s.Range.Depths)
		out.Range = &img
	}
	if s.Inertial != nil {
		r := *s.Inertial
		out.Inertial = &r
	}
	if s.PoseVel != nil {
		r := *s.PoseVel
		out.PoseVel = &r
	}
	return out
}
