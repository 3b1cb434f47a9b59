package sensor

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind identifies a sensor variant. The set is closed: configuration is
// parsed into one of these, never dispatched dynamically.
type Kind int

const (
	KindRangeImage Kind = iota // depth camera producing a range image
	KindInertial               // accelerometer + gyroscope pair
	KindPoseVelocity           // ground-truth odometry (pose + velocity)
)

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindRangeImage:
		return "range-image"
	case KindInertial:
		return "inertial"
	case KindPoseVelocity:
		return "pose-velocity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "range-image":
		return KindRangeImage, nil
	case "inertial":
		return KindInertial, nil
	case "pose-velocity":
		return KindPoseVelocity, nil
	default:
		return 0, fmt.Errorf("unknown sensor kind %q", s)
	}
}

// NoiseSpec selects and parameterizes the noise strategy for a sensor.
// The model is a product decision per sensor, never hard-coded: any kind
// may run "none", "gaussian", or "bias-walk".
type NoiseSpec struct {
	Model     string  // "none" (default), "gaussian", "bias-walk"
	Sigma     float64 // white noise stddev (gaussian, bias-walk)
	Bias      float64 // fixed additive bias (bias-walk)
	WalkSigma float64 // random-walk increment stddev per native update (bias-walk)
	WalkBound float64 // absolute bound on accumulated walk (bias-walk, 0 = unbounded)
}

// Spec is the immutable description of one configured sensor. Owned by
// the Registry after construction; Validate is called before any sensor
// is built from it.
type Spec struct {
	Name          string  // unique sensor name, also the payload channel key
	Kind          Kind    //
	RateHz        float64 // native update rate (noise integration fidelity)
	PublishRateHz float64 // rate gating what reaches the assembler (0 = native)
	Mount         Mount   // pose relative to the body frame
	Noise         NoiseSpec

	// Range-image geometry (KindRangeImage only).
	Width    int     // pixels
	Height   int     // pixels
	FOVX     float64 // horizontal field of view, radians
	MinRange float64 // meters; returns below this are invalid
	MaxRange float64 // meters; returns beyond this are invalid

	// Inertial validity bounds (KindInertial only).
	MaxAccel  float64 // m/s², specific-force norm above this marks the sample invalid
	MaxAngVel float64 // rad/s, angular-rate norm above this marks the sample invalid

	// Pose-velocity validity bounds (KindPoseVelocity only). Zero values
	// on both mean unbounded.
	BoundsMin r3.Vec
	BoundsMax r3.Vec
}

// Validate fails fast on missing required fields and kind-specific holes.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("sensor name is required")
	}
	if s.RateHz <= 0 {
		return fmt.Errorf("sensor %q: rate_hz must be > 0", s.Name)
	}
	if s.PublishRateHz < 0 {
		return fmt.Errorf("sensor %q: publish_rate_hz must be >= 0", s.Name)
	}
	if s.PublishRateHz > s.RateHz {
		return fmt.Errorf("sensor %q: publish_rate_hz %.3f exceeds native rate %.3f",
			s.Name, s.PublishRateHz, s.RateHz)
	}
	switch s.Kind {
	case KindRangeImage:
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("sensor %q: range-image resolution is required", s.Name)
		}
		if s.FOVX <= 0 {
			return fmt.Errorf("sensor %q: range-image fov is required", s.Name)
		}
		if s.MaxRange <= s.MinRange || s.MaxRange <= 0 {
			return fmt.Errorf("sensor %q: invalid range bounds [%.3f, %.3f]",
				s.Name, s.MinRange, s.MaxRange)
		}
	case KindInertial:
		if s.MaxAccel <= 0 || s.MaxAngVel <= 0 {
			return fmt.Errorf("sensor %q: inertial validity bounds are required", s.Name)
		}
	case KindPoseVelocity:
		// Bounds are optional; zero value means unbounded.
	default:
		return fmt.Errorf("sensor %q: unknown kind %v", s.Name, s.Kind)
	}
	if _, err := NewNoiseModel(s.Noise); err != nil {
		return fmt.Errorf("sensor %q: %w", s.Name, err)
	}
	return nil
}

// publishPeriod is the period gating what reaches the assembler.
func (s Spec) publishPeriod() float64 {
	rate := s.PublishRateHz
	if rate == 0 {
		rate = s.RateHz
	}
	return 1.0 / rate
}

// nativePeriod is the internal update period (noise integration).
func (s Spec) nativePeriod() float64 {
	return 1.0 / s.RateHz
}
