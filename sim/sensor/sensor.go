package sensor

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// timeEps absorbs float error in period comparisons against times
// derived from tick*dt products.
const timeEps = 1e-9

// RayCaster is the slice of scene geometry a range sensor needs: the
// distance to the first hit along a ray, if any within maxRange.
type RayCaster interface {
	CastRay(origin, dir r3.Vec, maxRange float64) (float64, bool)
}

// GroundTruth is the per-tick true body state handed to sensors. Sensors
// read it, never mutate it; the world recomputes it each physics tick.
type GroundTruth struct {
	Pos    r3.Vec      // world frame
	Vel    r3.Vec      // world frame
	Acc    r3.Vec      // world frame
	Orient quat.Number // body → world
	AngVel r3.Vec      // body frame

	SpecificForce r3.Vec // body frame, what an ideal accelerometer reads

	Scene RayCaster // may be nil (range samples then miss everywhere)
}

// Sensor is the uniform capability every variant exposes to the Registry.
// Integrate runs every physics tick (noise state fidelity at native
// rate); Sample runs only when the sensor is due at a render tick.
type Sensor interface {
	Name() string
	Kind() Kind
	// Due reports whether the publish period has elapsed since the last
	// sample update.
	Due(now float64) bool
	// Integrate advances internal state (e.g. bias random walk) at the
	// sensor's native rate. dt is the physics timestep.
	Integrate(now, dt float64, gt GroundTruth)
	// Sample overwrites the latest sample in place from ground truth:
	// deterministic transform, then noise, then range validation.
	// Out-of-range readings are reported invalid, never clipped.
	Sample(now float64, gt GroundTruth)
	// Latest returns the sensor-owned sample. Callers must Clone before
	// retaining it.
	Latest() Sample
	// EverValid reports whether the sensor has produced at least one
	// valid sample since the last reset.
	EverValid() bool
	// Reset clears validity and accumulated noise state and installs the
	// episode noise stream.
	Reset(rng *rand.Rand)
}

// New builds the sensor for a validated spec.
func New(spec Spec) (Sensor, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	base := sensorBase{spec: spec, publishPeriod: spec.publishPeriod()}
	switch spec.Kind {
	case KindRangeImage:
		s := &rangeImageSensor{sensorBase: base}
		s.noise, _ = NewNoiseModel(spec.Noise)
		s.resetSample()
		return s, nil
	case KindInertial:
		s := &inertialSensor{sensorBase: base, nativePeriod: spec.nativePeriod()}
		for i := range s.models {
			s.models[i], _ = NewNoiseModel(spec.Noise)
		}
		s.resetSample()
		return s, nil
	case KindPoseVelocity:
		s := &poseVelSensor{sensorBase: base}
		s.noise, _ = NewNoiseModel(spec.Noise)
		s.resetSample()
		return s, nil
	default:
		return nil, fmt.Errorf("sensor %q: unknown kind %v", spec.Name, spec.Kind)
	}
}

// sensorBase carries the state common to every variant.
type sensorBase struct {
	spec          Spec
	publishPeriod float64
	rng           *rand.Rand
	latest        Sample
	everValid     bool
}

func (b *sensorBase) Name() string { return b.spec.Name }
func (b *sensorBase) Kind() Kind   { return b.spec.Kind }

func (b *sensorBase) Due(now float64) bool {
	return now-b.latest.Time >= b.publishPeriod-timeEps
}

func (b *sensorBase) Latest() Sample  { return b.latest }
func (b *sensorBase) EverValid() bool { return b.everValid }

// markUpdated stamps the sample after an in-place overwrite.
func (b *sensorBase) markUpdated(now float64, valid bool) {
	b.latest.Time = now
	b.latest.Valid = valid
	if valid {
		b.everValid = true
	}
}

// === Range image ===

type rangeImageSensor struct {
	sensorBase
	noise NoiseModel
}

func (s *rangeImageSensor) resetSample() {
	spec := s.spec
	s.latest = Sample{
		Kind: KindRangeImage,
		Range: &RangeImage{
			Width:      spec.Width,
			Height:     spec.Height,
			Intrinsics: intrinsicsFor(spec),
			MinRange:   spec.MinRange,
			MaxRange:   spec.MaxRange,
			Depths:     make([]float32, spec.Width*spec.Height),
		},
	}
	s.everValid = false
}

func (s *rangeImageSensor) Integrate(now, dt float64, gt GroundTruth) {}

func (s *rangeImageSensor) Sample(now float64, gt GroundTruth) {
	img := s.latest.Range
	mountQ := s.spec.Mount.Quat()
	sensorQ := quat.Mul(gt.Orient, mountQ)
	origin := r3.Add(gt.Pos, Rotate(gt.Orient, s.spec.Mount.Position))

	in := img.Intrinsics
	nan := float32(math.NaN())
	for v := 0; v < img.Height; v++ {
		for u := 0; u < img.Width; u++ {
			// Pinhole ray in the sensor frame: x forward, y left, z up.
			dir := r3.Unit(r3.Vec{
				X: 1,
				Y: -(float64(u) - in.CX) / in.FX,
				Z: -(float64(v) - in.CY) / in.FY,
			})
			d, hit := castRay(gt.Scene, origin, Rotate(sensorQ, dir), img.MaxRange)
			idx := v*img.Width + u
			if !hit {
				img.Depths[idx] = nan
				continue
			}
			d = s.noise.Perturb(s.rng, d)
			if d < img.MinRange || d > img.MaxRange {
				img.Depths[idx] = nan
				continue
			}
			img.Depths[idx] = float32(d)
		}
	}
	s.markUpdated(now, true)
}

func (s *rangeImageSensor) Reset(rng *rand.Rand) {
	s.rng = rng
	s.noise.Reset()
	s.resetSample()
}

func castRay(sc RayCaster, origin, dir r3.Vec, maxRange float64) (float64, bool) {
	if sc == nil {
		return 0, false
	}
	return sc.CastRay(origin, dir, maxRange)
}

// intrinsicsFor derives pinhole intrinsics from resolution and FOV.
func intrinsicsFor(spec Spec) Intrinsics {
	fx := float64(spec.Width) / (2 * math.Tan(spec.FOVX/2))
	return Intrinsics{
		FX: fx,
		FY: fx, // square pixels
		CX: float64(spec.Width-1) / 2,
		CY: float64(spec.Height-1) / 2,
	}
}

// === Inertial ===

// axis order for the shared noise model array.
const (
	axAccelX = iota
	axAccelY
	axAccelZ
	axGyroX
	axGyroY
	axGyroZ
	axCount
)

type inertialSensor struct {
	sensorBase
	nativePeriod float64
	models       [axCount]NoiseModel

	lastNative   float64 // time of the last native-rate internal update
	integrations int     // native-rate updates since reset
}

func (s *inertialSensor) resetSample() {
	s.latest = Sample{Kind: KindInertial, Inertial: &InertialReading{}}
	s.everValid = false
	s.lastNative = 0
	s.integrations = 0
}

// Integrate advances the per-axis walk state once per native period. The
// native rate may exceed the publish rate: a 100 Hz inertial channel
// downsampled to 20 Hz still walks its bias at 100 Hz.
func (s *inertialSensor) Integrate(now, dt float64, gt GroundTruth) {
	if now-s.lastNative < s.nativePeriod-timeEps {
		return
	}
	s.lastNative = now
	s.integrations++
	for i := range s.models {
		s.models[i].Advance(s.rng)
	}
}

func (s *inertialSensor) Sample(now float64, gt GroundTruth) {
	r := s.latest.Inertial
	sf := RotateInv(s.spec.Mount.Quat(), gt.SpecificForce)
	w := RotateInv(s.spec.Mount.Quat(), gt.AngVel)
	r.Accel = [3]float64{
		s.models[axAccelX].Perturb(s.rng, sf.X),
		s.models[axAccelY].Perturb(s.rng, sf.Y),
		s.models[axAccelZ].Perturb(s.rng, sf.Z),
	}
	r.Gyro = [3]float64{
		s.models[axGyroX].Perturb(s.rng, w.X),
		s.models[axGyroY].Perturb(s.rng, w.Y),
		s.models[axGyroZ].Perturb(s.rng, w.Z),
	}

	valid := norm3(r.Accel) <= s.spec.MaxAccel && norm3(r.Gyro) <= s.spec.MaxAngVel
	s.markUpdated(now, valid)
}

func (s *inertialSensor) Reset(rng *rand.Rand) {
	s.rng = rng
	for i := range s.models {
		s.models[i].Reset()
	}
	s.resetSample()
}

// === Pose/velocity ===

type poseVelSensor struct {
	sensorBase
	noise NoiseModel
}

func (s *poseVelSensor) resetSample() {
	s.latest = Sample{Kind: KindPoseVelocity, PoseVel: &PoseVelReading{}}
	s.everValid = false
}

func (s *poseVelSensor) Integrate(now, dt float64, gt GroundTruth) {}

func (s *poseVelSensor) Sample(now float64, gt GroundTruth) {
	r := s.latest.PoseVel
	r.Pos = [3]float64{
		s.noise.Perturb(s.rng, gt.Pos.X),
		s.noise.Perturb(s.rng, gt.Pos.Y),
		s.noise.Perturb(s.rng, gt.Pos.Z),
	}
	r.Vel = [3]float64{
		s.noise.Perturb(s.rng, gt.Vel.X),
		s.noise.Perturb(s.rng, gt.Vel.Y),
		s.noise.Perturb(s.rng, gt.Vel.Z),
	}
	r.Orient = [4]float64{gt.Orient.Real, gt.Orient.Imag, gt.Orient.Jmag, gt.Orient.Kmag}

	valid := s.inBounds(r.Pos)
	s.markUpdated(now, valid)
}

func (s *poseVelSensor) inBounds(pos [3]float64) bool {
	min, max := s.spec.BoundsMin, s.spec.BoundsMax
	if min == (r3.Vec{}) && max == (r3.Vec{}) {
		return true
	}
	return pos[0] >= min.X && pos[0] <= max.X &&
		pos[1] >= min.Y && pos[1] <= max.Y &&
		pos[2] >= min.Z && pos[2] <= max.Z
}

func (s *poseVelSensor) Reset(rng *rand.Rand) {
	s.rng = rng
	s.noise.Reset()
	s.resetSample()
}

func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
