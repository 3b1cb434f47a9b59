package cmd

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/navsim/navsim/sim/sensor"
)

// SensorsConfigFile is the YAML shape of the sensor table.
type SensorsConfigFile struct {
	Sensors []SensorEntry `yaml:"sensors"`
}

// SensorEntry is one configured sensor. Angles are degrees in YAML and
// converted to radians for the core.
type SensorEntry struct {
	Name          string     `yaml:"name"`
	Kind          string     `yaml:"kind"` // range-image, inertial, pose-velocity
	RateHz        float64    `yaml:"rate_hz"`
	PublishRateHz float64    `yaml:"publish_rate_hz"` // 0 = native rate
	Mount         MountEntry `yaml:"mount"`
	Noise         NoiseEntry `yaml:"noise"`

	// range-image
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FOVXDeg   float64 `yaml:"fov_x_deg"`
	MinRangeM float64 `yaml:"min_range_m"`
	MaxRangeM float64 `yaml:"max_range_m"`

	// inertial
	MaxAccel  float64 `yaml:"max_accel"`
	MaxAngVel float64 `yaml:"max_ang_vel"`

	// pose-velocity (optional position bounds)
	BoundsMin []float64 `yaml:"bounds_min"`
	BoundsMax []float64 `yaml:"bounds_max"`
}

// MountEntry is the sensor mount pose relative to the body frame.
type MountEntry struct {
	Position []float64 `yaml:"position"` // [x, y, z] meters
	RPYDeg   []float64 `yaml:"rpy_deg"`  // [roll, pitch, yaw] degrees
}

// NoiseEntry selects the per-sensor noise strategy.
type NoiseEntry struct {
	Model     string  `yaml:"model"` // none, gaussian, bias-walk
	Sigma     float64 `yaml:"sigma"`
	Bias      float64 `yaml:"bias"`
	WalkSigma float64 `yaml:"walk_sigma"`
	WalkBound float64 `yaml:"walk_bound"`
}

// DefaultSensorSpecs mirrors the conventional suite: a 20 Hz depth
// camera, a 100 Hz IMU published at 20 Hz, and 20 Hz ground-truth
// odometry with light gaussian noise.
func DefaultSensorSpecs() []sensor.Spec {
	return []sensor.Spec{
		{
			Name:   "depth",
			Kind:   sensor.KindRangeImage,
			RateHz: 20,
			Mount:  sensor.Mount{Position: r3.Vec{X: 0.1}},
			Noise:  sensor.NoiseSpec{Model: "gaussian", Sigma: 0.01},
			Width:  640, Height: 480,
			FOVX:     90 * math.Pi / 180,
			MinRange: 0.1, MaxRange: 30.0,
		},
		{
			Name:          "imu",
			Kind:          sensor.KindInertial,
			RateHz:        100,
			PublishRateHz: 20,
			Noise: sensor.NoiseSpec{
				Model: "bias-walk", Bias: 0.02, Sigma: 0.005,
				WalkSigma: 0.0005, WalkBound: 0.05,
			},
			MaxAccel: 50, MaxAngVel: 20,
		},
		{
			Name:   "odom",
			Kind:   sensor.KindPoseVelocity,
			RateHz: 20,
			Noise:  sensor.NoiseSpec{Model: "gaussian", Sigma: 0.005},
		},
	}
}

// LoadSensorSpecs reads the sensor YAML at path, or returns the built-in
// defaults when path is empty. Unknown fields are rejected.
func LoadSensorSpecs(path string) ([]sensor.Spec, error) {
	if path == "" {
		return DefaultSensorSpecs(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sensor config: %w", err)
	}
	defer f.Close()

	var file SensorsConfigFile
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse sensor config %s: %w", path, err)
	}
	if len(file.Sensors) == 0 {
		return nil, fmt.Errorf("sensor config %s: no sensors defined", path)
	}

	specs := make([]sensor.Spec, 0, len(file.Sensors))
	for _, entry := range file.Sensors {
		spec, err := entry.ToSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ToSpec converts the YAML entry into the core's immutable spec,
// converting degrees to radians. Full validation happens in
// sensor.Spec.Validate.
func (e SensorEntry) ToSpec() (sensor.Spec, error) {
	kind, err := sensor.ParseKind(e.Kind)
	if err != nil {
		return sensor.Spec{}, fmt.Errorf("sensor %q: %w", e.Name, err)
	}
	mount, err := e.Mount.toMount(e.Name)
	if err != nil {
		return sensor.Spec{}, err
	}
	spec := sensor.Spec{
		Name:          e.Name,
		Kind:          kind,
		RateHz:        e.RateHz,
		PublishRateHz: e.PublishRateHz,
		Mount:         mount,
		Noise: sensor.NoiseSpec{
			Model:     e.Noise.Model,
			Sigma:     e.Noise.Sigma,
			Bias:      e.Noise.Bias,
			WalkSigma: e.Noise.WalkSigma,
			WalkBound: e.Noise.WalkBound,
		},
		Width:     e.Width,
		Height:    e.Height,
		FOVX:      e.FOVXDeg * math.Pi / 180,
		MinRange:  e.MinRangeM,
		MaxRange:  e.MaxRangeM,
		MaxAccel:  e.MaxAccel,
		MaxAngVel: e.MaxAngVel,
	}
	if spec.BoundsMin, err = toVec(e.BoundsMin, e.Name, "bounds_min"); err != nil {
		return sensor.Spec{}, err
	}
	if spec.BoundsMax, err = toVec(e.BoundsMax, e.Name, "bounds_max"); err != nil {
		return sensor.Spec{}, err
	}
	return spec, nil
}

func (m MountEntry) toMount(name string) (sensor.Mount, error) {
	pos, err := toVec(m.Position, name, "mount.position")
	if err != nil {
		return sensor.Mount{}, err
	}
	mount := sensor.Mount{Position: pos}
	if len(m.RPYDeg) > 0 {
		if len(m.RPYDeg) != 3 {
			return sensor.Mount{}, fmt.Errorf("sensor %q: mount.rpy_deg needs 3 elements", name)
		}
		mount.Roll = m.RPYDeg[0] * math.Pi / 180
		mount.Pitch = m.RPYDeg[1] * math.Pi / 180
		mount.Yaw = m.RPYDeg[2] * math.Pi / 180
	}
	return mount, nil
}

func toVec(v []float64, name, field string) (r3.Vec, error) {
	if len(v) == 0 {
		return r3.Vec{}, nil
	}
	if len(v) != 3 {
		return r3.Vec{}, fmt.Errorf("sensor %q: %s needs 3 elements", name, field)
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
