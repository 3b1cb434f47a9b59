package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navsim/navsim/sim/sensor"
)

func TestChannelSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ChannelSpec)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing name", mutate: func(c *ChannelSpec) { c.Name = "" }, wantErr: "name is required"},
		{name: "unknown schema", mutate: func(c *ChannelSpec) { c.Schema = "pointcloud" }, wantErr: "unknown schema"},
		{name: "unknown reliability", mutate: func(c *ChannelSpec) { c.Reliability = "exactly-once" }, wantErr: "unknown reliability"},
		{name: "unknown durability", mutate: func(c *ChannelSpec) { c.Durability = "persistent" }, wantErr: "unknown durability"},
		{name: "negative history", mutate: func(c *ChannelSpec) { c.HistoryDepth = -1 }, wantErr: "history depth"},
		{name: "negative rate", mutate: func(c *ChannelSpec) { c.TargetRateHz = -1 }, wantErr: "target rate"},
		{name: "sensor channel without binding", mutate: func(c *ChannelSpec) { c.Sensor = "" }, wantErr: "sensor binding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := odomChannel()
			if tt.mutate != nil {
				tt.mutate(&spec)
			}
			err := spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestChannelSpecValidate_ClockAndTFNeedNoSensor(t *testing.T) {
	assert.NoError(t, clockChannel().Validate())
	assert.NoError(t, tfChannel().Validate())
}

func TestDefaultChannels(t *testing.T) {
	specs := []sensor.Spec{
		{Name: "depth", Kind: sensor.KindRangeImage, RateHz: 20},
		{Name: "imu", Kind: sensor.KindInertial, RateHz: 100, PublishRateHz: 10},
		{Name: "odom", Kind: sensor.KindPoseVelocity, RateHz: 20},
	}
	channels := DefaultChannels(specs)
	require.Len(t, channels, 5)

	byName := make(map[string]ChannelSpec, len(channels))
	for _, c := range channels {
		require.NoError(t, c.Validate(), c.Name)
		byName[c.Name] = c
	}

	depth := byName["/depth"]
	assert.Equal(t, SchemaRangeImage, depth.Schema)
	assert.Equal(t, Reliable, depth.Reliability)
	assert.Equal(t, Volatile, depth.Durability)
	assert.Equal(t, "depth", depth.Sensor)
	assert.Equal(t, 20.0, depth.TargetRateHz)

	imu := byName["/imu"]
	assert.Equal(t, SchemaImu, imu.Schema)
	assert.Equal(t, 10.0, imu.TargetRateHz, "publish rate wins over native rate")

	assert.Equal(t, SchemaOdometry, byName["/odom"].Schema)

	clock := byName["/clock"]
	assert.Equal(t, BestEffort, clock.Reliability)
	assert.Equal(t, "", clock.Sensor)

	tf := byName["/tf"]
	assert.Equal(t, Transient, tf.Durability)
	assert.Equal(t, 10.0, tf.TargetRateHz, "transform tree paces at the slowest sensor")
	assert.Equal(t, "world", tf.Frame)
}

func TestEncodeSample_CoversEveryKind(t *testing.T) {
	img := sensor.Sample{
		Kind: sensor.KindRangeImage,
		Range: &sensor.RangeImage{
			Width: 2, Height: 1,
			Intrinsics: sensor.Intrinsics{FX: 1, FY: 1, CX: 0.5, CY: 0},
			MinRange:   0.1, MaxRange: 30,
			Depths: []float32{1.5, 2.5},
		},
	}
	data, err := encodeSample(img)
	require.NoError(t, err)
	p, err := DecodeRangeImage(data)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Width)
	assert.Equal(t, []float32{1.5, 2.5}, p.Depths)

	imu := sensor.Sample{
		Kind:     sensor.KindInertial,
		Inertial: &sensor.InertialReading{Accel: [3]float64{0, 0, 9.81}, Gyro: [3]float64{0, 0, 0.5}},
	}
	data, err = encodeSample(imu)
	require.NoError(t, err)
	ip, err := DecodeImu(data)
	require.NoError(t, err)
	assert.Equal(t, imu.Inertial.Accel, ip.Accel)
	assert.Equal(t, imu.Inertial.Gyro, ip.Gyro)

	_, err = encodeSample(sensor.Sample{Kind: sensor.Kind(99)})
	assert.Error(t, err)
}
