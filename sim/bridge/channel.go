package bridge

import (
	"fmt"

	"github.com/navsim/navsim/sim/sensor"
)

// Reliability is the delivery guarantee class of a channel.
type Reliability string

const (
	// Reliable channels retry/buffer per the transport's durability
	// window, even under transient receiver absence.
	Reliable Reliability = "reliable"
	// BestEffort channels may drop under congestion without surfacing an
	// error to the caller.
	BestEffort Reliability = "best-effort"
)

// Durability controls late-subscriber behavior.
type Durability string

const (
	// Volatile channels deliver only messages sent after subscription.
	Volatile Durability = "volatile"
	// Transient channels replay up to HistoryDepth retained messages to
	// late subscribers.
	Transient Durability = "transient"
)

// Schema tags carried in every envelope so receivers can decode payloads
// without out-of-band knowledge.
const (
	SchemaRangeImage = "range_image"
	SchemaImu        = "imu"
	SchemaOdometry   = "odometry"
	SchemaClock      = "clock"
	SchemaTF         = "tf"
)

// ChannelSpec describes one named publish channel. Immutable, loaded
// once at bridge setup.
type ChannelSpec struct {
	Name         string      // channel name, e.g. "/camera/depth"
	Schema       string      // payload schema tag
	Reliability  Reliability //
	Durability   Durability  //
	HistoryDepth int         // retained messages for transient durability
	TargetRateHz float64     // sim-time publish rate cap (0 = every render tick)
	Sensor       string      // source sensor name ("" for clock/tf channels)
	Frame        string      // reference frame id stamped into headers
}

// Validate fails fast on missing fields and unknown QoS strings.
func (c ChannelSpec) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("channel name is required")
	}
	switch c.Schema {
	case SchemaRangeImage, SchemaImu, SchemaOdometry, SchemaClock, SchemaTF:
	default:
		return fmt.Errorf("channel %q: unknown schema %q", c.Name, c.Schema)
	}
	switch c.Reliability {
	case Reliable, BestEffort:
	default:
		return fmt.Errorf("channel %q: unknown reliability %q", c.Name, c.Reliability)
	}
	switch c.Durability {
	case Volatile, Transient:
	default:
		return fmt.Errorf("channel %q: unknown durability %q", c.Name, c.Durability)
	}
	if c.HistoryDepth < 0 {
		return fmt.Errorf("channel %q: history depth must be >= 0", c.Name)
	}
	if c.TargetRateHz < 0 {
		return fmt.Errorf("channel %q: target rate must be >= 0", c.Name)
	}
	if c.Schema != SchemaClock && c.Schema != SchemaTF && c.Sensor == "" {
		return fmt.Errorf("channel %q: sensor binding is required for schema %q", c.Name, c.Schema)
	}
	return nil
}

// schemaFor maps a sensor kind to its wire schema tag.
func schemaFor(kind sensor.Kind) string {
	switch kind {
	case sensor.KindRangeImage:
		return SchemaRangeImage
	case sensor.KindInertial:
		return SchemaImu
	default:
		return SchemaOdometry
	}
}

// DefaultChannels derives the conventional channel table from the sensor
// suite: one reliable channel per sensor, a best-effort clock heartbeat,
// and a transient transform-tree channel keyed to the lowest publish
// rate among sensors to bound bandwidth.
func DefaultChannels(specs []sensor.Spec) []ChannelSpec {
	lowest := 0.0
	channels := make([]ChannelSpec, 0, len(specs)+2)
	for _, s := range specs {
		rate := s.PublishRateHz
		if rate == 0 {
			rate = s.RateHz
		}
		if lowest == 0 || rate < lowest {
			lowest = rate
		}
		channels = append(channels, ChannelSpec{
			Name:         "/" + s.Name,
			Schema:       schemaFor(s.Kind),
			Reliability:  Reliable,
			Durability:   Volatile,
			HistoryDepth: 10,
			TargetRateHz: rate,
			Sensor:       s.Name,
			Frame:        s.Name,
		})
	}
	channels = append(channels,
		ChannelSpec{
			Name:         "/clock",
			Schema:       SchemaClock,
			Reliability:  BestEffort,
			Durability:   Volatile,
			HistoryDepth: 1,
			Frame:        "world",
		},
		ChannelSpec{
			Name:         "/tf",
			Schema:       SchemaTF,
			Reliability:  Reliable,
			Durability:   Transient,
			HistoryDepth: 10,
			TargetRateHz: lowest,
			Frame:        "world",
		},
	)
	return channels
}
