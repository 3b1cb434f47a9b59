package bridge

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/navsim/navsim/sim/sensor"
)

// Header stamps every message with simulation time (never wall clock)
// and the reference frame of its payload.
type Header struct {
	Stamp float64 `msgpack:"stamp"` // simulation time, seconds
	Frame string  `msgpack:"frame"`
}

// Envelope is the wire unit: channel routing metadata plus a
// msgpack-encoded payload matching the Schema tag.
type Envelope struct {
	Channel string `msgpack:"channel"`
	Schema  string `msgpack:"schema"`
	Seq     uint64 `msgpack:"seq"`
	Header  Header `msgpack:"header"`
	Payload []byte `msgpack:"payload"`
}

// EncodeEnvelope serializes an envelope for byte-stream transports.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	return msgpack.Marshal(env)
}

// DecodeEnvelope deserializes an envelope from a byte-stream transport.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// RangeImagePayload is the wire form of a range image, intrinsics
// included. Depths stay float32 end-to-end so the round trip is exact.
type RangeImagePayload struct {
	Width    int       `msgpack:"width"`
	Height   int       `msgpack:"height"`
	FX       float64   `msgpack:"fx"`
	FY       float64   `msgpack:"fy"`
	CX       float64   `msgpack:"cx"`
	CY       float64   `msgpack:"cy"`
	MinRange float64   `msgpack:"min_range"`
	MaxRange float64   `msgpack:"max_range"`
	Depths   []float32 `msgpack:"depths"`
}

// ImuPayload is the wire form of an inertial reading, body frame.
type ImuPayload struct {
	Accel [3]float64 `msgpack:"accel"`
	Gyro  [3]float64 `msgpack:"gyro"`
}

// OdomPayload is the wire form of a pose/velocity reading, world frame.
type OdomPayload struct {
	Pos    [3]float64 `msgpack:"pos"`
	Vel    [3]float64 `msgpack:"vel"`
	Orient [4]float64 `msgpack:"orient"` // w-x-y-z
}

// ClockPayload is the heartbeat carrying current simulation time.
type ClockPayload struct {
	Sim float64 `msgpack:"sim"`
}

// TFPayload advertises the frame tree (world → body → sensor mounts).
type TFPayload struct {
	Frames []Frame `msgpack:"frames"`
}

// encodeSample converts a sensor sample into its wire payload. Noise was
// injected once at sample time; encoding is lossless.
func encodeSample(s sensor.Sample) ([]byte, error) {
	switch s.Kind {
	case sensor.KindRangeImage:
		img := s.Range
		return msgpack.Marshal(RangeImagePayload{
			Width:    img.Width,
			Height:   img.Height,
			FX:       img.Intrinsics.FX,
			FY:       img.Intrinsics.FY,
			CX:       img.Intrinsics.CX,
			CY:       img.Intrinsics.CY,
			MinRange: img.MinRange,
			MaxRange: img.MaxRange,
			Depths:   img.Depths,
		})
	case sensor.KindInertial:
		return msgpack.Marshal(ImuPayload{Accel: s.Inertial.Accel, Gyro: s.Inertial.Gyro})
	case sensor.KindPoseVelocity:
		return msgpack.Marshal(OdomPayload{
			Pos:    s.PoseVel.Pos,
			Vel:    s.PoseVel.Vel,
			Orient: s.PoseVel.Orient,
		})
	default:
		return nil, fmt.Errorf("encode sample: unknown kind %v", s.Kind)
	}
}

// EncodeClock encodes a clock heartbeat payload.
func EncodeClock(p ClockPayload) ([]byte, error) {
	return msgpack.Marshal(p)
}

// EncodeTF encodes a transform-tree payload.
func EncodeTF(p TFPayload) ([]byte, error) {
	return msgpack.Marshal(p)
}

// DecodeRangeImage decodes a range-image payload.
func DecodeRangeImage(data []byte) (RangeImagePayload, error) {
	var p RangeImagePayload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}

// DecodeImu decodes an inertial payload.
func DecodeImu(data []byte) (ImuPayload, error) {
	var p ImuPayload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}

// DecodeOdom decodes an odometry payload.
func DecodeOdom(data []byte) (OdomPayload, error) {
	var p OdomPayload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}

// DecodeClock decodes a clock heartbeat payload.
func DecodeClock(data []byte) (ClockPayload, error) {
	var p ClockPayload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}

// DecodeTF decodes a transform-tree payload.
func DecodeTF(data []byte) (TFPayload, error) {
	var p TFPayload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}
