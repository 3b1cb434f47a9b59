package bridge

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/navsim/navsim/sim/sensor"
)

// rateEps absorbs float error in sim-time pacing comparisons.
const rateEps = 1e-9

// Stats are the caller-inspectable publish counters. OpenTelemetry
// counters mirror them for external collection; these remain the source
// of truth.
type Stats struct {
	Published uint64 // messages handed to the transport
	Dropped   uint64 // messages lost to timeout or send failure
	Skipped   uint64 // publish calls absorbed while degraded
	Degraded  uint64 // degradation occurrences (all classes)
}

// publisher is the per-channel publish state: sequence counter plus
// sim-time pacing and fresh-sample gating.
type publisher struct {
	spec       ChannelSpec
	ch         Channel
	seq        uint64
	lastPub    float64 // sim time of last publish (-1 = never)
	lastSample float64 // sample timestamp last published (-1 = never)
}

// resetPacing clears episode-scoped gating; the sequence counter stays
// monotonic so receivers can distinguish a stale retransmission from the
// new episode's stream.
func (p *publisher) resetPacing() {
	p.lastPub = -1
	p.lastSample = -1
}

// due applies the channel's sim-time rate cap.
func (p *publisher) due(now float64) bool {
	if p.spec.TargetRateHz == 0 || p.lastPub < 0 {
		return true
	}
	return now-p.lastPub >= 1.0/p.spec.TargetRateHz-rateEps
}

// Bridge converts observation snapshots plus frame metadata into
// messages on named channels, governed by the Uninitialized → Bridging →
// ShuttingDown → Closed state machine and per-channel QoS. If the
// transport is unavailable at setup it degrades to a no-op publisher:
// observations still flow to the caller, nothing is discarded from the
// stepping loop.
type Bridge struct {
	transport Transport
	timeout   time.Duration

	state    State
	degraded bool

	pubs     []*publisher
	bySensor map[string]*publisher
	clockPub *publisher
	tfPub    *publisher

	warned map[string]bool // degradation classes already logged
	stats  Stats
	ins    instruments
}

// New creates a bridge over the given transport. transport may be nil,
// which behaves like a transport that is unavailable at setup. timeout
// bounds each reliable send so stepping never stalls on network
// conditions.
func New(transport Transport, timeout time.Duration) *Bridge {
	return &Bridge{
		transport: transport,
		timeout:   timeout,
		warned:    make(map[string]bool),
	}
}

// Setup opens the transport and its channels. Legal exactly once, from
// Uninitialized; a second call without an intervening teardown is a
// state error. Spec validation errors are configuration failures and
// abort setup; transport unavailability is not: the bridge enters
// Bridging degraded.
func (b *Bridge) Setup(ctx context.Context, specs []ChannelSpec) error {
	if b.state != Uninitialized {
		return &StateError{Op: "Setup", State: b.state}
	}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return err
		}
	}

	ins, err := newInstruments()
	if err != nil {
		return err
	}
	b.ins = ins
	b.bySensor = make(map[string]*publisher, len(specs))

	if b.transport == nil {
		b.degrade("transport-unavailable", "transport middleware not configured; publishing disabled")
		b.state = Bridging
		return nil
	}
	if err := b.transport.Open(ctx); err != nil {
		b.degrade("transport-unavailable", "transport unavailable: %v; publishing disabled", err)
		b.state = Bridging
		return nil
	}

	for _, spec := range specs {
		ch, err := b.transport.OpenChannel(spec)
		if err != nil {
			b.degrade("transport-unavailable", "open channel %s: %v; publishing disabled", spec.Name, err)
			_ = b.transport.Close()
			b.pubs = nil
			b.bySensor = make(map[string]*publisher)
			b.clockPub, b.tfPub = nil, nil
			b.state = Bridging
			return nil
		}
		pub := &publisher{spec: spec, ch: ch, lastPub: -1, lastSample: -1}
		b.pubs = append(b.pubs, pub)
		switch spec.Schema {
		case SchemaClock:
			b.clockPub = pub
		case SchemaTF:
			b.tfPub = pub
		default:
			b.bySensor[spec.Sensor] = pub
		}
	}

	b.state = Bridging
	return nil
}

// Publish maps each valid, unseen sensor sample to its channel and hands
// it to the transport under the channel's QoS, then emits the clock
// heartbeat and transform tree at their own cadences. Legal only while
// Bridging. Transport trouble never propagates: it is absorbed as a
// counted, once-logged degradation.
func (b *Bridge) Publish(snap sensor.Snapshot, frames []Frame) error {
	if b.state != Bridging {
		return &StateError{Op: "Publish", State: b.state}
	}
	if b.degraded {
		b.stats.Skipped++
		return nil
	}
	now := snap.Time

	for name, pub := range b.bySensor {
		sample, ok := snap.Samples[name]
		if !ok || !sample.Valid {
			continue
		}
		if sample.Time == pub.lastSample || !pub.due(now) {
			continue
		}
		payload, err := encodeSample(sample)
		if err != nil {
			b.degrade("encode", "encode %s: %v", pub.spec.Name, err)
			continue
		}
		b.send(pub, Envelope{
			Channel: pub.spec.Name,
			Schema:  pub.spec.Schema,
			Header:  Header{Stamp: sample.Time, Frame: pub.spec.Frame},
			Payload: payload,
		}, now)
		pub.lastSample = sample.Time
	}

	if b.clockPub != nil && b.clockPub.due(now) {
		if payload, err := EncodeClock(ClockPayload{Sim: now}); err == nil {
			b.send(b.clockPub, Envelope{
				Channel: b.clockPub.spec.Name,
				Schema:  SchemaClock,
				Header:  Header{Stamp: now, Frame: b.clockPub.spec.Frame},
				Payload: payload,
			}, now)
		}
	}

	if b.tfPub != nil && len(frames) > 0 && b.tfPub.due(now) {
		if payload, err := EncodeTF(TFPayload{Frames: frames}); err == nil {
			b.send(b.tfPub, Envelope{
				Channel: b.tfPub.spec.Name,
				Schema:  SchemaTF,
				Header:  Header{Stamp: now, Frame: b.tfPub.spec.Frame},
				Payload: payload,
			}, now)
		}
	}

	return nil
}

// send hands one envelope to the channel under its QoS. Reliable sends
// block up to the publish timeout then convert to a dropped-this-step
// warning; best-effort sends never block and drop silently.
func (b *Bridge) send(pub *publisher, env Envelope, now float64) {
	pub.seq++
	env.Seq = pub.seq

	ctx := context.Background()
	if pub.spec.Reliability == Reliable {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	attr := metric.WithAttributes(attribute.String("channel", pub.spec.Name))
	if err := pub.ch.Send(ctx, env); err != nil {
		b.stats.Dropped++
		b.ins.dropped.Add(context.Background(), 1, attr)
		if pub.spec.Reliability == Reliable {
			b.degrade("publish-timeout", "publish %s: %v; dropping this step", pub.spec.Name, err)
		}
		return
	}
	b.stats.Published++
	b.ins.published.Add(context.Background(), 1, attr)
	pub.lastPub = now
}

// Reset re-enters Bridging for a new episode: in-flight publishes from
// the previous episode are drained before the caller reseeds sensors, so
// a stale reliable-channel retransmission cannot bleed into the new
// episode's stream. Legal only from Bridging.
func (b *Bridge) Reset(ctx context.Context) error {
	if b.state != Bridging {
		return &StateError{Op: "Reset", State: b.state}
	}
	b.Drain(ctx)
	for _, pub := range b.pubs {
		pub.resetPacing()
	}
	return nil
}

// Drain flushes all channel queues with bounded wait. Flush failures are
// degradations, not errors: the episode boundary proceeds regardless.
func (b *Bridge) Drain(ctx context.Context) {
	if b.degraded {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	for _, pub := range b.pubs {
		if err := pub.ch.Flush(ctx); err != nil {
			b.degrade("drain", "drain %s: %v", pub.spec.Name, err)
		}
	}
}

// Close drains in-flight publishes and tears the transport down.
// Idempotent: a second call is a no-op. After Close the bridge can never
// re-enter Bridging.
func (b *Bridge) Close(ctx context.Context) error {
	if b.state == Closed {
		return nil
	}
	if b.state == Uninitialized {
		b.state = Closed
		return nil
	}

	b.state = ShuttingDown
	b.Drain(ctx)
	for _, pub := range b.pubs {
		if err := pub.ch.Close(); err != nil {
			logrus.Warnf("bridge: close channel %s: %v", pub.spec.Name, err)
		}
	}
	if b.transport != nil && !b.degraded {
		if err := b.transport.Close(); err != nil {
			logrus.Warnf("bridge: close transport: %v", err)
		}
	}
	b.state = Closed
	return nil
}

// degrade counts a degradation occurrence and logs the first of its
// class.
func (b *Bridge) degrade(class, format string, args ...interface{}) {
	b.stats.Degraded++
	b.ins.degraded.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("class", class)))
	if class == "transport-unavailable" {
		b.degraded = true
	}
	if !b.warned[class] {
		b.warned[class] = true
		logrus.Warnf("bridge: "+format, args...)
	}
}

// State returns the current lifecycle phase.
func (b *Bridge) State() State { return b.state }

// Degraded reports whether the bridge is in no-op publisher mode.
func (b *Bridge) Degraded() bool { return b.degraded }

// Stats returns a copy of the publish counters.
func (b *Bridge) Stats() Stats { return b.stats }
