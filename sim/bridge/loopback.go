package bridge

import (
	"context"
	"fmt"
	"sync"
)

// Loopback is an in-process transport: envelopes are delivered to
// subscribers over buffered Go channels. Reliable channels block (up to
// the send context) when a subscriber's buffer is full; best-effort
// channels drop for slow subscribers. Transient channels replay their
// retained history ring to late subscribers. Used by tests and the
// offline CLI mode.
type Loopback struct {
	mu       sync.Mutex
	open     bool
	channels map[string]*loopChannel
}

// NewLoopback creates an unopened loopback transport.
func NewLoopback() *Loopback {
	return &Loopback{channels: make(map[string]*loopChannel)}
}

// Open marks the transport available.
func (l *Loopback) Open(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = true
	return nil
}

// OpenChannel creates the publish endpoint for one spec.
func (l *Loopback) OpenChannel(spec ChannelSpec) (Channel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return nil, fmt.Errorf("loopback: not open")
	}
	if _, exists := l.channels[spec.Name]; exists {
		return nil, fmt.Errorf("loopback: channel %s already open", spec.Name)
	}
	ch := &loopChannel{spec: spec}
	l.channels[spec.Name] = ch
	return ch, nil
}

// Close tears down all channels and their subscriptions.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.channels {
		ch.closeSubs()
	}
	l.channels = make(map[string]*loopChannel)
	l.open = false
	return nil
}

// Subscribe returns a delivery channel for the named channel with the
// given buffer size, plus a cancel function. Transient channels replay
// retained history before live delivery begins.
func (l *Loopback) Subscribe(name string, buf int) (<-chan Envelope, func(), error) {
	l.mu.Lock()
	ch, ok := l.channels[name]
	l.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("loopback: no channel %s", name)
	}
	return ch.subscribe(buf)
}

// loopChannel is one named channel: its subscribers and, for transient
// durability, a bounded history ring.
type loopChannel struct {
	spec    ChannelSpec
	mu      sync.Mutex
	subs    []chan Envelope
	history []Envelope
	closed  bool
}

func (c *loopChannel) subscribe(buf int) (<-chan Envelope, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, fmt.Errorf("loopback: channel %s closed", c.spec.Name)
	}
	if buf < len(c.history)+1 {
		buf = len(c.history) + 1
	}
	sub := make(chan Envelope, buf)
	// Late subscribers to a transient channel see the retained window.
	if c.spec.Durability == Transient {
		for _, env := range c.history {
			sub <- env
		}
	}
	c.subs = append(c.subs, sub)

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s == sub {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				close(sub)
				return
			}
		}
	}
	return sub, cancel, nil
}

// Send delivers the envelope to each subscriber under the channel's QoS
// and retains it if durability is transient.
func (c *loopChannel) Send(ctx context.Context, env Envelope) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("loopback: channel %s closed", c.spec.Name)
	}
	if c.spec.Durability == Transient {
		c.history = append(c.history, env)
		if depth := c.spec.HistoryDepth; depth > 0 && len(c.history) > depth {
			c.history = c.history[len(c.history)-depth:]
		}
	}
	subs := make([]chan Envelope, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		if c.spec.Reliability == BestEffort {
			select {
			case sub <- env:
			default: // slow subscriber, drop silently
			}
			continue
		}
		select {
		case sub <- env:
		case <-ctx.Done():
			return fmt.Errorf("loopback: send %s: %w", c.spec.Name, ctx.Err())
		}
	}
	return nil
}

// Flush is a no-op: loopback delivery is synchronous.
func (c *loopChannel) Flush(ctx context.Context) error { return nil }

// Close detaches the channel from its subscribers.
func (c *loopChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeSubsLocked()
	return nil
}

func (c *loopChannel) closeSubs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeSubsLocked()
}

func (c *loopChannel) closeSubsLocked() {
	if c.closed {
		return
	}
	c.closed = true
	for _, sub := range c.subs {
		close(sub)
	}
	c.subs = nil
}
