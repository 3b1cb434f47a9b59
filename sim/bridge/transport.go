package bridge

import "context"

// Transport is the pub/sub middleware primitive the bridge requires:
// named channels, the two QoS axes, and sim-time-stamped envelopes.
// Discovery and connection management are entirely the transport's
// responsibility. Implementations may be in-process (Loopback), a local
// IPC channel, or a network transport (WebSocketTransport).
type Transport interface {
	// Open establishes the transport. Failure here puts the bridge into
	// degraded no-op mode rather than failing the environment.
	Open(ctx context.Context) error
	// OpenChannel creates the publish endpoint for one channel spec.
	OpenChannel(spec ChannelSpec) (Channel, error)
	// Close tears the transport down. Idempotent.
	Close() error
}

// Channel is one named publish endpoint. Send honors the spec's QoS:
// reliable channels may block until ctx expires, best-effort channels
// never block and may drop silently.
type Channel interface {
	Send(ctx context.Context, env Envelope) error
	// Flush blocks until buffered messages are handed to the transport
	// or ctx expires. Used by bridge drain on reset and close.
	Flush(ctx context.Context) error
	Close() error
}
