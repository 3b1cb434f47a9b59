package bridge

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsWriteWait bounds a single websocket write so one dead peer cannot
// stall the write pump.
const wsWriteWait = 5 * time.Second

// WebSocketTransport serves envelopes to websocket subscribers as binary
// msgpack frames. The transport owns the server lifecycle: Open binds
// the listener, Close shuts it down. Every connected client receives
// every channel; transient channels replay their retained history to
// clients that join late. Per-connection send buffers decouple the
// stepping loop from peers: best-effort messages drop when a buffer is
// full, reliable messages block up to the send context.
type WebSocketTransport struct {
	addr string

	mu      sync.Mutex
	server  *http.Server
	ln      net.Listener
	conns   map[*wsConn]bool
	history map[string][]Envelope // transient retention, keyed by channel
	specs   map[string]ChannelSpec
	open    bool
}

// NewWebSocketTransport creates a transport that will listen on addr
// (e.g. ":8765") once opened.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	return &WebSocketTransport{
		addr:    addr,
		conns:   make(map[*wsConn]bool),
		history: make(map[string][]Envelope),
		specs:   make(map[string]ChannelSpec),
	}
}

// Open binds the listener and starts serving /ws upgrades. A bind
// failure is returned so the bridge can degrade.
func (t *WebSocketTransport) Open(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("websocket: listen %s: %w", t.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", t.handleWS)
	srv := &http.Server{Handler: mux}

	t.mu.Lock()
	t.server = srv
	t.ln = ln
	t.open = true
	t.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logrus.Warnf("websocket: serve: %v", err)
		}
	}()
	logrus.Infof("websocket transport listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listener address, nil before Open. Useful when
// opened on ":0".
func (t *WebSocketTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln == nil {
		return nil
	}
	return t.ln.Addr()
}

// OpenChannel registers the channel spec; all channels share the single
// websocket stream, demultiplexed client-side by the envelope's Channel
// field.
func (t *WebSocketTransport) OpenChannel(spec ChannelSpec) (Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil, fmt.Errorf("websocket: not open")
	}
	if _, exists := t.specs[spec.Name]; exists {
		return nil, fmt.Errorf("websocket: channel %s already open", spec.Name)
	}
	t.specs[spec.Name] = spec
	return &wsChannel{t: t, spec: spec}, nil
}

// Close shuts the server down and drops all client connections.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	srv := t.server
	conns := make([]*wsConn, 0, len(t.conns))
	for c := range t.conns {
		conns = append(conns, c)
	}
	t.conns = make(map[*wsConn]bool)
	t.open = false
	t.mu.Unlock()

	for _, c := range conns {
		c.stop()
	}
	if srv != nil {
		return srv.Close()
	}
	return nil
}

// handleWS upgrades the connection, replays transient history, and
// registers the client for broadcasts.
func (t *WebSocketTransport) handleWS(w http.ResponseWriter, r *http.Request) {
	t.mu.Lock()
	open := t.open
	t.mu.Unlock()
	if !open {
		http.Error(w, "transport closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newWSConn(conn)
	go c.writePump(func() {
		t.mu.Lock()
		delete(t.conns, c)
		t.mu.Unlock()
	})

	// Replay and registration happen under one lock: a concurrent
	// broadcast can neither interleave ahead of the retained history nor
	// race a Close that already swept the connection set.
	t.mu.Lock()
	if !t.open {
		t.mu.Unlock()
		c.stop()
		return
	}
	for name, envs := range t.history {
		if t.specs[name].Durability != Transient {
			continue
		}
		for _, env := range envs {
			c.enqueue(env, true, context.Background())
		}
	}
	t.conns[c] = true
	t.mu.Unlock()
}

// broadcast delivers one envelope to every connected client under the
// channel's QoS and retains it for transient durability.
func (t *WebSocketTransport) broadcast(ctx context.Context, spec ChannelSpec, env Envelope) error {
	t.mu.Lock()
	if spec.Durability == Transient {
		h := append(t.history[spec.Name], env)
		if depth := spec.HistoryDepth; depth > 0 && len(h) > depth {
			h = h[len(h)-depth:]
		}
		t.history[spec.Name] = h
	}
	conns := make([]*wsConn, 0, len(t.conns))
	for c := range t.conns {
		conns = append(conns, c)
	}
	t.mu.Unlock()

	reliable := spec.Reliability == Reliable
	for _, c := range conns {
		if !c.enqueue(env, reliable, ctx) && reliable {
			return fmt.Errorf("websocket: send %s: %w", spec.Name, ctx.Err())
		}
	}
	return nil
}

// wsChannel is the per-spec publish endpoint over the shared stream.
type wsChannel struct {
	t    *WebSocketTransport
	spec ChannelSpec
}

func (c *wsChannel) Send(ctx context.Context, env Envelope) error {
	return c.t.broadcast(ctx, c.spec, env)
}

// Flush is a no-op at this layer: per-connection pumps own their
// buffers, and reliable enqueue already blocked until buffered.
func (c *wsChannel) Flush(ctx context.Context) error { return nil }

func (c *wsChannel) Close() error { return nil }

// wsConn is one client connection with a buffered send queue and a
// dedicated write pump, so broadcasts never write to the socket from the
// stepping goroutine. The send queue itself is never closed; stop closes
// done instead, so an enqueue racing a shutdown cannot panic.
type wsConn struct {
	conn *websocket.Conn
	send chan Envelope
	done chan struct{}
	once sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan Envelope, 256),
		done: make(chan struct{}),
	}
}

// enqueue places the envelope on the connection's queue. Best-effort
// messages drop when the queue is full; reliable messages block until
// space, ctx expiry, or stop. Returns false if the message was not
// enqueued.
func (c *wsConn) enqueue(env Envelope, reliable bool, ctx context.Context) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	if !reliable {
		select {
		case c.send <- env:
			return true
		default:
			return false
		}
	}
	select {
	case c.send <- env:
		return true
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// writePump drains the send queue onto the socket as binary msgpack
// frames until the connection fails or is stopped.
func (c *wsConn) writePump(onExit func()) {
	defer func() {
		onExit()
		_ = c.conn.Close()
	}()
	for {
		var env Envelope
		select {
		case env = <-c.send:
		case <-c.done:
			return
		}
		data, err := EncodeEnvelope(env)
		if err != nil {
			logrus.Warnf("websocket: encode frame: %v", err)
			continue
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return
		}
	}
}

// stop signals the connection down, letting the write pump exit.
func (c *wsConn) stop() {
	c.once.Do(func() { close(c.done) })
}
