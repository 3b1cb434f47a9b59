// Package bridge republishes observation snapshots onto a pub/sub
// transport: named channels with per-channel QoS, sim-time-stamped
// headers, a transform-tree channel, and degrade-to-no-op behavior when
// the transport middleware is unavailable.
package bridge

import "fmt"

// State is the bridge lifecycle phase. Transitions are linear and
// one-directional, except that Bridging may be re-entered via Reset
// (never after ShuttingDown).
type State int

const (
	Uninitialized State = iota
	Bridging
	ShuttingDown
	Closed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Bridging:
		return "Bridging"
	case ShuttingDown:
		return "ShuttingDown"
	case Closed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateError reports a bridge operation called out of lifecycle order.
// Never silently corrected.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("bridge: %s not allowed in state %s", e.Op, e.State)
}
