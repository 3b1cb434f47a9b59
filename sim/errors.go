package sim

import "fmt"

// ConfigError reports an invalid or missing configuration value. It is
// fatal and always raised before any stepping occurs.
type ConfigError struct {
	Field  string // configuration field, e.g. "render_dt" or "sensors[imu].rate_hz"
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// SequenceError reports a lifecycle operation called out of order, such
// as Step before Initialize or any operation after Close. It is never
// silently corrected: a no-op here would corrupt downstream episode
// timing.
type SequenceError struct {
	Op    string // the operation that was attempted
	State EnvState
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence: %s not allowed in state %s", e.Op, e.State)
}

// SceneLoadError wraps a scene provider failure during Reset. It is
// fatal for that Reset call only: the controller stays in Initialized so
// the caller may retry with different parameters.
type SceneLoadError struct {
	SceneID string
	Seed    int64
	Err     error
}

func (e *SceneLoadError) Error() string {
	return fmt.Sprintf("scene load %q (seed %d): %v", e.SceneID, e.Seed, e.Err)
}

func (e *SceneLoadError) Unwrap() error { return e.Err }
