package sensor

// Snapshot is one consistent per-step observation: the latest sample from
// every configured sensor, keyed by name. The snapshot's own timestamp is
// the clock's current time; per-sensor freshness lives in each sample's
// embedded timestamp and validity flag. Snapshots are created fresh each
// step and never retained by the core.
type Snapshot struct {
	Time     float64
	Complete bool // every sensor has produced ≥1 valid sample since reset
	Samples  map[string]Sample
}

// Assemble builds the snapshot for the current step. It never fails:
// sensors that have not yet produced a valid sample appear with
// Valid=false rather than being omitted, so consumers detect partial
// data deterministically. Samples are cloned, never moved: the registry
// retains each sample for reuse until the sensor is next due.
func Assemble(now float64, reg *Registry) Snapshot {
	samples := make(map[string]Sample, reg.Len())
	complete := true
	for _, s := range reg.Sensors() {
		samples[s.Name()] = s.Latest().Clone()
		if !s.EverValid() {
			complete = false
		}
	}
	return Snapshot{Time: now, Complete: complete, Samples: samples}
}
