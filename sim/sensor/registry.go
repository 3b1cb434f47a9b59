package sensor

import (
	"fmt"
	"math/rand"
)

// Registry holds the configured sensor instances in insertion order and
// drives their multi-rate update cycle: Integrate every physics tick,
// UpdateDue only at render ticks, and only for sensors whose publish
// period has elapsed. Distinct sensors can thus run at distinct multiples
// of the base render rate.
type Registry struct {
	sensors []Sensor
	byName  map[string]Sensor
}

// NewRegistry builds sensors for each spec. Specs are validated
// individually; duplicate names are rejected.
func NewRegistry(specs []Spec) (*Registry, error) {
	r := &Registry{byName: make(map[string]Sensor, len(specs))}
	for _, spec := range specs {
		s, err := New(spec)
		if err != nil {
			return nil, err
		}
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a sensor. Names must be unique.
func (r *Registry) Add(s Sensor) error {
	if _, exists := r.byName[s.Name()]; exists {
		return fmt.Errorf("duplicate sensor name %q", s.Name())
	}
	r.sensors = append(r.sensors, s)
	r.byName[s.Name()] = s
	return nil
}

// Lookup returns the named sensor, if configured.
func (r *Registry) Lookup(name string) (Sensor, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Sensors returns the sensors in insertion order. Callers must not
// mutate the slice.
func (r *Registry) Sensors() []Sensor { return r.sensors }

// Names returns the configured sensor names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sensors))
	for i, s := range r.sensors {
		names[i] = s.Name()
	}
	return names
}

// Len returns the number of configured sensors.
func (r *Registry) Len() int { return len(r.sensors) }

// Integrate runs every sensor's internal native-rate update. Called once
// per physics tick.
func (r *Registry) Integrate(now, dt float64, gt GroundTruth) {
	for _, s := range r.sensors {
		s.Integrate(now, dt, gt)
	}
}

// UpdateDue samples exactly the sensors whose publish period has
// elapsed. Called only at render ticks. Returns how many sensors
// updated.
func (r *Registry) UpdateDue(now float64, gt GroundTruth) int {
	updated := 0
	for _, s := range r.sensors {
		if s.Due(now) {
			s.Sample(now, gt)
			updated++
		}
	}
	return updated
}

// Reset clears every sensor's validity and accumulated noise state,
// installing a fresh per-sensor noise stream for the new episode.
func (r *Registry) Reset(stream func(name string) *rand.Rand) {
	for _, s := range r.sensors {
		s.Reset(stream(s.Name()))
	}
}
