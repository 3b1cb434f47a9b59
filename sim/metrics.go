// Tracks environment-wide stepping and publishing statistics
// for final reporting.

package sim

import (
	"fmt"

	"github.com/navsim/navsim/sim/bridge"
)

// Metrics aggregates statistics about an environment run: stepping
// cadence, snapshot completeness, and the bridge's publish counters.
type Metrics struct {
	Steps             int64 // physics steps taken
	RenderTicks       int64 // render ticks reached
	Snapshots         int64 // snapshots returned to the caller
	CompleteSnapshots int64 // snapshots with every sensor valid at least once
	Resets            int   // episodes started

	Bridge bridge.Stats // merged publish counters
}

// Print displays aggregated metrics at the end of a run.
func (m Metrics) Print() {
	fmt.Println("=== Environment Metrics ===")
	fmt.Printf("Episodes             : %d\n", m.Resets)
	fmt.Printf("Steps                : %d\n", m.Steps)
	fmt.Printf("Render Ticks         : %d\n", m.RenderTicks)
	fmt.Printf("Snapshots            : %d\n", m.Snapshots)
	if m.Snapshots > 0 {
		fmt.Printf("Complete Snapshots   : %d (%.1f%%)\n", m.CompleteSnapshots,
			100*float64(m.CompleteSnapshots)/float64(m.Snapshots))
	}
	fmt.Printf("Published Messages   : %d\n", m.Bridge.Published)
	fmt.Printf("Dropped Messages     : %d\n", m.Bridge.Dropped)
	fmt.Printf("Skipped Publishes    : %d\n", m.Bridge.Skipped)
	fmt.Printf("Degradation Events   : %d\n", m.Bridge.Degraded)
}
