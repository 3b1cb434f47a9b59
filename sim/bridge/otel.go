package bridge

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/navsim/navsim/sim/bridge"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments holds the bridge's OpenTelemetry counters. With no SDK
// configured the global meter is a no-op, so recording is always safe.
type instruments struct {
	published metric.Int64Counter
	dropped   metric.Int64Counter
	degraded  metric.Int64Counter
}

func newInstruments() (instruments, error) {
	m := meter()
	var ins instruments
	var err error

	ins.published, err = m.Int64Counter(
		"bridge.messages.published",
		metric.WithDescription("Total messages handed to the transport"),
	)
	if err != nil {
		return ins, err
	}

	ins.dropped, err = m.Int64Counter(
		"bridge.messages.dropped",
		metric.WithDescription("Total messages dropped on timeout or send failure"),
	)
	if err != nil {
		return ins, err
	}

	ins.degraded, err = m.Int64Counter(
		"bridge.degraded.events",
		metric.WithDescription("Total transport degradation occurrences"),
	)
	return ins, err
}
