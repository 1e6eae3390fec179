// Package measure contains the measurement-cycle and scheduling logic.
// A cycle is one settle → read → classify → (publish | skip) sequence; the
// scheduler drives cycles strictly sequentially at a fixed cadence. All
// per-cycle failures are contained in the cycle that saw them.
package measure

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lisas/alsd/internal/device"
	"github.com/lisas/alsd/internal/mqtt"
)

// SettleDelay is the fixed quiescence period the sensing circuit needs
// before a new measurement can be armed. Hardware characteristic, not a
// tunable.
const SettleDelay = 1000 * time.Millisecond

// Period returns the effective cycle period for a configured rate: the
// inter-measurement spacing plus the fixed settle overhead.
func Period(rate time.Duration) time.Duration {
	return rate + SettleDelay
}

// Outcome classifies how a measurement cycle ended.
type Outcome string

const (
	// Published means a valid reading was handed to the sink.
	Published Outcome = "PUBLISHED"
	// Undetectable means the driver reported light outside the measurable
	// range; nothing is published for that cycle.
	Undetectable Outcome = "UNDETECTABLE"
	// ReadError means the device read failed; the cycle is skipped and the
	// next one proceeds normally.
	ReadError Outcome = "READ_ERROR"
	// PublishError means the reading was valid but the sink rejected it.
	// The cycle still completes; nothing is retried.
	PublishError Outcome = "PUBLISH_ERROR"
)

// Result is the record of one completed cycle.
type Result struct {
	Outcome Outcome
	// Value is the measured charge time. Meaningful for Published and
	// PublishError outcomes only.
	Value uint64
	// Timestamp is the capture instant of the reading, when one was taken.
	Timestamp time.Time
	// Err carries the read or publish failure, if any.
	Err error
}

// Cycle runs one full measurement cycle per call against a sensor port and
// a publish sink.
type Cycle struct {
	port device.Port
	sink mqtt.Publisher
	log  zerolog.Logger

	// sleep is swappable so tests do not wait out the settle delay.
	sleep func(time.Duration)
}

// NewCycle creates a measurement cycle bound to the given port and sink.
func NewCycle(port device.Port, sink mqtt.Publisher, log zerolog.Logger) *Cycle {
	return &Cycle{
		port:  port,
		sink:  sink,
		log:   log,
		sleep: time.Sleep,
	}
}

// Run executes one cycle: settle, read, classify, publish if the reading is
// valid. It never returns an error — every per-cycle failure is contained in
// the Result so the scheduler always arms the next cycle.
func (c *Cycle) Run() Result {
	c.sleep(SettleDelay)

	m, err := c.port.Measure()
	if err != nil {
		c.log.Warn().Err(err).Msg("device read failed, skipping cycle")
		return Result{Outcome: ReadError, Err: err}
	}

	if m.Undetectable {
		c.log.Debug().Msg("light level outside measurable range, skipping publish")
		return Result{Outcome: Undetectable, Timestamp: m.Timestamp}
	}

	if err := c.sink.Publish(m.Value); err != nil {
		c.log.Warn().Err(err).Uint64("value", m.Value).Msg("publish failed")
		return Result{Outcome: PublishError, Value: m.Value, Timestamp: m.Timestamp, Err: err}
	}

	c.log.Debug().Uint64("value", m.Value).Msg("published measurement")
	return Result{Outcome: Published, Value: m.Value, Timestamp: m.Timestamp}
}
