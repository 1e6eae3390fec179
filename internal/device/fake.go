package device

import (
	"errors"
	"time"
)

// Outcome scripts a single Measure result for the fake port.
type Outcome struct {
	// Value is the charge time to return.
	Value uint64

	// Undetectable marks the outcome as a driver-timeout sentinel.
	Undetectable bool

	// Err, if set, is returned instead of a measurement.
	Err error
}

// FakePort is a test double that returns scripted measurement outcomes.
type FakePort struct {
	// Outcomes contains scripted results. Each call to Measure consumes the
	// next one; when exhausted, the last outcome repeats.
	Outcomes []Outcome

	// index tracks current position in Outcomes
	index int

	// Calls counts Measure invocations.
	Calls int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakePort creates a FakePort with the given outcomes.
func NewFakePort(outcomes []Outcome) *FakePort {
	return &FakePort{Outcomes: outcomes}
}

// Measure returns the next scripted outcome.
func (f *FakePort) Measure() (Measurement, error) {
	f.Calls++

	if len(f.Outcomes) == 0 {
		return Measurement{}, errors.New("no outcomes configured")
	}

	o := f.Outcomes[f.index]
	if f.index < len(f.Outcomes)-1 {
		f.index++
	}

	if o.Err != nil {
		return Measurement{}, o.Err
	}

	return Measurement{
		Value:        o.Value,
		Undetectable: o.Undetectable,
		Timestamp:    time.Now(),
	}, nil
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the port to the beginning of its outcomes.
func (f *FakePort) Reset() {
	f.index = 0
	f.Calls = 0
	f.Closed = false
}
