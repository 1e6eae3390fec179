// Package device provides ambient light sensor access with hardware abstraction.
// The chardev implementation talks to the gpioals kernel module through its
// character device. The gpio implementation times an LDR charge directly via
// the Linux GPIO character device. The fake implementation allows testing
// without hardware.
package device

import "time"

// DefaultDevice is the character device created by the gpioals kernel module.
const DefaultDevice = "/dev/gpioals_device"

// Undetectable is the raw value the gpioals driver reports when its own
// timeout elapsed without the circuit triggering (light level outside the
// measurable range).
const Undetectable = ^uint64(0)

// Measurement is a single charge-time observation. Value is proportional to
// darkness: the longer the circuit takes to trigger, the less ambient light.
type Measurement struct {
	// Value is the charge time in driver units. Zero is a valid bright-light
	// reading.
	Value uint64

	// Undetectable is true when the driver could not resolve a finite charge
	// time. Value is meaningless in that case.
	Undetectable bool

	// Timestamp is the capture instant.
	Timestamp time.Time
}

// Port reads charge-time measurements from a light sensor.
type Port interface {
	// Measure arms the sensor and blocks until one measurement is available.
	// A multi-second wait in dark conditions is normal, not a fault.
	Measure() (Measurement, error)

	// Close releases the sensor.
	Close() error
}
