//go:build !linux

package device

import (
	"errors"
	"time"
)

var errGPIONotSupported = errors.New("device: gpio backend not supported on this platform (requires Linux)")

// GPIOPort is not available on non-Linux platforms.
type GPIOPort struct{}

// NewGPIOPort returns an error on non-Linux platforms.
func NewGPIOPort(chipName string, pin int, timeout time.Duration) (*GPIOPort, error) {
	return nil, errGPIONotSupported
}

// Measure is not implemented on non-Linux platforms.
func (p *GPIOPort) Measure() (Measurement, error) {
	return Measurement{}, errGPIONotSupported
}

// Close is not implemented on non-Linux platforms.
func (p *GPIOPort) Close() error {
	return nil
}
