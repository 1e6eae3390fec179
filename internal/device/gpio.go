//go:build linux

package device

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// dischargeHold is how long the line is driven low to drain the capacitor
// before a measurement starts.
const dischargeHold = 100 * time.Millisecond

// GPIOPort measures LDR charge time in userspace for boards without the
// gpioals kernel module. The line is held low to discharge the capacitor,
// then released to input with rising-edge detection; the elapsed time until
// the edge fires is the measurement, in microseconds.
type GPIOPort struct {
	chip    *gpiocdev.Chip
	pin     int
	timeout time.Duration
}

// NewGPIOPort opens the named GPIO chip for charge-time measurements on the
// given pin (BCM numbering). A measurement that does not trigger within
// timeout is reported as undetectable.
func NewGPIOPort(chipName string, pin int, timeout time.Duration) (*GPIOPort, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	return &GPIOPort{chip: chip, pin: pin, timeout: timeout}, nil
}

// Measure performs one discharge/charge cycle and times the rising edge.
func (p *GPIOPort) Measure() (Measurement, error) {
	out, err := p.chip.RequestLine(p.pin, gpiocdev.AsOutput(0))
	if err != nil {
		return Measurement{}, fmt.Errorf("request output pin %d: %w", p.pin, err)
	}
	time.Sleep(dischargeHold)
	if err := out.Close(); err != nil {
		return Measurement{}, fmt.Errorf("release output pin %d: %w", p.pin, err)
	}

	events := make(chan gpiocdev.LineEvent, 1)
	start := time.Now()
	in, err := p.chip.RequestLine(p.pin,
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			select {
			case events <- evt:
			default:
			}
		}))
	if err != nil {
		return Measurement{}, fmt.Errorf("request input pin %d: %w", p.pin, err)
	}
	defer in.Close()

	// In very bright light the capacitor can charge before edge detection is
	// armed. An already-high line is a zero charge time, not a miss.
	if v, verr := in.Value(); verr == nil && v != 0 {
		return Measurement{Value: 0, Timestamp: time.Now()}, nil
	}

	select {
	case <-events:
		elapsed := time.Since(start)
		return Measurement{Value: uint64(elapsed.Microseconds()), Timestamp: time.Now()}, nil
	case <-time.After(p.timeout):
		return Measurement{Undetectable: true, Timestamp: time.Now()}, nil
	}
}

// Close releases the GPIO chip.
func (p *GPIOPort) Close() error {
	return p.chip.Close()
}
