package device

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// Command bytes understood by the gpioals driver.
const (
	cmdCancel  byte = 0
	cmdArm     byte = 1
	cmdMeasure byte = 2
)

// recordSize is the size of one measurement record: two little-endian
// uint64s, driver timestamp then value.
const recordSize = 16

// CharDev reads measurements from the gpioals character device.
type CharDev struct {
	f *os.File
}

// OpenCharDev opens the gpioals character device for commands and reads.
// A missing device or permission failure here is a startup-time error and
// should be treated as fatal by the caller.
func OpenCharDev(path string) (*CharDev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}
	return &CharDev{f: f}, nil
}

// Measure issues the cancel/arm/measure command sequence and blocks reading
// one record. The caller is responsible for the pre-read settle delay; the
// driver needs the circuit quiescent before arming.
func (d *CharDev) Measure() (Measurement, error) {
	for _, cmd := range []byte{cmdCancel, cmdArm, cmdMeasure} {
		if _, err := d.f.Write([]byte{cmd}); err != nil {
			return Measurement{}, fmt.Errorf("send command %d: %w", cmd, err)
		}
	}

	buf := make([]byte, recordSize)
	if _, err := io.ReadFull(d.f, buf); err != nil {
		return Measurement{}, fmt.Errorf("read measurement: %w", err)
	}

	return decodeRecord(buf, time.Now()), nil
}

// Close releases the device handle.
func (d *CharDev) Close() error {
	return d.f.Close()
}

// decodeRecord unpacks one driver record. The driver timestamp field is a
// monotonic counter, not wall time, so the capture instant is taken from the
// host clock instead.
func decodeRecord(buf []byte, now time.Time) Measurement {
	value := binary.LittleEndian.Uint64(buf[8:recordSize])
	if value == Undetectable {
		return Measurement{Undetectable: true, Timestamp: now}
	}
	return Measurement{Value: value, Timestamp: now}
}
