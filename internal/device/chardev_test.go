package device

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(timestamp, value uint64) []byte {
	buf := make([]byte, recordSize)
	binary.LittleEndian.PutUint64(buf[0:8], timestamp)
	binary.LittleEndian.PutUint64(buf[8:16], value)
	return buf
}

func TestDecodeRecordValue(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	m := decodeRecord(record(123456, 42), now)
	assert.False(t, m.Undetectable)
	assert.Equal(t, uint64(42), m.Value)
	assert.True(t, m.Timestamp.Equal(now))
}

func TestDecodeRecordZeroIsValid(t *testing.T) {
	now := time.Now()

	m := decodeRecord(record(99, 0), now)
	require.False(t, m.Undetectable, "zero charge time is a bright-light reading, not a sentinel")
	assert.Equal(t, uint64(0), m.Value)
}

func TestDecodeRecordUndetectable(t *testing.T) {
	now := time.Now()

	m := decodeRecord(record(99, Undetectable), now)
	assert.True(t, m.Undetectable)
}

func TestDecodeRecordIgnoresDriverTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// The first field is a driver-internal monotonic counter; the host clock
	// wins regardless of its value.
	m := decodeRecord(record(^uint64(0), 7), now)
	assert.False(t, m.Undetectable)
	assert.Equal(t, uint64(7), m.Value)
	assert.True(t, m.Timestamp.Equal(now))
}

func TestOpenCharDevMissing(t *testing.T) {
	_, err := OpenCharDev("/nonexistent/gpioals_device")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open device")
}
