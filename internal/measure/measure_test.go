package measure

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisas/alsd/internal/device"
	"github.com/lisas/alsd/internal/mqtt"
)

// newTestCycle builds a cycle with the settle delay stubbed out, recording
// requested sleeps instead of waiting.
func newTestCycle(port device.Port, sink mqtt.Publisher) (*Cycle, *[]time.Duration) {
	c := NewCycle(port, sink, zerolog.Nop())
	var sleeps []time.Duration
	c.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return c, &sleeps
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		rate time.Duration
		want time.Duration
	}{
		{0, 1 * time.Second},
		{500 * time.Millisecond, 1500 * time.Millisecond},
		{14 * time.Second, 15 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Period(tt.rate), "rate %v", tt.rate)
	}
}

func TestCyclePublishesValidReading(t *testing.T) {
	port := device.NewFakePort([]device.Outcome{{Value: 42}})
	sink := mqtt.NewFakePublisher()
	c, sleeps := newTestCycle(port, sink)

	res := c.Run()

	assert.Equal(t, Published, res.Outcome)
	assert.Equal(t, uint64(42), res.Value)
	require.Len(t, sink.Values, 1)
	assert.Equal(t, uint64(42), sink.Values[0])

	require.Len(t, *sleeps, 1, "exactly one settle delay per cycle")
	assert.Equal(t, SettleDelay, (*sleeps)[0])
}

func TestCycleZeroIsPublished(t *testing.T) {
	port := device.NewFakePort([]device.Outcome{{Value: 0}})
	sink := mqtt.NewFakePublisher()
	c, _ := newTestCycle(port, sink)

	res := c.Run()

	assert.Equal(t, Published, res.Outcome)
	require.Len(t, sink.Values, 1)
	assert.Equal(t, uint64(0), sink.Values[0])
}

func TestCycleUndetectableSkipsPublish(t *testing.T) {
	port := device.NewFakePort([]device.Outcome{{Undetectable: true}})
	sink := mqtt.NewFakePublisher()
	c, _ := newTestCycle(port, sink)

	res := c.Run()

	assert.Equal(t, Undetectable, res.Outcome)
	assert.Nil(t, res.Err)
	assert.Empty(t, sink.Values, "undetectable reading must not be published")
}

func TestCycleReadErrorSkips(t *testing.T) {
	readErr := errors.New("ioctl failed")
	port := device.NewFakePort([]device.Outcome{{Err: readErr}})
	sink := mqtt.NewFakePublisher()
	c, _ := newTestCycle(port, sink)

	res := c.Run()

	assert.Equal(t, ReadError, res.Outcome)
	assert.ErrorIs(t, res.Err, readErr)
	assert.Empty(t, sink.Values)
}

func TestCyclePublishErrorCompletes(t *testing.T) {
	port := device.NewFakePort([]device.Outcome{{Value: 7}})
	sink := mqtt.NewFakePublisher()
	sink.PublishError = errors.New("broker unavailable")
	c, _ := newTestCycle(port, sink)

	res := c.Run()

	assert.Equal(t, PublishError, res.Outcome)
	assert.Equal(t, uint64(7), res.Value)
	assert.Error(t, res.Err)
}

func TestCycleScriptedSequence(t *testing.T) {
	// [5, undetectable, 0, IOError, 42] must publish exactly [5, 0, 42] in
	// order, with two cycles producing nothing.
	port := device.NewFakePort([]device.Outcome{
		{Value: 5},
		{Undetectable: true},
		{Value: 0},
		{Err: errors.New("ioctl failed")},
		{Value: 42},
	})
	sink := mqtt.NewFakePublisher()
	c, _ := newTestCycle(port, sink)

	var outcomes []Outcome
	for i := 0; i < 5; i++ {
		outcomes = append(outcomes, c.Run().Outcome)
	}

	assert.Equal(t, []uint64{5, 0, 42}, sink.Values)
	assert.Equal(t, []Outcome{Published, Undetectable, Published, ReadError, Published}, outcomes)
}

func TestCycleSettlesBeforeReading(t *testing.T) {
	port := device.NewFakePort([]device.Outcome{{Value: 1}})
	sink := mqtt.NewFakePublisher()
	c := NewCycle(port, sink, zerolog.Nop())

	settled := false
	c.sleep = func(d time.Duration) {
		assert.Zero(t, port.Calls, "settle must precede the device read")
		settled = true
	}

	c.Run()
	assert.True(t, settled)
	assert.Equal(t, 1, port.Calls)
}
