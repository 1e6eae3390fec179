// Package status provides a thread-safe status tracker for the alsd daemon.
// It is read by the HTTP status server and feeds lifecycle event payloads.
package status

import (
	"sync"
	"time"

	"github.com/lisas/alsd/internal/measure"
)

// recentCapacity bounds the in-memory ring of recent readings shown on the
// status page. Display-only: readings are never published or persisted from
// here.
const recentCapacity = 32

// Config contains daemon configuration for display.
type Config struct {
	Device   string
	Backend  string
	RateMs   int64
	PeriodMs int64
	Broker   string
	Topic    string
	HTTPAddr string
}

// Counts tracks cycle outcomes since startup.
type Counts struct {
	Published     int
	Undetectable  int
	ReadErrors    int
	PublishErrors int
}

// Reading is one valid measurement retained for display.
type Reading struct {
	Value     uint64
	Timestamp time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	// Last is the most recent valid reading, nil before the first one.
	Last *Reading
	// Recent holds the latest valid readings, oldest first.
	Recent        []Reading
	Counts        Counts
	Cycles        int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	recent *recentRing
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		recent: newRecentRing(recentCapacity),
	}
}

// Record folds one completed cycle into the tracker.
func (t *Tracker) Record(res measure.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Cycles++

	switch res.Outcome {
	case measure.Published:
		t.snap.Counts.Published++
		r := Reading{Value: res.Value, Timestamp: res.Timestamp}
		t.snap.Last = &r
		t.recent.push(r)
	case measure.Undetectable:
		t.snap.Counts.Undetectable++
	case measure.ReadError:
		t.snap.Counts.ReadErrors++
	case measure.PublishError:
		t.snap.Counts.PublishErrors++
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}
	s.Recent = t.recent.values()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
