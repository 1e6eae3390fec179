package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	LastValue     *uint64       `json:"last_value,omitempty"`
	LastReadingAt string        `json:"last_reading_at,omitempty"`
	Cycles        int           `json:"cycles"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"cycle_counts"`
	Recent        []ReadingJSON `json:"recent,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle outcome counts.
type CountsJSON struct {
	Published     int `json:"published"`
	Undetectable  int `json:"undetectable"`
	ReadErrors    int `json:"read_errors"`
	PublishErrors int `json:"publish_errors"`
}

// ReadingJSON is the JSON representation of one retained reading.
type ReadingJSON struct {
	Value     uint64 `json:"value"`
	Timestamp string `json:"timestamp"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Device   string `json:"device"`
	Backend  string `json:"backend"`
	RateMs   int64  `json:"rate_ms"`
	PeriodMs int64  `json:"period_ms"`
	Broker   string `json:"broker"`
	Topic    string `json:"topic"`
	HTTPAddr string `json:"http_addr,omitempty"`
}

// FormatStatusEvent renders a full status snapshot as a JSON payload.
// event and reason annotate lifecycle messages and may be empty for plain
// status output.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := StatusInner{
		Event:         event,
		Reason:        reason,
		Cycles:        snap.Cycles,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Published:     snap.Counts.Published,
			Undetectable:  snap.Counts.Undetectable,
			ReadErrors:    snap.Counts.ReadErrors,
			PublishErrors: snap.Counts.PublishErrors,
		},
		Config: ConfigJSON{
			Device:   snap.Config.Device,
			Backend:  snap.Config.Backend,
			RateMs:   snap.Config.RateMs,
			PeriodMs: snap.Config.PeriodMs,
			Broker:   snap.Config.Broker,
			Topic:    snap.Config.Topic,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}

	if snap.Last != nil {
		v := snap.Last.Value
		inner.LastValue = &v
		inner.LastReadingAt = snap.Last.Timestamp.UTC().Format(time.RFC3339)
	}

	for _, r := range snap.Recent {
		inner.Recent = append(inner.Recent, ReadingJSON{
			Value:     r.Value,
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
