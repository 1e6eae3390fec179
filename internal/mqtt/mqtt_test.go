package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatPayload(t *testing.T) {
	tests := []struct {
		value uint64
		want  string
	}{
		{0, "0"},
		{5, "5"},
		{42, "42"},
		{14000, "14000"},
		{^uint64(0) - 1, "18446744073709551614"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := string(FormatPayload(tt.value))
			if got != tt.want {
				t.Errorf("payload: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.System.Timestamp)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if _, ok := raw["system"]["reason"]; ok {
		t.Error("empty reason should be omitted from payload")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"system":{"event":"STARTUP","custom":true}}`)
	event := SystemEvent{RawPayload: raw}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: got %s", payload)
	}
}

func TestFakePublisherRecordsValues(t *testing.T) {
	f := NewFakePublisher()

	for _, v := range []uint64{5, 0, 42} {
		if err := f.Publish(v); err != nil {
			t.Fatalf("publish %d: %v", v, err)
		}
	}

	if len(f.Values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(f.Values))
	}
	want := []uint64{5, 0, 42}
	for i, v := range want {
		if f.Values[i] != v {
			t.Errorf("value %d: got %d, want %d", i, f.Values[i], v)
		}
	}
	if string(f.Payloads[1]) != "0" {
		t.Errorf("payload 1: got %q, want %q", f.Payloads[1], "0")
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker unavailable")

	if err := f.Publish(7); err == nil {
		t.Fatal("expected error")
	}
	if len(f.Values) != 0 {
		t.Errorf("failed publish should not record a value, got %d", len(f.Values))
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(1)
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()

	f.Reset()

	if len(f.Values) != 0 || len(f.SystemEvents) != 0 || f.Closed {
		t.Error("Reset did not clear state")
	}
}
