// Package events defines presence events and the sinks that record them.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorruptLog is returned when a persisted event log exists but cannot be decoded.
var ErrCorruptLog = errors.New("corrupt event log")

// Kind is the direction of a presence event.
type Kind string

// Kind values as written to the event log.
const (
	Entrada Kind = "ENTRADA"
	Salida  Kind = "SALIDA"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == Entrada || k == Salida
}

// naiveTimestamp is the ISO-8601 form without a zone offset, as written by
// earlier versions of the log. It is read as local time.
const naiveTimestamp = "2006-01-02T15:04:05.999999999"

// Event is one reported presence.
type Event struct {
	Name      string    `json:"nombre"`
	Kind      Kind      `json:"tipo"`
	Timestamp time.Time `json:"timestamp"`
}

type eventJSON struct {
	Name      string `json:"nombre"`
	Kind      Kind   `json:"tipo"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON writes the timestamp as RFC 3339 with nanoseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Name:      e.Name,
		Kind:      e.Kind,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON accepts RFC 3339 timestamps and naive ISO-8601 ones.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint:wrapcheck // decoder error is wrapped by the caller
	}
	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	e.Name = raw.Name
	e.Kind = raw.Kind
	e.Timestamp = ts
	return nil
}

// ParseTimestamp parses an RFC 3339 or naive ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveTimestamp, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

// Sink durably records events.
type Sink interface {
	Append(ctx context.Context, e Event) error
}

// Reader lists recorded events in emission order.
type Reader interface {
	List(ctx context.Context) ([]Event, error)
}

// MultiSink appends to every sink in order. All sinks are tried; the first
// error is returned.
type MultiSink []Sink

// Append implements Sink.
func (m MultiSink) Append(ctx context.Context, e Event) error {
	var first error
	for _, s := range m {
		if err := s.Append(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Last returns the last n events of list (all when n <= 0 or n >= len).
func Last(list []Event, n int) []Event {
	if n <= 0 || n >= len(list) {
		return list
	}
	return list[len(list)-n:]
}
