package domain

import (
	"fmt"
	"regexp"
	"time"
)

// EventTimeLayout is the timestamp format published by the polisen.se feed,
// e.g. "2026-01-02 19:38:09 +01:00".
const EventTimeLayout = "2006-01-02 15:04:05 -07:00"

// singleDigitHour matches feed timestamps whose hour lost its leading zero,
// e.g. "2026-01-02 9:38:09 +01:00".
var singleDigitHour = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d):(\d{2}:\d{2} [+-]\d{2}:\d{2})$`)

// Location carries the place name and "lat,lon" coordinate pair reported by
// the feed for an event.
type Location struct {
	Name string `json:"name"`
	GPS  string `json:"gps"`
}

// Event represents a single police event as published by the polisen.se API.
// JSON tags mirror the feed fields exactly so records round-trip untouched
// into the partition files.
type Event struct {
	ID       int64    `json:"id"`
	Datetime string   `json:"datetime"`
	Name     string   `json:"name"`
	Summary  string   `json:"summary"`
	URL      string   `json:"url"`
	Type     string   `json:"type"`
	Location Location `json:"location"`
}

// NormalizeEventTime zero-pads a single-digit hour in a feed timestamp. The
// fix-up is purely textual; strings not matching the malformed shape are
// returned unchanged.
func NormalizeEventTime(ts string) string {
	if m := singleDigitHour.FindStringSubmatch(ts); m != nil {
		return m[1] + " 0" + m[2] + ":" + m[3]
	}
	return ts
}

// OccurredAt parses the event timestamp after normalization.
func (e Event) OccurredAt() (time.Time, error) {
	t, err := time.Parse(EventTimeLayout, NormalizeEventTime(e.Datetime))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event time %q: %w", e.Datetime, err)
	}
	return t, nil
}

// PartitionKey returns the "YYYY/MM/DD" storage prefix for the event. The
// date is taken from the timestamp's own offset, never converted to another
// zone.
func (e Event) PartitionKey() (string, error) {
	t, err := e.OccurredAt()
	if err != nil {
		return "", err
	}
	return t.Format("2006/01/02"), nil
}
