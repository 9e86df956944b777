// Package calendar turns a single event description into "add to calendar"
// links for the hosted calendar providers and into a downloadable iCalendar
// file.
//
// The package is free of I/O: RawEvent values are normalised into an Event
// anchored in UTC, and a Renderer produces provider outputs from it.
package calendar

import "time"

// DateTimeLayout is the only accepted shape for raw start/end values. The
// value is a wall-clock time in the zone named by RawEvent.Timezone.
const DateTimeLayout = "2006-01-02 15:04:05"

// DefaultTitle replaces a blank title.
const DefaultTitle = "Event"

// RawEvent holds untrusted event fields exactly as received from a caller.
type RawEvent struct {
	Title       string
	Description string
	Location    string
	Start       string
	End         string
	Timezone    string
}

// Event is the normalised, UTC-anchored description of one calendar event.
// It is a plain value; copies never share state.
type Event struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	// Timezone is the IANA zone the original wall-clock values were read in.
	Timezone string
}

// Duration returns End minus Start. It is negative for backwards events.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Backwards reports whether the event ends before it starts. Such events are
// rendered as given; callers decide whether to surface a warning.
func (e Event) Backwards() bool {
	return e.End.Before(e.Start)
}
