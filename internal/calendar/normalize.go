package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // zone database must not depend on the host image

	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
)

// ZoneLoader resolves an IANA zone identifier.
type ZoneLoader func(name string) (*time.Location, error)

// Normalizer validates raw event fields and converts them to an Event.
// It is safe for concurrent use; resolved zones are cached and never mutated.
type Normalizer struct {
	load  ZoneLoader
	zones sync.Map
}

// NewNormalizer builds a Normalizer. A nil loader falls back to time.LoadLocation.
func NewNormalizer(load ZoneLoader) *Normalizer {
	if load == nil {
		load = time.LoadLocation
	}
	return &Normalizer{load: load}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize converts raw using the shared default Normalizer.
func Normalize(raw RawEvent) (Event, error) {
	return defaultNormalizer.Normalize(raw)
}

// Normalize resolves the zone, parses both wall-clock values in it and returns
// the event with UTC instants. It either returns a complete Event or an error
// carrying ErrUnknownTimezone or ErrInvalidDateTime.
//
// An end before the start is not rejected.
func (n *Normalizer) Normalize(raw RawEvent) (Event, error) {
	zone := strings.TrimSpace(raw.Timezone)
	loc, err := n.location(zone)
	if err != nil {
		return Event{}, err
	}

	start, err := parseWallClock("start", raw.Start, loc)
	if err != nil {
		return Event{}, err
	}
	end, err := parseWallClock("end", raw.End, loc)
	if err != nil {
		return Event{}, err
	}

	return Event{
		Title:       normalizeTitle(raw.Title),
		Description: cleanText(raw.Description),
		Location:    cleanText(raw.Location),
		Start:       start.UTC(),
		End:         end.UTC(),
		Timezone:    zone,
	}, nil
}

func (n *Normalizer) location(name string) (*time.Location, error) {
	// "" and "Local" resolve to UTC or the host zone in the time package.
	if name == "" || name == "Local" {
		return nil, appErrors.Clone(appErrors.ErrUnknownTimezone, fmt.Sprintf("unknown timezone %q", name))
	}
	if cached, ok := n.zones.Load(name); ok {
		return cached.(*time.Location), nil
	}
	loc, err := n.load(name)
	if err != nil || loc == nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnknownTimezone.Code, appErrors.ErrUnknownTimezone.Status, fmt.Sprintf("unknown timezone %q", name))
	}
	actual, _ := n.zones.LoadOrStore(name, loc)
	return actual.(*time.Location), nil
}

func parseWallClock(field, raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	// time.Parse tolerates fractional seconds after the seconds field.
	if len(value) != len(DateTimeLayout) {
		return time.Time{}, invalidDateTime(field, value, nil)
	}
	parsed, err := time.ParseInLocation(DateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, invalidDateTime(field, value, err)
	}
	return parsed, nil
}

func invalidDateTime(field, value string, err error) error {
	msg := fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD HH:MM:SS", field, value)
	return appErrors.Wrap(err, appErrors.ErrInvalidDateTime.Code, appErrors.ErrInvalidDateTime.Status, msg)
}

func normalizeTitle(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return DefaultTitle
	}
	return cleanText(raw)
}

func cleanText(raw string) string {
	return strings.ToValidUTF8(raw, "\uFFFD")
}
