package dto

import (
	"time"

	"github.com/noah-isme/evtcal-api/internal/calendar"
)

// CalendarEventRequest carries raw event fields from the query string or a
// JSON body.
type CalendarEventRequest struct {
	Title       string `form:"title" json:"title" validate:"max=500"`
	Description string `form:"description" json:"description" validate:"max=5000"`
	Location    string `form:"location" json:"location" validate:"max=500"`
	Start       string `form:"start" json:"start" validate:"max=64"`
	End         string `form:"end" json:"end" validate:"max=64"`
	Timezone    string `form:"tz" json:"tz" validate:"max=64"`
	Label       string `form:"label" json:"label" validate:"max=100"`
}

// RawEvent converts the request into the calendar package input.
func (r CalendarEventRequest) RawEvent() calendar.RawEvent {
	return calendar.RawEvent{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Start:       r.Start,
		End:         r.End,
		Timezone:    r.Timezone,
	}
}

// CalendarDownloadRequest is the calendar file download query.
type CalendarDownloadRequest struct {
	CalendarEventRequest
	Token string `form:"token" json:"token"`
}

// CalendarLink is one entry of the provider dropdown.
type CalendarLink struct {
	Provider  string     `json:"provider"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Download  bool       `json:"download,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// CalendarLinksResponse is returned by the links endpoint.
type CalendarLinksResponse struct {
	Label    string         `json:"label"`
	Title    string         `json:"title"`
	StartUTC string         `json:"startUtc"`
	EndUTC   string         `json:"endUtc"`
	Timezone string         `json:"timezone"`
	Links    []CalendarLink `json:"links"`
	ICSURL   string         `json:"icsUrl,omitempty"`
}

// CalendarSettingsResponse exposes the settings snapshot used for rendering.
type CalendarSettingsResponse struct {
	Label     string          `json:"label"`
	Providers map[string]bool `json:"providers"`
	Button    ButtonStyle     `json:"button"`
}

// ButtonStyle mirrors the dropdown button colours.
type ButtonStyle struct {
	BackgroundColor string `json:"backgroundColor"`
	HoverColor      string `json:"hoverColor"`
	TextColor       string `json:"textColor"`
}
