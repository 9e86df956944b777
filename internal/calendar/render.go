package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
)

const (
	// DefaultProductID is written to PRODID when no product id is configured.
	DefaultProductID = "-//evtcal//Event Add to Calendar//EN"
	// DefaultLabel is the button label used when the caller passes none.
	DefaultLabel = "Add to Calendar"
	// ICSFilename is the suggested download name for calendar files.
	ICSFilename = "event.ics"
	// ICSContentType is the MIME type of calendar files.
	ICSContentType = "text/calendar; charset=utf-8"

	basicLayout    = "20060102T150405Z"
	extendedLayout = "2006-01-02T15:04:05Z"
	defaultUIDHost = "localhost"
)

const (
	googleURL     = "https://calendar.google.com/calendar/render?action=TEMPLATE&text=%s&dates=%s/%s&details=%s&location=%s"
	office365URL  = "https://outlook.office.com/calendar/0/deeplink/compose?subject=%s&body=%s&startdt=%s&enddt=%s&location=%s"
	outlookComURL = "https://outlook.live.com/calendar/0/deeplink/compose?path=/calendar/action/compose&rru=addevent&subject=%s&body=%s&startdt=%s&enddt=%s&location=%s"
	yahooURL      = "https://calendar.yahoo.com/?v=60&TITLE=%s&ST=%s&ET=%s&DESC=%s&in_loc=%s"
)

// Output is the rendering of one Event for one Provider. URL is set for web
// providers; Body, Filename and ContentType are set for the file provider.
type Output struct {
	Provider    Provider `json:"provider"`
	Label       string   `json:"label,omitempty"`
	URL         string   `json:"url,omitempty"`
	Body        []byte   `json:"-"`
	Filename    string   `json:"filename,omitempty"`
	ContentType string   `json:"contentType,omitempty"`
}

// RendererOptions tunes a Renderer. Zero values select defaults.
type RendererOptions struct {
	ProductID string
	// UIDDomain is the host part of generated UIDs.
	UIDDomain string
	Now       func() time.Time
	NewID     func() string
}

// Renderer produces provider URLs and calendar files. It holds no mutable
// state and is safe for concurrent use.
type Renderer struct {
	productID string
	uidDomain string
	now       func() time.Time
	newID     func() string
}

// NewRenderer constructs a Renderer.
func NewRenderer(opts RendererOptions) *Renderer {
	r := &Renderer{
		productID: opts.ProductID,
		uidDomain: opts.UIDDomain,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if r.productID == "" {
		r.productID = DefaultProductID
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r
}

// ForHost returns a copy of r that uses host for UIDs unless r already has a
// configured UID domain.
func (r *Renderer) ForHost(host string) *Renderer {
	if r.uidDomain != "" || host == "" {
		return r
	}
	clone := *r
	clone.uidDomain = host
	return &clone
}

// Render produces the output for p. It only fails for an unknown provider.
func (r *Renderer) Render(ev Event, p Provider, label string) (Output, error) {
	if label == "" {
		label = DefaultLabel
	}
	if p.IsFile() {
		return Output{
			Provider:    p,
			Label:       label,
			Body:        r.ICS(ev),
			Filename:    ICSFilename,
			ContentType: ICSContentType,
		}, nil
	}
	link, err := r.URL(ev, p)
	if err != nil {
		return Output{}, err
	}
	return Output{Provider: p, Label: label, URL: link}, nil
}

// URL builds the "add event" link for a web provider.
func (r *Renderer) URL(ev Event, p Provider) (string, error) {
	title := encodeComponent(ev.Title)
	desc := encodeComponent(ev.Description)
	loc := encodeComponent(ev.Location)

	switch p {
	case ProviderGoogle:
		return fmt.Sprintf(googleURL, title, FormatBasic(ev.Start), FormatBasic(ev.End), desc, loc), nil
	case ProviderOffice365:
		return fmt.Sprintf(office365URL, title, desc, FormatExtended(ev.Start), FormatExtended(ev.End), loc), nil
	case ProviderOutlookCom:
		return fmt.Sprintf(outlookComURL, title, desc, FormatExtended(ev.Start), FormatExtended(ev.End), loc), nil
	case ProviderYahoo:
		return fmt.Sprintf(yahooURL, title, FormatBasic(ev.Start), FormatBasic(ev.End), desc, loc), nil
	case ProviderICSFile:
		return "", appErrors.Clone(appErrors.ErrUnknownProvider, "icsFile renders a file, not a URL")
	}
	return "", appErrors.Clone(appErrors.ErrUnknownProvider, fmt.Sprintf("unknown calendar provider %q", string(p)))
}

// FormatBasic renders t in UTC as YYYYMMDDTHHMMSSZ.
func FormatBasic(t time.Time) string {
	return t.UTC().Format(basicLayout)
}

// FormatExtended renders t in UTC as YYYY-MM-DDTHH:MM:SSZ.
func FormatExtended(t time.Time) string {
	return t.UTC().Format(extendedLayout)
}

// encodeComponent percent-encodes everything except RFC 3986 unreserved
// characters; spaces become %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
