package calendar

import (
	"strings"

	ical "github.com/arran4/golang-ical"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// EscapeText prepares free text for a TEXT property value. Line breaks of any
// style become the two characters `\n`; backslash, semicolon and comma are
// backslash-escaped in the same pass, so no escape is ever escaped twice.
func EscapeText(s string) string {
	return ical.ToText(lineBreaks.Replace(s))
}

// ICS renders ev as a VCALENDAR holding a single VEVENT. Lines are joined with
// CRLF and never folded. UID and DTSTAMP change on every call.
func (r *Renderer) ICS(ev Event) []byte {
	host := r.uidDomain
	if host == "" {
		host = defaultUIDHost
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + r.productID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + r.newID() + "@" + host,
		"DTSTAMP:" + FormatBasic(r.now()),
		"DTSTART:" + FormatBasic(ev.Start),
		"DTEND:" + FormatBasic(ev.End),
		"SUMMARY:" + EscapeText(ev.Title),
		"DESCRIPTION:" + EscapeText(ev.Description),
		"LOCATION:" + EscapeText(ev.Location),
		"STATUS:CONFIRMED",
		"SEQUENCE:0",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return []byte(strings.Join(lines, "\r\n"))
}
