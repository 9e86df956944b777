package models

import "github.com/noah-isme/evtcal-api/internal/calendar"

// Default button colours offered to the presentation layer.
const (
	DefaultButtonBackground = "#000000"
	DefaultButtonHover      = "#333333"
	DefaultButtonText       = "#ffffff"
)

// ProviderToggles records which providers the hosting site offers. Every key
// is explicit; a missing provider is never implied enabled.
type ProviderToggles struct {
	Google     bool `json:"google" yaml:"google"`
	Office365  bool `json:"office365" yaml:"office365"`
	OutlookCom bool `json:"outlookCom" yaml:"outlook_com"`
	Yahoo      bool `json:"yahoo" yaml:"yahoo"`
	ICS        bool `json:"icsFile" yaml:"ics"`
}

// Enabled reports whether p is switched on.
func (t ProviderToggles) Enabled(p calendar.Provider) bool {
	switch p {
	case calendar.ProviderGoogle:
		return t.Google
	case calendar.ProviderOffice365:
		return t.Office365
	case calendar.ProviderOutlookCom:
		return t.OutlookCom
	case calendar.ProviderYahoo:
		return t.Yahoo
	case calendar.ProviderICSFile:
		return t.ICS
	}
	return false
}

// EnabledProviders lists the enabled providers in display order.
func (t ProviderToggles) EnabledProviders() []calendar.Provider {
	out := make([]calendar.Provider, 0, 5)
	for _, p := range calendar.Providers() {
		if t.Enabled(p) {
			out = append(out, p)
		}
	}
	return out
}

// ButtonStyle carries the dropdown button colours.
type ButtonStyle struct {
	BackgroundColor string `json:"backgroundColor" yaml:"background_color" validate:"omitempty,hexcolor"`
	HoverColor      string `json:"hoverColor" yaml:"hover_color" validate:"omitempty,hexcolor"`
	TextColor       string `json:"textColor" yaml:"text_color" validate:"omitempty,hexcolor"`
}

// CalendarSettings is a read-only snapshot handed to request handling.
type CalendarSettings struct {
	Providers ProviderToggles `json:"providers" yaml:"providers"`
	Button    ButtonStyle     `json:"button" yaml:"button"`
	Label     string          `json:"label" yaml:"label"`
}

// DefaultCalendarSettings enables every provider with the stock colours.
func DefaultCalendarSettings() CalendarSettings {
	return CalendarSettings{
		Providers: ProviderToggles{Google: true, Office365: true, OutlookCom: true, Yahoo: true, ICS: true},
		Button: ButtonStyle{
			BackgroundColor: DefaultButtonBackground,
			HoverColor:      DefaultButtonHover,
			TextColor:       DefaultButtonText,
		},
		Label: calendar.DefaultLabel,
	}
}
