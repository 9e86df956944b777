package calendar

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
)

// Provider names the rendering rule applied to an Event.
type Provider string

const (
	ProviderGoogle     Provider = "google"
	ProviderOffice365  Provider = "office365"
	ProviderOutlookCom Provider = "outlookCom"
	ProviderYahoo      Provider = "yahoo"
	ProviderICSFile    Provider = "icsFile"
)

var providerOrder = []Provider{
	ProviderGoogle,
	ProviderOffice365,
	ProviderOutlookCom,
	ProviderYahoo,
	ProviderICSFile,
}

var providerNames = map[Provider]string{
	ProviderGoogle:     "Google Calendar",
	ProviderOffice365:  "Office 365",
	ProviderOutlookCom: "Outlook.com",
	ProviderYahoo:      "Yahoo Calendar",
	ProviderICSFile:    "Apple / Outlook (.ics)",
}

// aliases accepted by ParseProvider, lower-cased.
var providerAliases = map[string]Provider{
	"google":      ProviderGoogle,
	"office365":   ProviderOffice365,
	"office":      ProviderOffice365,
	"outlookcom":  ProviderOutlookCom,
	"outlook_com": ProviderOutlookCom,
	"outlook":     ProviderOutlookCom,
	"yahoo":       ProviderYahoo,
	"icsfile":     ProviderICSFile,
	"ics":         ProviderICSFile,
	"apple":       ProviderICSFile,
}

// Providers returns every provider in display order.
func Providers() []Provider {
	out := make([]Provider, len(providerOrder))
	copy(out, providerOrder)
	return out
}

// ParseProvider maps a provider tag or one of its aliases to a Provider.
func ParseProvider(raw string) (Provider, error) {
	if p, ok := providerAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p, nil
	}
	return "", appErrors.Clone(appErrors.ErrUnknownProvider, fmt.Sprintf("unknown calendar provider %q", raw))
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	_, ok := providerNames[p]
	return ok
}

// DisplayName is the human label shown next to a provider link.
func (p Provider) DisplayName() string {
	return providerNames[p]
}

// IsFile reports whether p renders a calendar file instead of a URL.
func (p Provider) IsFile() bool {
	return p == ProviderICSFile
}

func (p Provider) String() string {
	return string(p)
}
