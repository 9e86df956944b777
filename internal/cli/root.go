// Package cli implements the evtcal command line tool. It drives the calendar
// package directly and never talks to the HTTP API.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/evtcal-api/internal/calendar"
)

// NewRootCommand builds the evtcal command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "evtcal",
		Short:         "Build add-to-calendar links and iCalendar files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLinksCommand(), newICSCommand())
	return root
}

// eventFlags binds the raw event fields shared by every subcommand.
type eventFlags struct {
	raw calendar.RawEvent
}

func (f *eventFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.raw.Title, "title", "", "event title")
	fs.StringVar(&f.raw.Description, "description", "", "event description")
	fs.StringVar(&f.raw.Location, "location", "", "event location")
	fs.StringVar(&f.raw.Start, "start", "", "start, YYYY-MM-DD HH:MM:SS wall clock in --tz")
	fs.StringVar(&f.raw.End, "end", "", "end, YYYY-MM-DD HH:MM:SS wall clock in --tz")
	fs.StringVar(&f.raw.Timezone, "tz", "UTC", "IANA timezone of start and end")
}

func (f *eventFlags) normalize(cmd *cobra.Command) (calendar.Event, error) {
	ev, err := calendar.Normalize(f.raw)
	if err != nil {
		return calendar.Event{}, err
	}
	if ev.Backwards() {
		cmd.PrintErrln("warning: event ends before it starts")
	}
	return ev, nil
}
