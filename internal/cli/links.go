package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/evtcal-api/internal/calendar"
)

type linkOutput struct {
	Provider string `json:"provider" yaml:"provider"`
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
}

func newLinksCommand() *cobra.Command {
	var (
		event     eventFlags
		providers []string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Print provider links for one event",
		Example: `  evtcal links --title "Quarterly review" --start "2025-07-15 14:00:00" \
    --end "2025-07-15 16:00:00" --tz America/New_York --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseProviders(providers)
			if err != nil {
				return err
			}
			ev, err := event.normalize(cmd)
			if err != nil {
				return err
			}

			renderer := calendar.NewRenderer(calendar.RendererOptions{})
			out := make([]linkOutput, 0, len(selected))
			for _, p := range selected {
				link, err := renderer.URL(ev, p)
				if err != nil {
					return err
				}
				out = append(out, linkOutput{Provider: p.String(), Name: p.DisplayName(), URL: link})
			}
			return writeLinks(cmd.OutOrStdout(), format, out)
		},
	}

	event.register(cmd.Flags())
	cmd.Flags().StringSliceVarP(&providers, "provider", "p", nil, "providers to render (default: every web provider)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func parseProviders(names []string) ([]calendar.Provider, error) {
	if len(names) == 0 {
		var web []calendar.Provider
		for _, p := range calendar.Providers() {
			if !p.IsFile() {
				web = append(web, p)
			}
		}
		return web, nil
	}

	out := make([]calendar.Provider, 0, len(names))
	for _, name := range names {
		p, err := calendar.ParseProvider(name)
		if err != nil {
			return nil, err
		}
		if p.IsFile() {
			return nil, fmt.Errorf("%s is a file; use the ics command", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func writeLinks(w io.Writer, format string, links []linkOutput) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(links); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		for _, l := range links {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", l.Name, l.URL); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}
