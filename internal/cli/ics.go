package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/evtcal-api/internal/calendar"
)

func newICSCommand() *cobra.Command {
	var (
		event     eventFlags
		output    string
		uidDomain string
		productID string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write an iCalendar file for one event",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := event.normalize(cmd)
			if err != nil {
				return err
			}

			renderer := calendar.NewRenderer(calendar.RendererOptions{ProductID: productID, UIDDomain: uidDomain})
			out, err := renderer.Render(ev, calendar.ProviderICSFile, "")
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(out.Body)
				return err
			}
			return os.WriteFile(output, out.Body, 0o644)
		},
	}

	event.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	cmd.Flags().StringVar(&uidDomain, "uid-domain", "", "host part of the generated UID")
	cmd.Flags().StringVar(&productID, "product-id", calendar.DefaultProductID, "PRODID value")
	return cmd
}
