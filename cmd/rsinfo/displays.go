package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devblok/rendersys/display"
)

func newDisplaysCommand(opts *options) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "displays",
		Short: "List connected monitors and their video modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.configuration()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Display.Provider = provider
			}

			displays, err := display.Query(cfg.Display.Provider)
			if err != nil {
				return err
			}

			p := opts.printer(cmd)
			if p.json {
				return p.JSON(displays)
			}
			printDisplays(p, displays)
			return nil
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", fmt.Sprintf("display provider, one of %v", display.Providers()))
	return cmd
}

func printDisplays(p *printer, displays []display.Descriptor) {
	for _, d := range displays {
		title := d.DeviceName
		if d.Primary {
			title += " (primary)"
		}
		p.Title(title)
		p.Field("offset", fmt.Sprintf("%d,%d", d.OffsetX, d.OffsetY))
		p.Field("current", formatMode(d.CurrentMode))
		for _, m := range d.Modes {
			p.Field("mode", formatMode(m))
		}
	}
}

func formatMode(m display.Mode) string {
	return fmt.Sprintf("%dx%d@%dHz", m.Width, m.Height, m.RefreshRate)
}
