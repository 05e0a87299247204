package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/quickopen/pkg/position"
	"github.com/entrhq/quickopen/pkg/sim"
)

var simOpts struct {
	page string
	late string
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Try the overlay in the terminal over a saved ticket page",
	Long: `Draws a ticket page in the terminal with the overlay on top. Click or
press enter to open the menu, drag the control between edges, and press i to
render the requester email late, the way Zendesk does. Opened lookups are
shown in the status bar instead of a browser tab.`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	simCmd.Flags().StringVar(&simOpts.page, "page", "", "saved ticket page (default: built-in sample)")
	simCmd.Flags().StringVar(&simOpts.late, "late", "", "HTML fragment appended when i is pressed (default: sample requester email)")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}

	page, err := sim.LoadPage(simOpts.page)
	if err != nil {
		return err
	}

	late := sim.SampleRequester
	if simOpts.late != "" {
		data, err := os.ReadFile(simOpts.late)
		if err != nil {
			return fmt.Errorf("failed to read late fragment: %w", err)
		}
		late = string(data)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	baseURL, userType := settings.Lookup.Target()
	waitTimeout, flashDuration := settings.Lookup.Timing()
	return sim.Run(ctx, sim.Config{
		Page:          page,
		Store:         positionStore(settings, sim.CellGeometry, position.SimSectionID),
		BaseURL:       baseURL,
		UserType:      userType,
		LateHTML:      late,
		WaitTimeout:   waitTimeout,
		FlashDuration: flashDuration,
	})
}
