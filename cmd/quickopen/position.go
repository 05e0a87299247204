package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
	"github.com/entrhq/quickopen/pkg/sim"
)

var resetSim bool

var resetPositionCmd = &cobra.Command{
	Use:   "reset-position",
	Short: "Forget where the control was dragged",
	Long:  `Clears the stored control position so the next page load places it at the default spot on the right edge.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := openSettings()
		if err != nil {
			return err
		}

		store := positionStore(settings, overlay.DefaultGeometry, position.SectionID)
		if resetSim {
			store = positionStore(settings, sim.CellGeometry, position.SimSectionID)
		}

		prev, ok := store.Lookup()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored position.")
			return nil
		}
		store.Reset()
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared stored position %s.\n", prev)
		return nil
	},
}

func init() {
	resetPositionCmd.Flags().BoolVar(&resetSim, "sim", false, "reset the terminal simulator's position instead")
	rootCmd.AddCommand(resetPositionCmd)
}
