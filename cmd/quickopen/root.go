package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/quickopen/pkg/config"
	"github.com/entrhq/quickopen/pkg/logging"
	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
)

var cfgFile string

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("cli")
	if err != nil {
		debugLog.Warnf("Failed to initialize cli logger, using stderr fallback: %v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quickopen",
	Short: "Open the VRC lookup for a Zendesk ticket's requester",
	Long: `quickopen adds a floating control to Zendesk ticket pages. Clicking it
shows two options that open the VRC lookup for the ticket's requester email,
with or without payment history. The control can be dragged to either edge
of the window and remembers where it was left.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		debugLog.Errorf("command failed: %v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default ~/.quickopen/config.json)")
}

// openSettings loads the configuration named by --config.
func openSettings() (*config.Settings, error) {
	settings, err := config.Open(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return settings, nil
}

// positionStore returns the position store for geom under section, backed
// by the config file.
func positionStore(settings *config.Settings, geom overlay.Geometry, section string) *position.Store {
	return position.NewStoreAt(settings.File, geom.Position(), section)
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
