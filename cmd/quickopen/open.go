package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/quickopen/pkg/browser"
	"github.com/entrhq/quickopen/pkg/dispatch"
	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
	"github.com/entrhq/quickopen/pkg/updates"
)

var openOpts struct {
	headless    bool
	userDataDir string
	width       int
	height      int
}

var openCmd = &cobra.Command{
	Use:   "open <ticket-url>...",
	Short: "Open ticket pages in a browser with the overlay mounted",
	Long: `Launches Chromium, opens each ticket URL in its own tab and mounts the
overlay on every page that matches the configured ticket patterns. The
overlay follows in-app navigation between tickets. Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&openOpts.headless, "headless", false, "run the browser without a window")
	openCmd.Flags().StringVar(&openOpts.userDataDir, "user-data-dir", "", "keep browser profile (and Zendesk login) in this directory")
	openCmd.Flags().IntVar(&openOpts.width, "width", browser.DefaultViewportWidth, "viewport width")
	openCmd.Flags().IntVar(&openOpts.height, "height", browser.DefaultViewportHeight, "viewport height")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}

	matcher, err := browser.NewTicketMatcher(settings.Lookup.Patterns())
	if err != nil {
		return err
	}
	for _, u := range args {
		if !matcher.Match(u) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not match any ticket pattern; the overlay stays hidden there\n", u)
		}
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	host := browser.NewHost(browser.HostOptions{
		Headless:    openOpts.headless,
		Viewport:    &browser.Viewport{Width: openOpts.width, Height: openOpts.height},
		UserDataDir: openOpts.userDataDir,
	})
	if err := host.Start(); err != nil {
		return err
	}
	defer func() {
		if err := host.Shutdown(); err != nil {
			debugLog.Warnf("browser shutdown: %v", err)
		}
	}()

	baseURL, userType := settings.Lookup.Target()
	waitTimeout, flashDuration := settings.Lookup.Timing()
	mount := browser.MountConfig{
		Store:         positionStore(settings, overlay.DefaultGeometry, position.SectionID),
		Dispatcher:    dispatch.New(host.Opener(), baseURL, userType),
		Geometry:      overlay.DefaultGeometry,
		WaitTimeout:   waitTimeout,
		FlashDuration: flashDuration,
	}

	for _, u := range args {
		if _, err := host.OpenTicket(ctx, u, matcher, mount); err != nil {
			return fmt.Errorf("failed to open %s: %w", u, err)
		}
	}

	if settings.UpdateChecks.Active() {
		checker := updates.NewChecker(settings.UpdateChecks, settings.File, Version)
		go checker.Run(ctx)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Overlay running on %d tab(s). Press Ctrl+C to quit.\n", len(args))
	<-ctx.Done()

	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	return nil
}
