package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/quickopen/pkg/browser"
	"github.com/entrhq/quickopen/pkg/dispatch"
	"github.com/entrhq/quickopen/pkg/updates"
)

var updateOpts struct {
	lastOnly bool
	open     bool
}

// releaseOpener starts whatever shows the release page. The returned
// function keeps it up until ctx is done and then shuts it down.
var releaseOpener = func(ctx context.Context) (dispatch.Opener, func(), error) {
	host := browser.NewHost(browser.HostOptions{})
	if err := host.Start(); err != nil {
		return nil, nil, err
	}
	return host.Opener(), func() {
		<-ctx.Done()
		if err := host.Shutdown(); err != nil {
			debugLog.Warnf("browser shutdown: %v", err)
		}
	}, nil
}

var checkUpdatesCmd = &cobra.Command{
	Use:   "check-updates",
	Short: "Compare this version against the latest GitHub release",
	Long: `Runs one release check with the update_checks settings and prints the
result, which is also stored for later. With --last the stored result is
printed without contacting GitHub. With --open a newer release's page is
opened in the browser.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := openSettings()
		if err != nil {
			return err
		}

		checker := updates.NewChecker(settings.UpdateChecks, settings.File, Version)

		var info updates.Info
		if updateOpts.lastOnly {
			last, ok := checker.Last()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No release check recorded.")
				return nil
			}
			info = last
		} else {
			info = checker.Check(cmd.Context())
		}

		out, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))

		if info.Status == updates.StatusError {
			return fmt.Errorf("release check failed: %s", info.Error)
		}
		if updateOpts.open && info.Status == updates.StatusUpdateAvailable {
			return openRelease(cmd, info)
		}
		return nil
	},
}

func openRelease(cmd *cobra.Command, info updates.Info) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	opener, wait, err := releaseOpener(ctx)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer wait()

	if err := dispatch.New(opener, "", "").OpenURL(ctx, info.ReleaseURL); err != nil {
		cancel()
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Opened %s. Press Ctrl+C to quit.\n", info.ReleaseURL)
	return nil
}

func init() {
	checkUpdatesCmd.Flags().BoolVar(&updateOpts.lastOnly, "last", false, "print the stored result only")
	checkUpdatesCmd.Flags().BoolVar(&updateOpts.open, "open", false, "open the release page when an update is available")
	rootCmd.AddCommand(checkUpdatesCmd)
}
