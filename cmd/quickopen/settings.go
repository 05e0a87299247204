package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/quickopen/pkg/config"
)

var settingsOpts struct {
	reset bool

	baseURL        string
	userType       string
	waitTimeout    string
	flashDuration  string
	ticketPatterns []string

	updatesEnabled  bool
	updatesRepo     string
	updatesInterval string
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Long: `Prints every settings section as YAML. Flags change individual values;
changes are validated before anything is written.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	f := settingsCmd.Flags()
	f.BoolVar(&settingsOpts.reset, "reset", false, "restore every setting to its default")
	f.StringVar(&settingsOpts.baseURL, "base-url", "", "VRC lookup base URL")
	f.StringVar(&settingsOpts.userType, "user-type", "", "user_type sent with lookups")
	f.StringVar(&settingsOpts.waitTimeout, "wait-timeout", "", "how long a lookup waits for the email to render, e.g. 3500ms")
	f.StringVar(&settingsOpts.flashDuration, "flash-duration", "", "how long the not-found affordance shows, e.g. 700ms")
	f.StringSliceVar(&settingsOpts.ticketPatterns, "ticket-pattern", nil, "URL glob of pages that get the overlay (repeatable)")
	f.BoolVar(&settingsOpts.updatesEnabled, "updates", false, "enable release checks")
	f.StringVar(&settingsOpts.updatesRepo, "updates-repo", "", "owner/name of the GitHub repo to check")
	f.StringVar(&settingsOpts.updatesInterval, "updates-interval", "", "time between release checks, e.g. 6h")
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}

	changed, err := applySettingsFlags(cmd, settings)
	if err != nil {
		return err
	}
	if changed {
		if err := settings.SaveAll(); err != nil {
			return err
		}
		debugLog.Infof("settings saved to %s", settings.File.Path())
	}

	return printSettings(cmd.OutOrStdout(), settings)
}

// applySettingsFlags copies every flag the user set into its section. It
// reports whether anything needs saving.
func applySettingsFlags(cmd *cobra.Command, settings *config.Settings) (bool, error) {
	f := cmd.Flags()
	changed := false

	if settingsOpts.reset {
		settings.ResetAll()
		changed = true
	}

	lookup := map[string]interface{}{}
	if f.Changed("base-url") {
		lookup["base_url"] = settingsOpts.baseURL
	}
	if f.Changed("user-type") {
		lookup["user_type"] = settingsOpts.userType
	}
	if f.Changed("wait-timeout") {
		lookup["wait_timeout"] = settingsOpts.waitTimeout
	}
	if f.Changed("flash-duration") {
		lookup["flash_duration"] = settingsOpts.flashDuration
	}
	if f.Changed("ticket-pattern") {
		lookup["ticket_patterns"] = settingsOpts.ticketPatterns
	}
	if len(lookup) > 0 {
		if err := settings.Lookup.SetData(lookup); err != nil {
			return false, err
		}
		changed = true
	}

	checks := map[string]interface{}{}
	if f.Changed("updates") {
		checks["enabled"] = settingsOpts.updatesEnabled
	}
	if f.Changed("updates-repo") {
		checks["repo"] = settingsOpts.updatesRepo
	}
	if f.Changed("updates-interval") {
		checks["interval"] = settingsOpts.updatesInterval
	}
	if len(checks) > 0 {
		if err := settings.UpdateChecks.SetData(checks); err != nil {
			return false, err
		}
		changed = true
	}

	return changed, nil
}

// printSettings writes the sections as a YAML document keyed by section id.
func printSettings(w io.Writer, settings *config.Settings) error {
	doc := make(map[string]map[string]interface{})
	for _, section := range settings.GetSections() {
		doc[section.ID()] = section.Data()
	}

	fmt.Fprintf(w, "# %s\n", settings.File.Path())
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return enc.Close()
}
