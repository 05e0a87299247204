package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/cascadia"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/entrhq/quickopen/pkg/dispatch"
	"github.com/entrhq/quickopen/pkg/dom"
	"github.com/entrhq/quickopen/pkg/email"
)

var errEmailNotFound = errors.New("email not found on this ticket")

var findOpts struct {
	anchor   string
	copy     bool
	lookup   bool
	payments bool
}

var findCmd = &cobra.Command{
	Use:   "find [page.html]",
	Short: "Print the requester email found in a saved ticket page",
	Long: `Runs the email locator over a saved ticket page ("-" or no argument
reads stdin) and prints the address it finds. With --lookup the VRC lookup
URL is printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().StringVar(&findOpts.anchor, "anchor", `span[title="Email"]`, "CSS selector of the email field label")
	findCmd.Flags().BoolVar(&findOpts.copy, "copy", false, "copy the result to the clipboard")
	findCmd.Flags().BoolVar(&findOpts.lookup, "lookup", false, "print the lookup URL instead of the address")
	findCmd.Flags().BoolVar(&findOpts.payments, "payments", false, "include payments in the lookup URL")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open page: %w", err)
		}
		defer f.Close()
		r = f
	}

	anchor, err := cascadia.Compile(findOpts.anchor)
	if err != nil {
		return fmt.Errorf("invalid anchor selector %q: %w", findOpts.anchor, err)
	}

	tree, err := dom.Parse(r)
	if err != nil {
		return err
	}

	found, ok := email.NewLocator(tree, email.WithAnchor(anchor)).FindNow()
	if !ok {
		return errEmailNotFound
	}

	result := found
	if findOpts.lookup {
		settings, err := openSettings()
		if err != nil {
			return err
		}
		baseURL, userType := settings.Lookup.Target()
		result, err = dispatch.BuildLookupURL(baseURL, userType, found, findOpts.payments)
		if err != nil {
			return err
		}
	}

	out := dispatch.NewWriterOpener(cmd.OutOrStdout())
	if err := out.Open(cmd.Context(), result); err != nil {
		return err
	}

	if findOpts.copy {
		if err := clipboard.WriteAll(result); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
	}
	return nil
}
