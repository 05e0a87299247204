// Package main provides quickopen, which adds a floating "open in VRC"
// control to Zendesk ticket pages. The control finds the requester email on
// the ticket and opens the matching VRC lookup in a new tab.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
