// Package browser hosts the overlay in a real Chromium page through
// Playwright.
//
// # Architecture
//
// The package is built around three pieces:
//
//  1. Host: owns the Playwright driver and one browser context
//  2. Tab: a ticket page with the overlay mounted into a shadow root
//  3. LiveDocument: a dom.Document mirror of the page, refreshed on mutation
//
// # Bridging
//
// An injected script mounts an isolated host element (id vrc-fab-root) and
// forwards pointer, resize and keyboard activation events to Go through an
// exposed binding. Go runs the overlay.Widget state machine and pushes each
// rendered frame back into the shadow root. A MutationObserver reports page
// changes through a second binding, which makes the live document re-read
// the page so a waiting email lookup wakes up.
//
// Binding callbacks run on the driver's dispatch goroutine. They never call
// back into the page; rendering, re-reading and mounting happen on the tab's
// own goroutines.
//
// # Page Matching
//
// Only pages whose URL matches a TicketMatcher pattern get the overlay.
// Patterns look like Chrome match patterns:
//
//	https://*.zendesk.com/agent/tickets/*
//
// # Example Usage
//
//	host := browser.NewHost(browser.HostOptions{Headless: false})
//	if err := host.Start(); err != nil {
//	    return err
//	}
//	defer host.Shutdown()
//
//	matcher, _ := browser.NewTicketMatcher(patterns)
//	tab, err := host.OpenTicket(ctx, ticketURL, matcher, browser.MountConfig{
//	    Store:      positions,
//	    Dispatcher: dispatch.New(host.Opener(), baseURL, userType),
//	})
package browser
