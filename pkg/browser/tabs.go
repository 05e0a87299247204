package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// TabOpener opens lookups as new foreground tabs in the host's browser
// context.
type TabOpener struct {
	context playwright.BrowserContext
	timeout float64
}

// Open creates a tab, starts loading rawURL and brings it to the front.
func (o *TabOpener) Open(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.context == nil {
		return fmt.Errorf("browser host not started")
	}

	page, err := o.context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	// Only wait for the response to start; the lookup page loads on its own.
	waitUntil := playwright.WaitUntilState("commit")
	opts := playwright.PageGotoOptions{WaitUntil: &waitUntil}
	if o.timeout > 0 {
		opts.Timeout = &o.timeout
	}
	if _, err := page.Goto(rawURL, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	if err := page.BringToFront(); err != nil {
		return fmt.Errorf("failed to focus tab: %w", err)
	}
	debugLog.Infof("opened %s", rawURL)
	return nil
}
