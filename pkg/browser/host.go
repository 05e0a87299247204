package browser

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/quickopen/pkg/logging"
)

//go:embed bootstrap.js
var bootstrapScript string

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("browser")
	if err != nil {
		debugLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}
}

// Host owns the Playwright driver, one browser context and the ticket tabs
// opened in it.
type Host struct {
	mu          sync.Mutex
	opts        HostOptions
	playwright  *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	tabs        map[*Tab]struct{}
	initialized bool
}

// NewHost creates a host. Start must be called before opening tabs.
func NewHost(opts HostOptions) *Host {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Host{
		opts: opts,
		tabs: make(map[*Tab]struct{}),
	}
}

// Start installs and runs Playwright and launches Chromium.
func (h *Host) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	// Driver output would interleave with the CLI's own
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	viewport := &playwright.Size{
		Width:  h.opts.Viewport.Width,
		Height: h.opts.Viewport.Height,
	}

	if h.opts.UserDataDir != "" {
		bc, err := pw.Chromium.LaunchPersistentContext(h.opts.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: &h.opts.Headless,
			Viewport: viewport,
		})
		if err != nil {
			_ = pw.Stop()
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		h.context = bc
	} else {
		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: &h.opts.Headless,
		})
		if err != nil {
			_ = pw.Stop()
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		bc, err := browser.NewContext(playwright.BrowserNewContextOptions{Viewport: viewport})
		if err != nil {
			browser.Close()
			_ = pw.Stop()
			return fmt.Errorf("failed to create context: %w", err)
		}
		h.browser = browser
		h.context = bc
	}

	h.playwright = pw
	h.initialized = true
	debugLog.Infof("browser started (headless=%t)", h.opts.Headless)
	return nil
}

// Opener returns a dispatch.Opener that opens URLs as new foreground tabs.
func (h *Host) Opener() *TabOpener {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &TabOpener{context: h.context, timeout: h.opts.Timeout}
}

// OpenTicket opens ticketURL in a new tab that carries the overlay whenever
// it shows a page matcher accepts.
func (h *Host) OpenTicket(ctx context.Context, ticketURL string, matcher *TicketMatcher, cfg MountConfig) (*Tab, error) {
	h.mu.Lock()
	if !h.initialized {
		h.mu.Unlock()
		return nil, fmt.Errorf("browser host not started")
	}
	bc := h.context
	h.mu.Unlock()

	page, err := bc.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(h.opts.Timeout)

	tab, err := newTab(ctx, page, matcher, cfg)
	if err != nil {
		page.Close()
		return nil, err
	}

	h.mu.Lock()
	h.tabs[tab] = struct{}{}
	h.mu.Unlock()

	if _, err := page.Goto(ticketURL); err != nil {
		h.closeTab(tab)
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	tab.signalNavigation()
	return tab, nil
}

func (h *Host) closeTab(tab *Tab) {
	h.mu.Lock()
	delete(h.tabs, tab)
	h.mu.Unlock()
	_ = tab.Close()
}

// Shutdown closes every tab, the browser and Playwright.
func (h *Host) Shutdown() error {
	h.mu.Lock()
	tabs := make([]*Tab, 0, len(h.tabs))
	for tab := range h.tabs {
		tabs = append(tabs, tab)
	}
	h.tabs = make(map[*Tab]struct{})
	h.mu.Unlock()

	for _, tab := range tabs {
		_ = tab.Close()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return nil
	}
	if h.context != nil {
		_ = h.context.Close() // Ignore errors, continue cleanup
	}
	if h.browser != nil {
		_ = h.browser.Close() // Ignore errors, continue cleanup
	}
	h.initialized = false
	if err := h.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
