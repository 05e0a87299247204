package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/quickopen/pkg/email"
	"github.com/entrhq/quickopen/pkg/overlay"
)

const removeScript = `(id) => {
  const el = document.getElementById(id);
  if (el) el.remove();
  delete window.__quickopenRender;
}`

// Tab is a browser page that carries the overlay. Bindings are registered
// once per page; each document load that matches gets a fresh widget.
type Tab struct {
	page    playwright.Page
	matcher *TicketMatcher
	cfg     MountConfig
	doc     *LiveDocument

	mu     sync.Mutex
	widget *overlay.Widget

	renders chan overlay.ViewState
	navs    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func newTab(ctx context.Context, page playwright.Page, matcher *TicketMatcher, cfg MountConfig) (*Tab, error) {
	ctx, cancel := context.WithCancel(ctx)
	t := &Tab{
		page:    page,
		matcher: matcher,
		cfg:     cfg,
		doc:     NewLiveDocument(page, DefaultRefreshInterval),
		renders: make(chan overlay.ViewState, 1),
		navs:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	// Binding callbacks run on the driver's dispatch goroutine and must not
	// call back into the page; they only hand work to the loops below.
	err := page.ExposeBinding(eventBinding, func(_ *playwright.BindingSource, args ...interface{}) interface{} {
		t.handleEvent(args)
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to expose event binding: %w", err)
	}
	err = page.ExposeBinding(mutatedBinding, func(_ *playwright.BindingSource, _ ...interface{}) interface{} {
		t.doc.Invalidate()
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to expose mutation binding: %w", err)
	}

	main := page.MainFrame()
	page.OnFrameNavigated(func(frame playwright.Frame) {
		if frame == main {
			t.signalNavigation()
		}
	})

	t.wg.Add(3)
	go func() {
		defer t.wg.Done()
		t.navigationLoop()
	}()
	go func() {
		defer t.wg.Done()
		t.renderLoop()
	}()
	go func() {
		defer t.wg.Done()
		t.doc.Run(ctx)
	}()

	return t, nil
}

// Widget returns the overlay of the current document, or nil when the page
// is not a ticket.
func (t *Tab) Widget() *overlay.Widget {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.widget
}

// Document returns the live mirror of the page.
func (t *Tab) Document() *LiveDocument {
	return t.doc
}

// URL is the page's current address.
func (t *Tab) URL() string {
	return t.page.URL()
}

// Close unmounts the overlay, stops background work and closes the page.
func (t *Tab) Close() error {
	var err error
	t.once.Do(func() {
		t.cancel()
		t.wg.Wait()
		t.unmount()
		if !t.page.IsClosed() {
			err = t.page.Close()
		}
	})
	return err
}

func (t *Tab) signalNavigation() {
	select {
	case t.navs <- struct{}{}:
	default:
	}
}

func (t *Tab) navigationLoop() {
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-t.navs:
			if err := t.ensureMounted(); err != nil {
				debugLog.Warnf("failed to mount overlay on %s: %v", t.page.URL(), err)
			}
		}
	}
}

// ensureMounted mounts a widget if the current document is a ticket page and
// does not carry the overlay yet.
func (t *Tab) ensureMounted() error {
	pageURL := t.page.URL()
	if !t.matcher.Match(pageURL) {
		debugLog.Debugf("not a ticket page: %s", pageURL)
		if t.Widget() != nil {
			t.unmount()
			if _, err := t.page.Evaluate(removeScript, overlay.RootID); err != nil {
				return fmt.Errorf("failed to remove overlay: %w", err)
			}
		}
		return nil
	}

	res, err := t.page.Evaluate(bootstrapScript)
	if err != nil {
		return fmt.Errorf("failed to inject overlay: %w", err)
	}
	viewport, ok := res.(map[string]interface{})
	if !ok {
		// The document already has the overlay.
		return nil
	}
	vw, _ := toFloat(viewport["w"])
	vh, _ := toFloat(viewport["h"])

	t.unmount()
	if err := t.doc.Refresh(); err != nil {
		debugLog.Warnf("initial snapshot failed: %v", err)
	}

	var w *overlay.Widget
	w = overlay.NewWidget(overlay.Config{
		Geometry:      t.cfg.Geometry,
		Store:         t.cfg.Store,
		Finder:        email.NewLocator(t.doc),
		Dispatcher:    t.cfg.Dispatcher,
		WaitTimeout:   t.cfg.WaitTimeout,
		FlashDuration: t.cfg.FlashDuration,
		OnChange: func(vs overlay.ViewState) {
			t.queueRender(w, vs)
		},
	})

	t.mu.Lock()
	t.widget = w
	t.mu.Unlock()

	w.Mount(vw, vh)
	debugLog.Infof("overlay mounted on %s", pageURL)
	return nil
}

func (t *Tab) unmount() {
	t.mu.Lock()
	w := t.widget
	t.widget = nil
	t.mu.Unlock()

	if w != nil {
		w.Close()
	}
}

func (t *Tab) handleEvent(args []interface{}) {
	ev, err := decodeEvent(args)
	if err != nil {
		debugLog.Debugf("dropping page event: %v", err)
		return
	}
	w := t.Widget()
	if w == nil {
		return
	}
	if err := dispatchEvent(w, ev); err != nil {
		debugLog.Debugf("dropping page event: %v", err)
	}
}

// queueRender keeps only the newest state of the current widget.
func (t *Tab) queueRender(w *overlay.Widget, vs overlay.ViewState) {
	if t.Widget() != w {
		return
	}
	for {
		select {
		case t.renders <- vs:
			return
		default:
		}
		select {
		case <-t.renders:
		default:
		}
	}
}

func (t *Tab) renderLoop() {
	expr := fmt.Sprintf("(m) => window.%[1]s && window.%[1]s(m)", renderFunction)
	for {
		select {
		case <-t.ctx.Done():
			return
		case vs := <-t.renders:
			markup, err := overlay.Render(vs)
			if err != nil {
				debugLog.Errorf("render failed: %v", err)
				continue
			}
			_, err = t.page.Evaluate(expr, map[string]interface{}{
				"hostStyle": markup.HostStyle,
				"style":     markup.Style,
				"body":      markup.Body,
			})
			if err != nil && t.ctx.Err() == nil {
				debugLog.Warnf("failed to draw overlay: %v", err)
			}
		}
	}
}
