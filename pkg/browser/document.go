package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/entrhq/quickopen/pkg/dom"
)

// ContentSource returns the current serialized page. playwright.Page
// satisfies it.
type ContentSource interface {
	Content() (string, error)
}

// LiveDocument mirrors a browser page as a dom.Document. The injected
// observer reports mutations through Invalidate; a background loop re-reads
// the page at most once per refresh interval and publishes the cleaned
// snapshot, which wakes every subscriber.
type LiveDocument struct {
	src     ContentSource
	tree    *dom.Tree
	limiter *rate.Limiter

	mu    sync.RWMutex
	title string

	dirty chan struct{}
}

// NewLiveDocument creates a document over src. It is empty until Refresh or
// Run has read the page.
func NewLiveDocument(src ContentSource, refreshInterval time.Duration) *LiveDocument {
	limit := rate.Inf
	if refreshInterval > 0 {
		limit = rate.Every(refreshInterval)
	}
	return &LiveDocument{
		src:     src,
		tree:    dom.NewTree(nil),
		limiter: rate.NewLimiter(limit, 1),
		dirty:   make(chan struct{}, 1),
	}
}

// Snapshot returns the latest published tree.
func (d *LiveDocument) Snapshot() *html.Node {
	return d.tree.Snapshot()
}

// Observe subscribes to published changes.
func (d *LiveDocument) Observe() dom.Subscription {
	return d.tree.Observe()
}

// Title is the page title from the latest snapshot.
func (d *LiveDocument) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// Invalidate marks the page as changed. It never blocks, so it is safe to
// call from a binding callback.
func (d *LiveDocument) Invalidate() {
	select {
	case d.dirty <- struct{}{}:
	default:
	}
}

// Refresh reads the page now and publishes it.
func (d *LiveDocument) Refresh() error {
	content, err := d.src.Content()
	if err != nil {
		return fmt.Errorf("failed to read page content: %w", err)
	}
	snap, err := cleanSnapshot(content)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.title = snap.Title
	d.mu.Unlock()

	d.tree.Replace(snap.Root)
	return nil
}

// Run refreshes after each invalidation until ctx is done. Invalidations
// that arrive while waiting on the limiter collapse into one refresh.
func (d *LiveDocument) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.dirty:
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return
		}
		if err := d.Refresh(); err != nil {
			debugLog.Warnf("live document refresh failed: %v", err)
		}
	}
}
