package email

import (
	"context"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/entrhq/quickopen/pkg/dom"
)

// DefaultWaitTimeout is how long a lookup waits for the field to render.
const DefaultWaitTimeout = 3500 * time.Millisecond

// maxAncestorLevels bounds the final walk up from the anchor.
const maxAncestorLevels = 4

var (
	// DefaultAnchor marks the ticket's email field.
	DefaultAnchor = cascadia.MustCompile(`span[title="Email"]`)

	// containerSelector lists elements likely to wrap a label and its value.
	containerSelector = cascadia.MustCompile(`[data-test-id], li, dd, div, section, article`)

	mailtoSelector = cascadia.MustCompile(`a[href^="mailto:"]`)
)

// Locator searches a Document for the ticket email.
type Locator struct {
	doc    dom.Document
	anchor cascadia.Matcher
}

// Option configures a Locator.
type Option func(*Locator)

// WithAnchor overrides the label anchor selector.
func WithAnchor(sel cascadia.Matcher) Option {
	return func(l *Locator) {
		l.anchor = sel
	}
}

// NewLocator creates a Locator over doc.
func NewLocator(doc dom.Document, opts ...Option) *Locator {
	l := &Locator{
		doc:    doc,
		anchor: DefaultAnchor,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FindNow runs one search over the current snapshot.
func (l *Locator) FindNow() (string, bool) {
	return Find(l.doc.Snapshot(), l.anchor)
}

// WaitForEmail returns as soon as an address can be found, re-checking on
// every document change. It reports false once timeout elapses or ctx is
// done. The change subscription never outlives the call.
func (l *Locator) WaitForEmail(ctx context.Context, timeout time.Duration) (string, bool) {
	if addr, ok := l.FindNow(); ok {
		return addr, true
	}

	sub := l.doc.Observe()
	defer sub.Cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// A change may have landed between the first search and Observe.
	if addr, ok := l.FindNow(); ok {
		return addr, true
	}

	for {
		select {
		case <-sub.C():
			if addr, ok := l.FindNow(); ok {
				return addr, true
			}
		case <-timer.C:
			return "", false
		case <-ctx.Done():
			return "", false
		}
	}
}

// Find locates the anchor in root and tries, in order: the anchor itself,
// its likely container (or parent), its next element sibling, its parent's
// next element sibling and up to four ancestors.
func Find(root *html.Node, anchor cascadia.Matcher) (string, bool) {
	if root == nil {
		return "", false
	}
	label := cascadia.Query(root, anchor)
	if label == nil {
		return "", false
	}

	if addr, ok := FromNode(label); ok {
		return addr, true
	}

	container := dom.Closest(label, containerSelector)
	if container == nil {
		container = dom.ParentElement(label)
	}
	if addr, ok := FromNode(container); ok {
		return addr, true
	}

	if addr, ok := FromNode(dom.NextElementSibling(label)); ok {
		return addr, true
	}

	if addr, ok := FromNode(dom.NextElementSibling(dom.ParentElement(label))); ok {
		return addr, true
	}

	p := dom.ParentElement(label)
	for i := 0; i < maxAncestorLevels && p != nil; i++ {
		if addr, ok := FromNode(p); ok {
			return addr, true
		}
		p = dom.ParentElement(p)
	}

	return "", false
}

// FromNode extracts an address from n: a descendant mailto link first, then
// the first address in its text content.
func FromNode(n *html.Node) (string, bool) {
	if n == nil {
		return "", false
	}

	if link := cascadia.Query(n, mailtoSelector); link != nil {
		href, _ := dom.Attr(link, "href")
		candidate := href[len("mailto:"):]
		if i := strings.IndexByte(candidate, '?'); i >= 0 {
			candidate = candidate[:i]
		}
		if _, ok := Match(candidate); ok {
			return Sanitize(candidate)
		}
	}

	if m, ok := Match(dom.TextContent(n)); ok {
		return Sanitize(m)
	}
	return "", false
}
