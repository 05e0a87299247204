// Package dom models the host page as an injected document environment.
//
// A Document exposes two things: the current tree, as an immutable snapshot
// parsed with golang.org/x/net/html, and a subscribable stream of change
// notifications. Consumers never hold on to nodes across notifications; every
// search re-reads the latest snapshot because the page may have re-rendered.
//
// Two implementations exist in this module:
//
//   - Tree: an in-memory, copy-on-write document used by the simulator,
//     the CLI and tests
//   - browser.LiveDocument: a snapshot of a real page that refreshes whenever
//     an injected MutationObserver reports a change
package dom

import (
	"sync"

	"golang.org/x/net/html"
)

// Document is the page environment the email locator searches.
type Document interface {
	// Snapshot returns the current document root. The returned tree is
	// read-only and never mutated after it has been published.
	Snapshot() *html.Node

	// Observe starts a change subscription. Every structural or text
	// mutation anywhere in the document produces at least one notification;
	// bursts may be coalesced into a single one.
	Observe() Subscription
}

// Subscription is a live change-notification stream.
type Subscription interface {
	// C delivers one value per (coalesced) mutation batch.
	C() <-chan struct{}

	// Cancel stops delivery. Safe to call more than once.
	Cancel()
}

// Hub fans change notifications out to subscribers. Documents embed it.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// Observe registers a new subscriber.
func (h *Hub) Observe() Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan struct{})
	}
	id := h.nextID
	h.nextID++

	// Buffer of one: a pending notification already means "re-check".
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return &subscription{hub: h, id: id, ch: ch}
}

// Notify signals every subscriber without blocking.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Observers reports the number of active subscriptions.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

type subscription struct {
	hub  *Hub
	id   int
	ch   chan struct{}
	once sync.Once
}

func (s *subscription) C() <-chan struct{} {
	return s.ch
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s.id)
	})
}
