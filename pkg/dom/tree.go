package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Tree is an in-memory Document. Mutations are applied to a private copy
// which is then published atomically, so snapshots handed out earlier stay
// valid and unchanged.
type Tree struct {
	Hub

	mu   sync.RWMutex
	root *html.Node
}

// NewTree wraps an already parsed root. A nil root yields an empty document.
func NewTree(root *html.Node) *Tree {
	if root == nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	return &Tree{root: root}
}

// Parse reads an HTML document into a Tree.
func Parse(r io.Reader) (*Tree, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewTree(root), nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Tree, error) {
	return Parse(strings.NewReader(s))
}

// Snapshot returns the current published root.
func (t *Tree) Snapshot() *html.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Mutate applies fn to a copy of the current tree, publishes the result and
// notifies observers. If fn returns an error nothing is published.
func (t *Tree) Mutate(fn func(root *html.Node) error) error {
	t.mu.Lock()
	next := Clone(t.root)
	if err := fn(next); err != nil {
		t.mu.Unlock()
		return err
	}
	t.root = next
	t.mu.Unlock()

	t.Notify()
	return nil
}

// Replace publishes a new root and notifies observers.
func (t *Tree) Replace(root *html.Node) {
	if root == nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()

	t.Notify()
}

// AppendHTML parses fragment in the context of the first element matching
// parentTag (body when empty) and appends the resulting nodes to it.
func (t *Tree) AppendHTML(parentTag, fragment string) error {
	if parentTag == "" {
		parentTag = "body"
	}
	return t.Mutate(func(root *html.Node) error {
		parent := FindElement(root, func(n *html.Node) bool { return n.Data == parentTag })
		if parent == nil {
			return fmt.Errorf("no <%s> element in document", parentTag)
		}
		nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
		if err != nil {
			return fmt.Errorf("failed to parse fragment: %w", err)
		}
		for _, n := range nodes {
			parent.AppendChild(n)
		}
		return nil
	})
}

// Clone deep-copies n and its descendants. The copy is detached from any
// parent or siblings n may have.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}
