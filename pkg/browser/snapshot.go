package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/quickopen/pkg/dom"
	"github.com/entrhq/quickopen/pkg/overlay"
)

// Snapshot is a cleaned copy of the live page.
type Snapshot struct {
	Root  *html.Node
	Title string
}

// cleanSnapshot parses page content and prunes everything the locator never
// needs to look at: scripts, styles, embedded documents and the overlay's own
// host element.
func cleanSnapshot(rawHTML string) (*Snapshot, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	prune(doc)
	return &Snapshot{Root: doc, Title: extractTitle(doc)}, nil
}

// prune removes skipped elements and comments below n in place.
func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isSkippedNode(c) {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

func isSkippedNode(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.ElementNode:
		if id, _ := dom.Attr(n, "id"); id == overlay.RootID {
			return true
		}
		return isSkippedElement(strings.ToLower(n.Data))
	}
	return false
}

// isSkippedElement returns true for elements that should be completely removed
func isSkippedElement(tagName string) bool {
	skipped := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"template": true,
		"iframe":   true,
		"embed":    true,
		"object":   true,
		"svg":      true,
	}
	return skipped[tagName]
}

// extractTitle extracts the page title from the document
func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(dom.TextContent(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if title != "" {
				return
			}
		}
	}
	traverse(doc)
	return title
}
