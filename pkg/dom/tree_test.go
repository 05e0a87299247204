package dom

import (
	"testing"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const samplePage = `<html><body>
	<section id="ticket">
		<div class="field"><span title="Email">Email</span><span>jane@example.com</span></div>
		<p>Hello <b>world</b></p>
	</section>
</body></html>`

func TestTree_SnapshotIsImmutable(t *testing.T) {
	tree, err := ParseString(samplePage)
	require.NoError(t, err)

	before := tree.Snapshot()
	beforeText := TextContent(before)

	require.NoError(t, tree.AppendHTML("body", `<p>late content</p>`))

	assert.Equal(t, beforeText, TextContent(before), "old snapshot must not change")
	assert.Contains(t, TextContent(tree.Snapshot()), "late content")
	assert.NotSame(t, before, tree.Snapshot())
}

func TestTree_MutateErrorPublishesNothing(t *testing.T) {
	tree, err := ParseString(samplePage)
	require.NoError(t, err)
	before := tree.Snapshot()

	sub := tree.Observe()
	defer sub.Cancel()

	err = tree.AppendHTML("nosuchtag", `<p>x</p>`)
	require.Error(t, err)
	assert.Same(t, before, tree.Snapshot())

	select {
	case <-sub.C():
		t.Fatal("failed mutation must not notify")
	default:
	}
}

func TestHub_NotifyAndCancel(t *testing.T) {
	tree := NewTree(nil)

	sub1 := tree.Observe()
	sub2 := tree.Observe()
	assert.Equal(t, 2, tree.Observers())

	tree.Replace(nil)

	for _, sub := range []Subscription{sub1, sub2} {
		select {
		case <-sub.C():
		case <-time.After(time.Second):
			t.Fatal("expected notification")
		}
	}

	sub1.Cancel()
	sub1.Cancel()
	assert.Equal(t, 1, tree.Observers())

	sub2.Cancel()
	assert.Equal(t, 0, tree.Observers())
}

func TestHub_CoalescesBursts(t *testing.T) {
	tree := NewTree(nil)
	sub := tree.Observe()
	defer sub.Cancel()

	for i := 0; i < 5; i++ {
		tree.Notify()
	}

	<-sub.C()
	select {
	case <-sub.C():
		t.Fatal("burst should coalesce into one pending notification")
	default:
	}
}

func TestNodeHelpers(t *testing.T) {
	tree, err := ParseString(samplePage)
	require.NoError(t, err)
	root := tree.Snapshot()

	label := cascadia.Query(root, cascadia.MustCompile(`span[title="Email"]`))
	require.NotNil(t, label)

	title, ok := Attr(label, "title")
	assert.True(t, ok)
	assert.Equal(t, "Email", title)

	next := NextElementSibling(label)
	require.NotNil(t, next)
	assert.Equal(t, "jane@example.com", TextContent(next))

	parent := ParentElement(label)
	require.NotNil(t, parent)
	assert.Equal(t, "div", parent.Data)

	section := Closest(label, cascadia.MustCompile("section"))
	require.NotNil(t, section)
	id, _ := Attr(section, "id")
	assert.Equal(t, "ticket", id)

	assert.Same(t, label, Closest(label, cascadia.MustCompile("span")))
	assert.Nil(t, Closest(label, cascadia.MustCompile("article")))
	assert.Equal(t, "Hello world", TextContent(FindElement(root, func(n *html.Node) bool { return n.Data == "p" })))
}

func TestClone(t *testing.T) {
	tree, err := ParseString(samplePage)
	require.NoError(t, err)
	root := tree.Snapshot()

	c := Clone(root)
	assert.Equal(t, TextContent(root), TextContent(c))
	assert.Nil(t, c.Parent)

	span := FindElement(c, func(n *html.Node) bool { return n.Data == "span" })
	require.NotNil(t, span)
	span.Attr[0].Val = "Changed"

	orig := FindElement(root, func(n *html.Node) bool { return n.Data == "span" })
	v, _ := Attr(orig, "title")
	assert.Equal(t, "Email", v)
	assert.Nil(t, Clone(nil))
}
