package browser

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/entrhq/quickopen/pkg/email"
)

// fakePage serves whatever content the test last set.
type fakePage struct {
	mu      sync.Mutex
	content string
	err     error
	reads   int
}

func (p *fakePage) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	return p.content, p.err
}

func (p *fakePage) set(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = content
}

func (p *fakePage) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, n))
	return buf.String()
}

func TestCleanSnapshot(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantHTML  []string // substrings that should be present
		wantNot   []string // substrings that should NOT be present
	}{
		{
			name: "script and style removal",
			input: `<html>
				<head>
					<title> Ticket #42 </title>
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body><span title="Email">Email</span><a href="mailto:a@b.co">a@b.co</a></body>
			</html>`,
			wantTitle: "Ticket #42",
			wantHTML:  []string{`<span title="Email">`, `href="mailto:a@b.co"`},
			wantNot:   []string{"alert", "color: red"},
		},
		{
			name:     "overlay host removed",
			input:    `<body><p>visible</p><div id="vrc-fab-root"><button title="Open VRC menu"></button></div></body>`,
			wantHTML: []string{"visible"},
			wantNot:  []string{"vrc-fab-root", "Open VRC menu"},
		},
		{
			name:     "comments and embeds removed",
			input:    `<body><!-- hidden@example.com --><iframe src="x"></iframe><noscript>n@example.com</noscript><p>kept</p></body>`,
			wantHTML: []string{"kept"},
			wantNot:  []string{"hidden@example.com", "iframe", "n@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := cleanSnapshot(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, snap.Title)

			out := render(t, snap.Root)
			for _, want := range tt.wantHTML {
				assert.Contains(t, out, want)
			}
			for _, not := range tt.wantNot {
				assert.NotContains(t, out, not)
			}
		})
	}
}

func TestLiveDocument_Refresh(t *testing.T) {
	page := &fakePage{content: `<html><head><title>T</title></head><body><span title="Email">Email</span> <span>jane@example.com</span></body></html>`}
	doc := NewLiveDocument(page, 0)

	got, ok := email.NewLocator(doc).FindNow()
	assert.False(t, ok, "empty until the first refresh")
	assert.Empty(t, got)

	sub := doc.Observe()
	defer sub.Cancel()

	require.NoError(t, doc.Refresh())
	select {
	case <-sub.C():
	case <-time.After(time.Second):
		t.Fatal("refresh did not notify")
	}

	got, ok = email.NewLocator(doc).FindNow()
	assert.True(t, ok)
	assert.Equal(t, "jane@example.com", got)
	assert.Equal(t, "T", doc.Title())
}

func TestLiveDocument_RefreshError(t *testing.T) {
	page := &fakePage{err: errors.New("target closed")}
	doc := NewLiveDocument(page, 0)

	err := doc.Refresh()
	require.Error(t, err)
	assert.True(t, errors.Is(err, page.err))
}

func TestLiveDocument_LateEmailWakesLocator(t *testing.T) {
	page := &fakePage{content: `<body><p>loading</p></body>`}
	doc := NewLiveDocument(page, 0)
	require.NoError(t, doc.Refresh())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go doc.Run(ctx)

	go func() {
		time.Sleep(30 * time.Millisecond)
		page.set(`<body><span title="Email">Email</span><a href="mailto:late@example.com?subject=hi">Late</a></body>`)
		doc.Invalidate()
	}()

	start := time.Now()
	got, ok := email.NewLocator(doc).WaitForEmail(ctx, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, "late@example.com", got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLiveDocument_InvalidationsCoalesce(t *testing.T) {
	page := &fakePage{content: `<body></body>`}
	doc := NewLiveDocument(page, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		doc.Run(ctx)
		close(done)
	}()

	for i := 0; i < 20; i++ {
		doc.Invalidate()
	}
	time.Sleep(120 * time.Millisecond)
	cancel()
	<-done

	reads := page.Reads()
	assert.GreaterOrEqual(t, reads, 1)
	assert.LessOrEqual(t, reads, 3, "a burst of invalidations collapses")
}

func TestBootstrapScript(t *testing.T) {
	assert.True(t, strings.HasPrefix(strings.TrimSpace(bootstrapScript), "() =>"))
	for _, name := range []string{`"vrc-fab-root"`, eventBinding, mutatedBinding, renderFunction} {
		assert.Contains(t, bootstrapScript, name)
	}
}
