package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketMatcher(t *testing.T) {
	m, err := NewTicketMatcher([]string{"https://*.zendesk.com/agent/tickets/*"})
	require.NoError(t, err)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.zendesk.com/agent/tickets/123", true},
		{"https://acme.zendesk.com/agent/tickets/123/events", true},
		{"https://ACME.zendesk.com/agent/tickets/123?x=1#frag", true},
		{"https://a.b.zendesk.com/agent/tickets/1", true},
		{"http://acme.zendesk.com/agent/tickets/123", false},
		{"https://acme.zendesk.com/agent/dashboard", false},
		{"https://evil.example/acme.zendesk.com/agent/tickets/1", false},
		{"https://zendesk.com.evil.example/agent/tickets/1", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.url))
		})
	}
}

func TestTicketMatcher_AnyScheme(t *testing.T) {
	m, err := NewTicketMatcher([]string{"*://localhost/tickets/*"})
	require.NoError(t, err)

	assert.True(t, m.Match("http://localhost/tickets/7"))
	assert.True(t, m.Match("https://localhost/tickets/7"))
	assert.False(t, m.Match("ftp://localhost/tickets/7"))
	assert.False(t, m.Match("file:///tmp/ticket.html"), "hostless urls never match")
}

func TestTicketMatcher_HostOnlyPattern(t *testing.T) {
	m, err := NewTicketMatcher([]string{"https://support.example.com"})
	require.NoError(t, err)
	assert.True(t, m.Match("https://support.example.com/anything"))
	assert.True(t, m.Match("https://support.example.com"))
}

func TestTicketMatcher_Invalid(t *testing.T) {
	for _, p := range []string{"zendesk.com/agent/*", "https://", "://host/x", "https:///path"} {
		_, err := NewTicketMatcher([]string{p})
		assert.Error(t, err, p)
	}
}
