package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// urlPattern is one compiled "scheme://host/path" pattern. Host and path
// are matched separately so a wildcard in one cannot swallow the other.
type urlPattern struct {
	scheme string
	host   glob.Glob
	path   glob.Glob
}

// TicketMatcher decides which pages get the overlay.
type TicketMatcher struct {
	patterns []urlPattern
}

// NewTicketMatcher compiles patterns such as
// "https://*.zendesk.com/agent/tickets/*". A scheme of "*" matches http and
// https.
func NewTicketMatcher(patterns []string) (*TicketMatcher, error) {
	m := &TicketMatcher{}
	for _, p := range patterns {
		compiled, err := compileURLPattern(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid ticket pattern '%s': %w", p, err)
		}
		m.patterns = append(m.patterns, compiled)
	}
	return m, nil
}

// Match reports whether rawURL matches any pattern. Query and fragment are
// ignored.
func (m *TicketMatcher) Match(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	host := strings.ToLower(u.Hostname())

	for _, p := range m.patterns {
		if p.scheme == "*" {
			if u.Scheme != "http" && u.Scheme != "https" {
				continue
			}
		} else if p.scheme != u.Scheme {
			continue
		}
		if p.host.Match(host) && p.path.Match(path) {
			return true
		}
	}
	return false
}

func compileURLPattern(pattern string) (urlPattern, error) {
	scheme, rest, ok := strings.Cut(pattern, "://")
	if !ok || scheme == "" {
		return urlPattern{}, fmt.Errorf("missing scheme")
	}

	host, path := rest, "/*"
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		host, path = rest[:i], rest[i:]
	}
	if host == "" {
		return urlPattern{}, fmt.Errorf("missing host")
	}

	hostGlob, err := glob.Compile(strings.ToLower(host))
	if err != nil {
		return urlPattern{}, err
	}
	pathGlob, err := glob.Compile(path)
	if err != nil {
		return urlPattern{}, err
	}
	return urlPattern{scheme: strings.ToLower(scheme), host: hostGlob, path: pathGlob}, nil
}
