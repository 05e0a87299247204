// Package dispatch turns a found email address into a lookup and hands the
// resulting URL to whatever opens tabs.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/entrhq/quickopen/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("dispatch")
	if err != nil {
		debugLog.Warnf("Failed to initialize dispatch logger, using stderr fallback: %v", err)
	}
}

const (
	DefaultBaseURL  = "https://vrc.a8c.com/"
	DefaultUserType = "wpcom"
)

// Opener opens a URL in a new foreground tab.
type Opener interface {
	Open(ctx context.Context, rawURL string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, rawURL string) error

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, rawURL string) error {
	return f(ctx, rawURL)
}

// Dispatcher builds lookup URLs and opens them.
type Dispatcher struct {
	opener   Opener
	baseURL  string
	userType string
}

// New creates a Dispatcher. Empty baseURL or userType fall back to the
// defaults.
func New(opener Opener, baseURL, userType string) *Dispatcher {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(userType) == "" {
		userType = DefaultUserType
	}
	return &Dispatcher{opener: opener, baseURL: baseURL, userType: userType}
}

// OpenLookup opens the lookup for email. Blank addresses are ignored.
func (d *Dispatcher) OpenLookup(ctx context.Context, email string, includePayments bool) error {
	email = strings.TrimSpace(email)
	if email == "" {
		debugLog.Debugf("ignoring lookup for empty email")
		return nil
	}

	target, err := BuildLookupURL(d.baseURL, d.userType, email, includePayments)
	if err != nil {
		return err
	}
	debugLog.Infof("opening lookup for %s (payments=%t)", email, includePayments)
	return d.open(ctx, target)
}

// OpenURL opens an arbitrary URL. Blank URLs are ignored.
func (d *Dispatcher) OpenURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		debugLog.Debugf("ignoring empty url")
		return nil
	}
	return d.open(ctx, rawURL)
}

func (d *Dispatcher) open(ctx context.Context, target string) error {
	if err := d.opener.Open(ctx, target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// BuildLookupURL returns baseURL with the lookup query set. Parameters the
// base already carries are kept unless they are overwritten here.
func BuildLookupURL(baseURL, userType, email string, includePayments bool) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q: must be absolute", baseURL)
	}

	params := [][2]string{
		{"user_query", email},
		{"user_type", userType},
	}
	if includePayments {
		params = append(params,
			[2]string{"include-transactions", "on"},
			[2]string{"include-payment-failures", "on"},
		)
	}

	existing := u.Query()
	for _, p := range params {
		existing.Del(p[0])
	}

	var b strings.Builder
	b.WriteString(existing.Encode())
	for _, p := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	u.RawQuery = b.String()
	return u.String(), nil
}

// WriterOpener prints each URL on its own line instead of opening it.
type WriterOpener struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOpener creates a WriterOpener over w.
func NewWriterOpener(w io.Writer) *WriterOpener {
	return &WriterOpener{w: w}
}

// Open writes rawURL.
func (o *WriterOpener) Open(_ context.Context, rawURL string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := fmt.Fprintln(o.w, rawURL)
	return err
}
