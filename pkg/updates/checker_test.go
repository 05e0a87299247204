package updates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/entrhq/quickopen/pkg/config"
)

type staticSettings struct {
	enabled  bool
	repo     string
	interval time.Duration
}

func (s staticSettings) Settings() (bool, string, time.Duration) {
	return s.enabled, s.repo, s.interval
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"v1.2.3", "1.2.3", 0},
		{"1.2", "1.2.0", 0},
		{"1.10.0", "1.9.9", 1},
		{"1.2.3", "1.2.4", -1},
		{"2.0.0-beta", "1.9.0", 1},
		{"1.x.0", "1.0.0", 0},
		{"", "0.0.1", -1},
		{" V3 ", "2.99", 1},
		{"99999999999999999999999.1", "0.1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func newBackend(t *testing.T) *config.FileStore {
	t.Helper()
	store, err := config.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return store
}

func newTestChecker(t *testing.T, srv *httptest.Server, settings Settings, backend Backend, current string) *Checker {
	t.Helper()
	opts := []Option{
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	}
	if srv != nil {
		opts = append(opts, WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))
	}
	return NewChecker(settings, backend, current, opts...)
}

func releaseServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/repos/acme/quickopen/releases/latest", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestChecker_UpdateAvailable(t *testing.T) {
	srv, _ := releaseServer(t, http.StatusOK, `{"tag_name":"v1.3.0","html_url":"https://github.com/acme/quickopen/releases/tag/v1.3.0"}`)
	backend := newBackend(t)
	c := newTestChecker(t, srv, staticSettings{enabled: true, repo: "acme/quickopen"}, backend, "v1.2.9")

	info := c.Check(context.Background())
	assert.Equal(t, StatusUpdateAvailable, info.Status)
	assert.Equal(t, "1.3.0", info.LatestVersion)
	assert.Equal(t, "1.2.9", info.CurrentVersion)
	assert.Equal(t, "https://github.com/acme/quickopen/releases/tag/v1.3.0", info.ReleaseURL)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, info, last)
}

func TestChecker_UpToDateFallsBackToName(t *testing.T) {
	srv, _ := releaseServer(t, http.StatusOK, `{"tag_name":"","name":"1.2.0"}`)
	c := newTestChecker(t, srv, staticSettings{enabled: true, repo: "acme/quickopen"}, newBackend(t), "1.2.0")

	info := c.Check(context.Background())
	assert.Equal(t, StatusUpToDate, info.Status)
	assert.Equal(t, "1.2.0", info.LatestVersion)
	assert.Equal(t, "https://github.com/acme/quickopen/releases/latest", info.ReleaseURL)
}

func TestChecker_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"http status", http.StatusNotFound, `{"message":"Not Found"}`, "GitHub API error: 404"},
		{"bad json", http.StatusOK, `{`, "parse response"},
		{"no version", http.StatusOK, `{"tag_name":"  ","name":""}`, ErrNoVersion.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := releaseServer(t, tt.status, tt.body)
			c := newTestChecker(t, srv, staticSettings{enabled: true, repo: "acme/quickopen"}, newBackend(t), "1.0.0")

			info := c.Check(context.Background())
			assert.Equal(t, StatusError, info.Status)
			assert.Contains(t, info.Error, tt.errMsg)
			assert.False(t, info.CheckedAt.IsZero())

			last, ok := c.Last()
			require.True(t, ok, "errors are persisted too")
			assert.Equal(t, StatusError, last.Status)
		})
	}
}

func TestChecker_DisabledClearsStoredInfo(t *testing.T) {
	srv, hits := releaseServer(t, http.StatusOK, `{"tag_name":"v2.0.0"}`)
	backend := newBackend(t)

	enabled := newTestChecker(t, srv, staticSettings{enabled: true, repo: "acme/quickopen"}, backend, "1.0.0")
	enabled.Check(context.Background())
	_, ok := enabled.Last()
	require.True(t, ok)

	for _, settings := range []staticSettings{{enabled: false, repo: "acme/quickopen"}, {enabled: true, repo: "  "}} {
		c := newTestChecker(t, srv, settings, backend, "1.0.0")
		assert.Equal(t, Info{Status: StatusDisabled}, c.Check(context.Background()))
		_, ok = c.Last()
		assert.False(t, ok)
	}
	assert.Equal(t, int32(1), hits.Load(), "disabled checks make no request")
}

func TestChecker_RunChecksImmediatelyWhenEnabled(t *testing.T) {
	srv, hits := releaseServer(t, http.StatusOK, `{"tag_name":"v1.0.0"}`)
	c := newTestChecker(t, srv, staticSettings{enabled: true, repo: "acme/quickopen", interval: time.Hour}, newBackend(t), "1.0.0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)

	c.Reschedule()
	assert.Eventually(t, func() bool { return hits.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestChecker_RunDisabledMakesNoRequest(t *testing.T) {
	srv, hits := releaseServer(t, http.StatusOK, `{"tag_name":"v1.0.0"}`)
	c := newTestChecker(t, srv, staticSettings{enabled: false, repo: "acme/quickopen", interval: time.Hour}, newBackend(t), "1.0.0")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	c.Run(ctx)
	assert.Equal(t, int32(0), hits.Load())
}

func TestChecker_SettingsSection(t *testing.T) {
	section := config.NewUpdateChecksSection()
	require.NoError(t, section.SetData(map[string]interface{}{"enabled": true, "repo": "acme/quickopen"}))

	srv, _ := releaseServer(t, http.StatusOK, `{"tag_name":"v0.9.0"}`)
	c := newTestChecker(t, srv, section, newBackend(t), "1.0.0")
	assert.Equal(t, StatusUpToDate, c.Check(context.Background()).Status)
}
