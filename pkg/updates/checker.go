package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/entrhq/quickopen/pkg/logging"
)

// SectionID is the key the last result is stored under.
const SectionID = "update_info"

// DefaultAPIBase is GitHub's REST endpoint.
const DefaultAPIBase = "https://api.github.com"

// DefaultInterval spaces scheduled checks to stay well inside GitHub's
// unauthenticated rate limit.
const DefaultInterval = 6 * time.Hour

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("updates")
	if err != nil {
		debugLog.Warnf("Failed to initialize updates logger, using stderr fallback: %v", err)
	}
}

// Status is the outcome of a check.
type Status string

const (
	StatusDisabled        Status = "disabled"
	StatusError           Status = "error"
	StatusUpdateAvailable Status = "update_available"
	StatusUpToDate        Status = "up_to_date"
)

// Info is the result of one check.
type Info struct {
	Status         Status    `json:"status" yaml:"status"`
	LatestVersion  string    `json:"latest_version,omitempty" yaml:"latest_version,omitempty"`
	CurrentVersion string    `json:"current_version,omitempty" yaml:"current_version,omitempty"`
	ReleaseURL     string    `json:"release_url,omitempty" yaml:"release_url,omitempty"`
	Error          string    `json:"error,omitempty" yaml:"error,omitempty"`
	CheckedAt      time.Time `json:"checked_at,omitempty" yaml:"checked_at,omitempty"`
}

// Settings supplies whether checks run, against which owner/name repo and
// how often. config.UpdateChecksSection satisfies it.
type Settings interface {
	Settings() (enabled bool, repo string, interval time.Duration)
}

// Backend is where results are persisted.
type Backend interface {
	GetSection(sectionID string) (map[string]interface{}, error)
	SetSection(sectionID string, data map[string]interface{}) error
	DeleteSection(sectionID string) error
	Save() error
}

type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Checker fetches the latest release and compares it with the running
// version.
type Checker struct {
	settings Settings
	backend  Backend
	current  string

	apiBase string
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time

	reschedule chan struct{}
}

// Option configures a Checker.
type Option func(*Checker)

// WithAPIBase points the checker at another GitHub-compatible API.
func WithAPIBase(base string) Option {
	return func(c *Checker) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// WithLimiter replaces the limiter that spaces out requests.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Checker) { c.limiter = l }
}

// WithClock replaces the clock used for CheckedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a Checker for the given running version.
func NewChecker(settings Settings, backend Backend, currentVersion string, opts ...Option) *Checker {
	c := &Checker{
		settings:   settings,
		backend:    backend,
		current:    Normalize(currentVersion),
		apiBase:    DefaultAPIBase,
		client:     &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(5*time.Second), 1),
		now:        time.Now,
		reschedule: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs one check and persists its result. Disabled checks clear the
// stored result. Failures are reported in the returned Info, never as an
// error.
func (c *Checker) Check(ctx context.Context) Info {
	enabled, repo, _ := c.settings.Settings()
	repo = strings.TrimSpace(repo)
	if !enabled || repo == "" {
		c.clear()
		return Info{Status: StatusDisabled}
	}

	info, err := c.fetch(ctx, repo)
	if err != nil {
		debugLog.Warnf("update check for %s failed: %v", repo, err)
		info = Info{Status: StatusError, Error: err.Error()}
	}
	info.CheckedAt = c.now().UTC()

	c.store(info)
	return info
}

// Last returns the most recently stored result.
func (c *Checker) Last() (Info, bool) {
	data, err := c.backend.GetSection(SectionID)
	if err != nil || len(data) == 0 {
		return Info{}, false
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Info{}, false
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		debugLog.Debugf("ignoring malformed update info: %v", err)
		return Info{}, false
	}
	return info, info.Status != ""
}

// Reschedule makes a running Run re-read its settings and check at once
// if enabled.
func (c *Checker) Reschedule() {
	select {
	case c.reschedule <- struct{}{}:
	default:
	}
}

// Run checks once if enabled and then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	for {
		enabled, _, interval := c.settings.Settings()
		if interval <= 0 {
			interval = DefaultInterval
		}
		if enabled {
			c.Check(ctx)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.reschedule:
			timer.Stop()
			if e, _, _ := c.settings.Settings(); !e {
				c.clear()
			}
		case <-timer.C:
		}
	}
}

func (c *Checker) fetch(ctx context.Context, repo string) (Info, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Info{}, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Info{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("GitHub API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Info{}, fmt.Errorf("read response: %w", err)
	}

	var rel release
	if err := json.Unmarshal(body, &rel); err != nil {
		return Info{}, fmt.Errorf("parse response: %w", err)
	}

	latest := Normalize(rel.TagName)
	if latest == "" {
		latest = Normalize(rel.Name)
	}
	if latest == "" {
		return Info{}, ErrNoVersion
	}

	releaseURL := strings.TrimSpace(rel.HTMLURL)
	if releaseURL == "" {
		releaseURL = fmt.Sprintf("https://github.com/%s/releases/latest", repo)
	}

	status := StatusUpToDate
	if Compare(latest, c.current) > 0 {
		status = StatusUpdateAvailable
	}
	debugLog.Infof("latest release of %s is %s (running %s): %s", repo, latest, c.current, status)

	return Info{
		Status:         status,
		LatestVersion:  latest,
		CurrentVersion: c.current,
		ReleaseURL:     releaseURL,
	}, nil
}

func (c *Checker) store(info Info) {
	data := map[string]interface{}{
		"status":     string(info.Status),
		"checked_at": info.CheckedAt.Format(time.RFC3339Nano),
	}
	for key, value := range map[string]string{
		"latest_version":  info.LatestVersion,
		"current_version": info.CurrentVersion,
		"release_url":     info.ReleaseURL,
		"error":           info.Error,
	} {
		if value != "" {
			data[key] = value
		}
	}

	err := c.backend.SetSection(SectionID, data)
	if err == nil {
		err = c.backend.Save()
	}
	if err != nil {
		debugLog.Warnf("failed to persist update info: %v", err)
	}
}

func (c *Checker) clear() {
	err := c.backend.DeleteSection(SectionID)
	if err == nil {
		err = c.backend.Save()
	}
	if err != nil {
		debugLog.Warnf("failed to clear update info: %v", err)
	}
}
