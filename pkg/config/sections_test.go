package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := NewLookupSection()
		base, userType := s.Target()
		wait, flash := s.Timing()

		assert.Equal(t, "https://vrc.a8c.com/", base)
		assert.Equal(t, "wpcom", userType)
		assert.Equal(t, 3500*time.Millisecond, wait)
		assert.Equal(t, 700*time.Millisecond, flash)
		assert.Equal(t, []string{"https://*.zendesk.com/agent/tickets/*"}, s.Patterns())
		assert.NoError(t, s.Validate())
	})

	t.Run("set data from decoded JSON", func(t *testing.T) {
		s := NewLookupSection()
		err := s.SetData(map[string]interface{}{
			"base_url":        "https://lookup.example.com/search",
			"wait_timeout":    "5s",
			"flash_duration":  float64(time.Second),
			"ticket_patterns": []interface{}{"https://support.example.com/tickets/*"},
			"unknown":         true,
		})
		require.NoError(t, err)

		base, _ := s.Target()
		wait, flash := s.Timing()
		assert.Equal(t, "https://lookup.example.com/search", base)
		assert.Equal(t, 5*time.Second, wait)
		assert.Equal(t, time.Second, flash)
		assert.Equal(t, []string{"https://support.example.com/tickets/*"}, s.Patterns())
	})

	t.Run("type errors", func(t *testing.T) {
		tests := map[string]interface{}{
			"base_url":        12,
			"user_type":       false,
			"wait_timeout":    "soon",
			"flash_duration":  []string{"x"},
			"ticket_patterns": []interface{}{1},
		}
		for key, value := range tests {
			s := NewLookupSection()
			assert.Error(t, s.SetData(map[string]interface{}{key: value}), key)
		}
	})

	t.Run("validation", func(t *testing.T) {
		s := NewLookupSection()
		s.BaseURL = "not a url"
		assert.ErrorContains(t, s.Validate(), "base_url")

		s.Reset()
		s.WaitTimeout = time.Millisecond
		assert.ErrorContains(t, s.Validate(), "wait_timeout")

		s.Reset()
		s.TicketPatterns = nil
		assert.ErrorContains(t, s.Validate(), "ticket_patterns")
	})
}

func TestUpdateChecksSection(t *testing.T) {
	s := NewUpdateChecksSection()
	assert.False(t, s.Active())
	assert.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]interface{}{
		"enabled":  true,
		"repo":     "  acme/quickopen ",
		"interval": "1h",
	}))
	enabled, repo, interval := s.Settings()
	assert.True(t, enabled)
	assert.Equal(t, "acme/quickopen", repo)
	assert.Equal(t, time.Hour, interval)
	assert.True(t, s.Active())

	s.Repo = "not-a-repo"
	assert.ErrorContains(t, s.Validate(), "owner/name")

	s.Repo = "a/b/c"
	assert.Error(t, s.Validate())

	s.Reset()
	s.Interval = time.Second
	assert.ErrorContains(t, s.Validate(), "interval")

	assert.Error(t, s.SetData(map[string]interface{}{"enabled": "yes"}))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	settings, err := Open(path)
	require.NoError(t, err)
	require.Len(t, settings.GetSections(), 2)

	settings.UpdateChecks.Enabled = true
	settings.UpdateChecks.Repo = "acme/quickopen"
	settings.Lookup.BaseURL = "https://lookup.example.com/"
	require.NoError(t, settings.SaveAll())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.UpdateChecks.Active())
	base, _ := reopened.Lookup.Target()
	assert.Equal(t, "https://lookup.example.com/", base)
}
