package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// SectionIDUpdateChecks is the identifier for the release check section
	SectionIDUpdateChecks = "update_checks"

	// Every six hours stays well inside GitHub's unauthenticated rate limit.
	defaultUpdateInterval = 6 * time.Hour
)

// UpdateChecksSection configures the periodic release check.
type UpdateChecksSection struct {
	Enabled  bool          `json:"enabled"`
	Repo     string        `json:"repo"`
	Interval time.Duration `json:"interval"`
	mu       sync.RWMutex
}

// NewUpdateChecksSection creates the section with checks disabled.
func NewUpdateChecksSection() *UpdateChecksSection {
	return &UpdateChecksSection{Interval: defaultUpdateInterval}
}

// ID returns the section identifier.
func (s *UpdateChecksSection) ID() string {
	return SectionIDUpdateChecks
}

// Title returns the section title.
func (s *UpdateChecksSection) Title() string {
	return "Update Checks"
}

// Description returns the section description.
func (s *UpdateChecksSection) Description() string {
	return "Periodically compare the installed version against the latest GitHub release."
}

// Data returns the current configuration data.
func (s *UpdateChecksSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"enabled":  s.Enabled,
		"repo":     s.Repo,
		"interval": s.Interval.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *UpdateChecksSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "enabled":
			v, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for enabled: expected bool, got %T", value)
			}
			s.Enabled = v

		case "repo":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for repo: expected string, got %T", value)
			}
			s.Repo = strings.TrimSpace(v)

		case "interval":
			d, err := parseDuration(key, value)
			if err != nil {
				return err
			}
			s.Interval = d

		default:
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UpdateChecksSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Repo != "" {
		owner, name, ok := strings.Cut(s.Repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("repo must look like owner/name, got %q", s.Repo)
		}
	}
	if s.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1m, got %v", s.Interval)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *UpdateChecksSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Enabled = false
	s.Repo = ""
	s.Interval = defaultUpdateInterval
}

// Settings returns (enabled, repo, interval).
func (s *UpdateChecksSection) Settings() (bool, string, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Enabled, s.Repo, s.Interval
}

// Active reports whether checks should run: enabled with a repository set.
func (s *UpdateChecksSection) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Enabled && s.Repo != ""
}
