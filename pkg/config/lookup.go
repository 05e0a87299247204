package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

const (
	// SectionIDLookup is the identifier for the lookup settings section
	SectionIDLookup = "lookup"

	defaultBaseURL       = "https://vrc.a8c.com/"
	defaultUserType      = "wpcom"
	defaultWaitTimeout   = 3500 * time.Millisecond
	defaultFlashDuration = 700 * time.Millisecond
)

// defaultTicketPatterns are the pages the overlay mounts on.
var defaultTicketPatterns = []string{"https://*.zendesk.com/agent/tickets/*"}

// LookupSection configures how an email lookup is performed and where it
// leads.
type LookupSection struct {
	BaseURL        string        `json:"base_url"`
	UserType       string        `json:"user_type"`
	WaitTimeout    time.Duration `json:"wait_timeout"`
	FlashDuration  time.Duration `json:"flash_duration"`
	TicketPatterns []string      `json:"ticket_patterns"`
	mu             sync.RWMutex
}

// NewLookupSection creates the section with defaults.
func NewLookupSection() *LookupSection {
	s := &LookupSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *LookupSection) ID() string {
	return SectionIDLookup
}

// Title returns the section title.
func (s *LookupSection) Title() string {
	return "Lookup"
}

// Description returns the section description.
func (s *LookupSection) Description() string {
	return "Where lookups open, how long to wait for the ticket email and which pages get the overlay."
}

// Data returns the current configuration data.
func (s *LookupSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patterns := make([]string, len(s.TicketPatterns))
	copy(patterns, s.TicketPatterns)

	return map[string]interface{}{
		"base_url":        s.BaseURL,
		"user_type":       s.UserType,
		"wait_timeout":    s.WaitTimeout.String(),
		"flash_duration":  s.FlashDuration.String(),
		"ticket_patterns": patterns,
	}
}

// SetData updates the configuration from the provided data.
func (s *LookupSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "base_url":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for base_url: expected string, got %T", value)
			}
			s.BaseURL = v

		case "user_type":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for user_type: expected string, got %T", value)
			}
			s.UserType = v

		case "wait_timeout":
			d, err := parseDuration(key, value)
			if err != nil {
				return err
			}
			s.WaitTimeout = d

		case "flash_duration":
			d, err := parseDuration(key, value)
			if err != nil {
				return err
			}
			s.FlashDuration = d

		case "ticket_patterns":
			patterns, err := parseStrings(key, value)
			if err != nil {
				return err
			}
			s.TicketPatterns = patterns

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *LookupSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", s.BaseURL)
	}
	if s.UserType == "" {
		return fmt.Errorf("user_type must not be empty")
	}
	if s.WaitTimeout < 100*time.Millisecond || s.WaitTimeout > time.Minute {
		return fmt.Errorf("wait_timeout must be between 100ms and 1m, got %v", s.WaitTimeout)
	}
	if s.FlashDuration < 50*time.Millisecond || s.FlashDuration > 10*time.Second {
		return fmt.Errorf("flash_duration must be between 50ms and 10s, got %v", s.FlashDuration)
	}
	if len(s.TicketPatterns) == 0 {
		return fmt.Errorf("ticket_patterns must list at least one pattern")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *LookupSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.BaseURL = defaultBaseURL
	s.UserType = defaultUserType
	s.WaitTimeout = defaultWaitTimeout
	s.FlashDuration = defaultFlashDuration
	s.TicketPatterns = append([]string(nil), defaultTicketPatterns...)
}

// Target returns the base URL and user type.
func (s *LookupSection) Target() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL, s.UserType
}

// Timing returns the wait timeout and error flash duration.
func (s *LookupSection) Timing() (time.Duration, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WaitTimeout, s.FlashDuration
}

// Patterns returns a copy of the ticket URL patterns.
func (s *LookupSection) Patterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.TicketPatterns...)
}

// parseDuration accepts duration strings and JSON numbers of nanoseconds.
func parseDuration(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}

// parseStrings accepts []string and the []interface{} JSON decoding yields.
func parseStrings(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid item type in %s: expected string, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected list of strings, got %T", key, value)
	}
}
