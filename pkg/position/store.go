package position

import (
	"math"
	"strconv"

	"github.com/entrhq/quickopen/pkg/logging"
)

// SectionID is the key the position is stored under.
const SectionID = "fab_position"

// SimSectionID holds the terminal simulator's position, which is in cells.
const SimSectionID = "sim_position"

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("position")
	if err != nil {
		debugLog.Warnf("Failed to initialize position logger, using stderr fallback: %v", err)
	}
}

// Backend is the subset of config.Store the position needs.
type Backend interface {
	GetSection(sectionID string) (map[string]interface{}, error)
	SetSection(sectionID string, data map[string]interface{}) error
	DeleteSection(sectionID string) error
	Save() error
}

// Store loads and saves the control position. Writes are best-effort: a
// failed write is logged and otherwise ignored, since the on-screen position
// is authoritative for the running session.
type Store struct {
	backend Backend
	geom    Geometry
	section string
}

// NewStore creates a Store over backend, keyed by SectionID.
func NewStore(backend Backend, geom Geometry) *Store {
	return NewStoreAt(backend, geom, SectionID)
}

// NewStoreAt creates a Store that keeps its record under section.
func NewStoreAt(backend Backend, geom Geometry, section string) *Store {
	return &Store{backend: backend, geom: geom, section: section}
}

// Geometry returns the bounds the store clamps with.
func (s *Store) Geometry() Geometry {
	return s.geom
}

// Lookup returns the stored position as-is. It reports false when nothing
// is stored or the record is malformed.
func (s *Store) Lookup() (Position, bool) {
	data, err := s.backend.GetSection(s.section)
	if err != nil {
		debugLog.Warnf("failed to read position: %v", err)
		return Position{}, false
	}
	if len(data) == 0 {
		return Position{}, false
	}

	sideRaw, _ := data["side"].(string)
	side := Side(sideRaw)
	if !side.Valid() {
		debugLog.Debugf("ignoring stored position with side %v", data["side"])
		return Position{}, false
	}

	top, ok := number(data["top"])
	if !ok {
		debugLog.Debugf("ignoring stored position with top %v", data["top"])
		return Position{}, false
	}
	return Position{Side: side, Top: top}, true
}

// Load returns the stored position clamped to the viewport, or the default
// when none is usable.
func (s *Store) Load(viewportHeight float64) Position {
	if p, ok := s.Lookup(); ok {
		return s.geom.Clamped(p, viewportHeight)
	}
	return s.geom.Default(viewportHeight)
}

// Save clamps p, persists it and returns what was applied.
func (s *Store) Save(p Position, viewportHeight float64) Position {
	p = s.geom.Clamped(p, viewportHeight)

	err := s.backend.SetSection(s.section, map[string]interface{}{
		"side": string(p.Side),
		"top":  p.Top,
	})
	if err == nil {
		err = s.backend.Save()
	}
	if err != nil {
		debugLog.Warnf("failed to persist position %s: %v", p, err)
	}
	return p
}

// Reset forgets the stored position so the next Load yields the default.
func (s *Store) Reset() {
	err := s.backend.DeleteSection(s.section)
	if err == nil {
		err = s.backend.Save()
	}
	if err != nil {
		debugLog.Warnf("failed to reset position: %v", err)
	}
}

// number accepts JSON numbers and numeric strings; NaN and infinities are
// rejected.
func number(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
