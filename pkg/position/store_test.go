package position

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/quickopen/pkg/config"
)

// failingBackend wraps a real store and fails writes on demand.
type failingBackend struct {
	*config.FileStore
	failSave bool
}

func (f *failingBackend) Save() error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.FileStore.Save()
}

func newFileStore(t *testing.T) *config.FileStore {
	t.Helper()
	store, err := config.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return store
}

func TestGeometry_Clamp(t *testing.T) {
	g := DefaultGeometry
	const vh = 800.0
	lo, hi := g.MarginTop, vh-g.BubbleSize-g.MarginBottom

	inputs := []float64{-1e9, -1, 0, lo, 100, hi, hi + 1, 1e9, math.Inf(1), math.Inf(-1), math.NaN()}
	for _, in := range inputs {
		got := g.Clamp(in, vh)
		assert.GreaterOrEqual(t, got, lo, "input %v", in)
		assert.LessOrEqual(t, got, hi, "input %v", in)
	}

	assert.Equal(t, 100.0, g.Clamp(100, vh))
	assert.Equal(t, lo, g.Clamp(-50, vh))
	assert.Equal(t, hi, g.Clamp(5000, vh))
	assert.Equal(t, lo, g.Clamp(30, 40), "viewport shorter than the control pins to the top margin")
}

func TestGeometry_Default(t *testing.T) {
	g := DefaultGeometry

	p := g.Default(800)
	assert.Equal(t, Right, p.Side)
	assert.Equal(t, 372.0, p.Top)

	p = g.Default(200)
	assert.Equal(t, 80.0, p.Top, "floored at the minimum default top")

	p = g.Default(120)
	assert.Equal(t, 56.0, p.Top, "still clamped into the viewport")
}

func TestStore_LoadDefaults(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{name: "absent", data: nil},
		{name: "invalid side", data: map[string]interface{}{"side": "top", "top": 200.0}},
		{name: "side wrong type", data: map[string]interface{}{"side": 1, "top": 200.0}},
		{name: "non-numeric top", data: map[string]interface{}{"side": "left", "top": "high"}},
		{name: "missing top", data: map[string]interface{}{"side": "left"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFileStore(t)
			if tt.data != nil {
				require.NoError(t, backend.SetSection(SectionID, tt.data))
			}
			store := NewStore(backend, DefaultGeometry)

			_, ok := store.Lookup()
			assert.False(t, ok)
			assert.Equal(t, DefaultGeometry.Default(800), store.Load(800))
		})
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	backend := newFileStore(t)
	store := NewStore(backend, DefaultGeometry)

	applied := store.Save(Position{Side: Left, Top: 9000}, 800)
	assert.Equal(t, Position{Side: Left, Top: 736}, applied)

	reopened, err := config.NewFileStore(backend.Path())
	require.NoError(t, err)
	got := NewStore(reopened, DefaultGeometry).Load(800)
	assert.Equal(t, applied, got)

	// Stored values are reclamped against the current viewport.
	assert.Equal(t, Position{Side: Left, Top: 336}, NewStore(reopened, DefaultGeometry).Load(400))
}

func TestStore_NumericStringTop(t *testing.T) {
	backend := newFileStore(t)
	require.NoError(t, backend.SetSection(SectionID, map[string]interface{}{"side": "left", "top": "150"}))

	p, ok := NewStore(backend, DefaultGeometry).Lookup()
	require.True(t, ok)
	assert.Equal(t, Position{Side: Left, Top: 150}, p)
}

func TestStore_SaveFailureIsSwallowed(t *testing.T) {
	backend := &failingBackend{FileStore: newFileStore(t), failSave: true}
	store := NewStore(backend, DefaultGeometry)

	var applied Position
	assert.NotPanics(t, func() {
		applied = store.Save(Position{Side: Right, Top: 200}, 800)
	})
	assert.Equal(t, Position{Side: Right, Top: 200}, applied)
}

func TestStore_Reset(t *testing.T) {
	backend := newFileStore(t)
	store := NewStore(backend, DefaultGeometry)

	store.Save(Position{Side: Left, Top: 120}, 800)
	_, ok := store.Lookup()
	require.True(t, ok)

	store.Reset()
	_, ok = store.Lookup()
	assert.False(t, ok)
	assert.Equal(t, DefaultGeometry.Default(800), store.Load(800))

	reopened, err := config.NewFileStore(backend.Path())
	require.NoError(t, err)
	_, ok = NewStore(reopened, DefaultGeometry).Lookup()
	assert.False(t, ok)
}

func TestStore_SectionsAreIndependent(t *testing.T) {
	backend := newFileStore(t)
	browser := NewStore(backend, DefaultGeometry)
	cells := NewStoreAt(backend, Geometry{BubbleSize: 3, MarginTop: 1, MarginBottom: 1, MinDefaultTop: 2}, SimSectionID)

	browser.Save(Position{Side: Left, Top: 300}, 800)
	cells.Save(Position{Side: Right, Top: 5}, 22)

	got, ok := browser.Lookup()
	require.True(t, ok)
	assert.Equal(t, Position{Side: Left, Top: 300}, got)

	cells.Reset()
	_, ok = cells.Lookup()
	assert.False(t, ok)
	_, ok = browser.Lookup()
	assert.True(t, ok, "resetting one section leaves the other")
}

func TestSide_Valid(t *testing.T) {
	assert.True(t, Left.Valid())
	assert.True(t, Right.Valid())
	assert.False(t, Side("").Valid())
	assert.False(t, Side("Left").Valid())
	assert.Equal(t, "left@120", Position{Side: Left, Top: 120}.String())
}
