package browser

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/quickopen/pkg/config"
	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
)

type neverFinder struct{}

func (neverFinder) WaitForEmail(context.Context, time.Duration) (string, bool) { return "", false }

func TestDecodeEvent(t *testing.T) {
	ev, err := decodeEvent([]interface{}{map[string]interface{}{
		"type": "down", "x": 12.5, "y": 40, "button": 0,
	}})
	require.NoError(t, err)
	assert.Equal(t, pageEvent{Type: "down", X: 12.5, Y: 40, Button: 0, Option: -1}, ev)

	ev, err = decodeEvent([]interface{}{map[string]interface{}{
		"type": "activate", "part": "option", "option": int64(1),
	}})
	require.NoError(t, err)
	assert.Equal(t, overlay.Hit{Part: overlay.PartOption, Option: 1}, ev.hit())

	ev, err = decodeEvent([]interface{}{map[string]interface{}{"type": "resize", "w": 1024, "h": 700}})
	require.NoError(t, err)
	assert.Equal(t, 1024.0, ev.W)
	assert.Equal(t, 700.0, ev.H)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := decodeEvent(nil)
	assert.Error(t, err)

	_, err = decodeEvent([]interface{}{"down"})
	assert.Error(t, err)

	_, err = decodeEvent([]interface{}{map[string]interface{}{"x": 1}})
	assert.Error(t, err)
}

func TestPageEvent_Hit(t *testing.T) {
	assert.Equal(t, overlay.Hit{Part: overlay.PartControl}, pageEvent{Part: "control"}.hit())
	assert.Equal(t, overlay.Hit{Part: overlay.PartOutside}, pageEvent{Part: ""}.hit())
}

func TestDispatchEvent(t *testing.T) {
	backend, err := config.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	store := position.NewStore(backend, overlay.DefaultGeometry.Position())
	store.Save(position.Position{Side: position.Left, Top: 100}, 800)

	w := overlay.NewWidget(overlay.Config{Store: store, Finder: neverFinder{}})
	w.Mount(1000, 800)
	t.Cleanup(w.Close)

	send := func(ev map[string]interface{}) {
		parsed, err := decodeEvent([]interface{}{ev})
		require.NoError(t, err)
		require.NoError(t, dispatchEvent(w, parsed))
	}

	send(map[string]interface{}{"type": "down", "x": 40, "y": 120, "button": 0})
	send(map[string]interface{}{"type": "up", "x": 40, "y": 120, "button": 0})
	assert.Equal(t, overlay.MenuOpen, w.State())

	send(map[string]interface{}{"type": "down", "x": 500, "y": 500, "button": 0})
	assert.Equal(t, overlay.Idle, w.State(), "outside press closes the menu")

	send(map[string]interface{}{"type": "down", "x": 40, "y": 120, "button": 0})
	send(map[string]interface{}{"type": "move", "x": 900, "y": 320})
	send(map[string]interface{}{"type": "up", "x": 900, "y": 320, "button": 0})
	stored, ok := store.Lookup()
	require.True(t, ok)
	assert.Equal(t, position.Position{Side: position.Right, Top: 300}, stored)

	send(map[string]interface{}{"type": "resize", "w": 1000, "h": 320})
	assert.Equal(t, 256.0, w.View().Layout.Control.Y)

	send(map[string]interface{}{"type": "resize", "w": 0, "h": 0})
	assert.Equal(t, 256.0, w.View().Layout.Control.Y, "empty viewports are ignored")

	send(map[string]interface{}{"type": "activate", "part": "control"})
	assert.Equal(t, overlay.MenuOpen, w.State())

	parsed, err := decodeEvent([]interface{}{map[string]interface{}{"type": "scroll"}})
	require.NoError(t, err)
	assert.Error(t, dispatchEvent(w, parsed))
}
