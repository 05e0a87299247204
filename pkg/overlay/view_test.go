package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/quickopen/pkg/position"
)

func TestRender_Closed(t *testing.T) {
	f := newFixture(t, &position.Position{Side: position.Left, Top: 120}, 1000, 800)

	m, err := Render(f.widget.View())
	require.NoError(t, err)

	assert.Contains(t, m.HostStyle, "left:16px;top:120px;width:56px;height:56px;")
	assert.Contains(t, m.Style, "width: 56px; height: 56px;")
	assert.Contains(t, m.Style, "gap: 10px")
	assert.Contains(t, m.Body, `data-side="left"`)
	assert.Contains(t, m.Body, `data-open="false"`)
	assert.Contains(t, m.Body, `title="Open VRC menu"`)
	assert.NotContains(t, m.Body, `class="menu"`)
	assert.NotContains(t, m.Body, "fab error")
}

func TestRender_OpenMenuOrder(t *testing.T) {
	f := newFixture(t, &position.Position{Side: position.Right, Top: 8}, 1000, 800)
	f.click(940, 20)

	m, err := Render(f.widget.View())
	require.NoError(t, err)

	assert.Contains(t, m.Body, `data-open="true"`)
	assert.Contains(t, m.Body, `data-direction="down"`)
	payments := strings.Index(m.Body, `title="Open with payments"`)
	standard := strings.Index(m.Body, `title="Open without payments"`)
	require.NotEqual(t, -1, payments)
	require.NotEqual(t, -1, standard)
	assert.Less(t, payments, standard, "payments option renders first")
}

func TestRender_Flashing(t *testing.T) {
	vs := ViewState{
		State:     Idle,
		Side:      position.Right,
		Direction: Up,
		Flashing:  true,
		Title:     TitleNotFound,
		Geometry:  DefaultGeometry,
	}

	m, err := Render(vs)
	require.NoError(t, err)
	assert.Contains(t, m.Body, `class="fab error"`)
	assert.Contains(t, m.Body, `aria-label="Email not found on this ticket"`)
}
