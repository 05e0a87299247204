package overlay

import (
	"math"

	"github.com/entrhq/quickopen/pkg/position"
)

// Geometry holds every size the widget lays itself out with. Units are
// whatever the host uses: CSS pixels in a browser, cells in a terminal.
type Geometry struct {
	BubbleSize    float64
	OptionSize    float64
	EdgeMargin    float64
	MarginTop     float64
	MarginBottom  float64
	MenuGap       float64
	DragThreshold float64
	MinDefaultTop float64
}

// DefaultGeometry is the browser overlay's geometry in CSS pixels.
var DefaultGeometry = Geometry{
	BubbleSize:    56,
	OptionSize:    44,
	EdgeMargin:    16,
	MarginTop:     8,
	MarginBottom:  8,
	MenuGap:       10,
	DragThreshold: 6,
	MinDefaultTop: 80,
}

// Position returns the subset of g the position store clamps with.
func (g Geometry) Position() position.Geometry {
	return position.Geometry{
		BubbleSize:    g.BubbleSize,
		MarginTop:     g.MarginTop,
		MarginBottom:  g.MarginBottom,
		MinDefaultTop: g.MinDefaultTop,
	}
}

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// CenterX is the horizontal midpoint.
func (r Rect) CenterX() float64 {
	return r.X + r.W/2
}

// Direction is where the menu opens relative to the control.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MenuDirection picks the side with enough room, preferring up. When
// neither side fits, the larger one wins and a tie goes down.
func MenuDirection(spaceAbove, spaceBelow, needed float64) Direction {
	if spaceAbove >= needed {
		return Up
	}
	if spaceBelow >= needed {
		return Down
	}
	if spaceBelow >= spaceAbove {
		return Down
	}
	return Up
}

// IsDrag reports whether a displacement from the press point has reached
// the threshold. Reaching it exactly counts.
func IsDrag(dx, dy, threshold float64) bool {
	return math.Abs(dx)+math.Abs(dy) >= threshold
}

// SideFor returns the viewport half a horizontal centre point falls in.
func SideFor(centerX, viewportWidth float64) position.Side {
	if centerX < viewportWidth/2 {
		return position.Left
	}
	return position.Right
}

// menuNeeded is the vertical room a menu of n options takes, including the
// gaps between options and the gap to the control.
func (g Geometry) menuNeeded(n int) float64 {
	if n == 0 {
		return 0
	}
	return g.menuHeight(n) + g.MenuGap
}

// menuHeight is the stacked height of n options.
func (g Geometry) menuHeight(n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*g.OptionSize + float64(n-1)*g.MenuGap
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
