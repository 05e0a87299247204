// Package position persists where the overlay control sits on screen.
package position

import (
	"fmt"
	"math"
)

// Side is the viewport edge the control is pinned to.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Valid reports whether s is one of the two edges.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// Position is the persisted placement of the control.
type Position struct {
	Side Side    `json:"side"`
	Top  float64 `json:"top"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s@%.0f", p.Side, p.Top)
}

// Geometry holds the sizes that bound vertical placement.
type Geometry struct {
	BubbleSize   float64
	MarginTop    float64
	MarginBottom float64

	// MinDefaultTop floors the centred default on short viewports.
	MinDefaultTop float64
}

// DefaultGeometry matches the browser overlay, in CSS pixels.
var DefaultGeometry = Geometry{
	BubbleSize:    56,
	MarginTop:     8,
	MarginBottom:  8,
	MinDefaultTop: 80,
}

// Clamp bounds top to [MarginTop, viewportHeight-BubbleSize-MarginBottom].
// On a viewport too short to fit the control, MarginTop wins.
func (g Geometry) Clamp(top, viewportHeight float64) float64 {
	lo := g.MarginTop
	hi := viewportHeight - g.BubbleSize - g.MarginBottom
	if hi < lo {
		return lo
	}
	if math.IsNaN(top) {
		return lo
	}
	return math.Min(hi, math.Max(lo, top))
}

// Default is the placement used when nothing valid is stored: right edge,
// vertically centred, no higher than MinDefaultTop.
func (g Geometry) Default(viewportHeight float64) Position {
	top := math.Max(g.MinDefaultTop, viewportHeight/2-g.BubbleSize/2)
	return Position{Side: Right, Top: g.Clamp(top, viewportHeight)}
}

// Clamped returns p with Top clamped for the viewport.
func (g Geometry) Clamped(p Position, viewportHeight float64) Position {
	p.Top = g.Clamp(p.Top, viewportHeight)
	return p
}
