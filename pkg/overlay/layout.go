package overlay

import "github.com/entrhq/quickopen/pkg/position"

// OptionView is an option as laid out on screen.
type OptionView struct {
	Option
	Index int
	Rect  Rect
}

// Layout is where each part of the widget currently sits. Options is empty
// while the menu is closed.
type Layout struct {
	Control Rect
	Options []OptionView
}

// HitTest maps a point to the part of the layout under it. Options are
// tested first since they never overlap the control.
func (l Layout) HitTest(x, y float64) Hit {
	for _, o := range l.Options {
		if o.Rect.Contains(x, y) {
			return Hit{Part: PartOption, Option: o.Index}
		}
	}
	if l.Control.Contains(x, y) {
		return Hit{Part: PartControl}
	}
	return Hit{Part: PartOutside}
}

// ViewState is everything a host needs to draw the widget.
type ViewState struct {
	State     State
	Side      position.Side
	Direction Direction
	MenuOpen  bool
	Flashing  bool
	Title     string
	Pending   bool
	Layout    Layout
	Geometry  Geometry
}

func (w *Widget) viewLocked() ViewState {
	return ViewState{
		State:     w.state,
		Side:      w.committed.Side,
		Direction: w.direction,
		MenuOpen:  w.state == MenuOpen,
		Flashing:  w.flashing,
		Title:     w.title,
		Pending:   w.pending != nil,
		Layout:    w.layoutLocked(),
		Geometry:  w.cfg.Geometry,
	}
}

func (w *Widget) layoutLocked() Layout {
	g := w.cfg.Geometry
	l := Layout{Control: Rect{X: w.left, Y: w.top, W: g.BubbleSize, H: g.BubbleSize}}
	if w.state != MenuOpen {
		return l
	}
	return w.layoutMenu(l)
}

// layoutMenu stacks the options beside the control on its pinned edge, in
// list order from top to bottom whichever way the menu opens.
func (w *Widget) layoutMenu(l Layout) Layout {
	g := w.cfg.Geometry
	n := len(w.cfg.Options)

	x := l.Control.X
	if w.committed.Side != position.Left {
		x = l.Control.X + g.BubbleSize - g.OptionSize
	}

	y := l.Control.Y + g.BubbleSize + g.MenuGap
	if w.direction == Up {
		y = l.Control.Y - g.MenuGap - g.menuHeight(n)
	}

	l.Options = make([]OptionView, 0, n)
	for i, opt := range w.cfg.Options {
		l.Options = append(l.Options, OptionView{
			Option: opt,
			Index:  i,
			Rect:   Rect{X: x, Y: y, W: g.OptionSize, H: g.OptionSize},
		})
		y += g.OptionSize + g.MenuGap
	}
	return l
}
