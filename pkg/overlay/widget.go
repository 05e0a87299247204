package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/quickopen/pkg/logging"
	"github.com/entrhq/quickopen/pkg/position"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("overlay")
	if err != nil {
		debugLog.Warnf("Failed to initialize overlay logger, using stderr fallback: %v", err)
	}
}

const (
	// PrimaryButton is the pointer button that presses and drags.
	PrimaryButton = 0

	// TitleNormal is the control's label while idle.
	TitleNormal = "Open VRC menu"

	// TitleNotFound replaces it while the error affordance shows.
	TitleNotFound = "Email not found on this ticket"

	// DefaultFlashDuration is how long the error affordance lasts.
	DefaultFlashDuration = 700 * time.Millisecond
)

// State is the widget's interaction state.
type State int

const (
	Idle State = iota
	MenuOpen
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MenuOpen:
		return "menu-open"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Option is one menu entry.
type Option struct {
	ID              string
	Title           string
	IncludePayments bool
}

// DefaultOptions lists the menu top to bottom.
var DefaultOptions = []Option{
	{ID: "payments", Title: "Open with payments", IncludePayments: true},
	{ID: "standard", Title: "Open without payments", IncludePayments: false},
}

// Part identifies what a pointer event landed on.
type Part int

const (
	PartOutside Part = iota
	PartControl
	PartOption
)

// Hit is the result of hit-testing a point. Option indexes Options when
// Part is PartOption.
type Hit struct {
	Part   Part
	Option int
}

// Finder locates the ticket email, waiting for it to render.
type Finder interface {
	WaitForEmail(ctx context.Context, timeout time.Duration) (string, bool)
}

// Dispatcher opens the lookup for a found address.
type Dispatcher interface {
	OpenLookup(ctx context.Context, email string, includePayments bool) error
}

// PendingAction is the option whose lookup is outstanding.
type PendingAction struct {
	IncludePayments bool
	attempt         uint64
}

// Config wires a Widget.
type Config struct {
	Geometry      Geometry
	Options       []Option
	Store         *position.Store
	Finder        Finder
	Dispatcher    Dispatcher
	WaitTimeout   time.Duration
	FlashDuration time.Duration

	// OnChange receives every new view state. It is called without the
	// widget's lock held and may be called from timer goroutines.
	OnChange func(ViewState)
}

// press tracks a pointer that is down and not yet released.
type press struct {
	active  bool
	hit     Hit
	startX  float64
	startY  float64
	offsetX float64
	offsetY float64
}

// Widget is the overlay control's state machine. All methods are safe for
// concurrent use; events are expected to arrive in order from one host.
type Widget struct {
	mu  sync.Mutex
	cfg Config

	viewportW float64
	viewportH float64

	committed position.Position
	left      float64
	top       float64

	state     State
	direction Direction
	press     press

	flashing bool
	title    string

	pending      *PendingAction
	attempt      uint64
	cancelLookup context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	timers map[*time.Timer]struct{}
	wg     sync.WaitGroup
}

// NewWidget creates an unmounted widget.
func NewWidget(cfg Config) *Widget {
	if cfg.Geometry == (Geometry{}) {
		cfg.Geometry = DefaultGeometry
	}
	if cfg.Options == nil {
		cfg.Options = DefaultOptions
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 3500 * time.Millisecond
	}
	if cfg.FlashDuration <= 0 {
		cfg.FlashDuration = DefaultFlashDuration
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Widget{
		cfg:       cfg,
		state:     Idle,
		direction: Up,
		title:     TitleNormal,
		ctx:       ctx,
		cancel:    cancel,
		timers:    make(map[*time.Timer]struct{}),
	}
}

// Mount places the control from the stored position (or the default) for
// the given viewport and persists the result.
func (w *Widget) Mount(viewportW, viewportH float64) {
	w.mu.Lock()
	w.viewportW, w.viewportH = viewportW, viewportH
	pos := w.cfg.Store.Load(viewportH)
	w.applyLocked(w.cfg.Store.Save(pos, viewportH))
	w.state = Idle
	debugLog.Infof("mounted at %s in %.0fx%.0f", w.committed, viewportW, viewportH)
	vs := w.viewLocked()
	w.mu.Unlock()

	w.emit(vs)
}

// Close cancels any outstanding lookup, stops pending timers and waits for
// background work to finish.
func (w *Widget) Close() {
	w.mu.Lock()
	w.cancel()
	for t := range w.timers {
		t.Stop()
		delete(w.timers, t)
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// PointerDown handles a button press. A press on the control only starts
// tracking; whether it is a click or a drag is decided by later events.
func (w *Widget) PointerDown(x, y float64, button int, hit Hit) {
	w.mu.Lock()

	changed := false
	switch hit.Part {
	case PartOutside:
		if w.state == MenuOpen {
			w.state = Idle
			changed = true
		}

	case PartControl:
		if button != PrimaryButton {
			break
		}
		w.press = press{
			active:  true,
			hit:     hit,
			startX:  x,
			startY:  y,
			offsetX: x - w.left,
			offsetY: y - w.top,
		}

	case PartOption:
		if button == PrimaryButton && w.state == MenuOpen && w.validOption(hit.Option) {
			w.press = press{active: true, hit: hit, startX: x, startY: y}
		}
	}

	vs := w.viewLocked()
	w.mu.Unlock()

	if changed {
		w.emit(vs)
	}
}

// PointerMove follows a pressed pointer. Once the displacement reaches the
// drag threshold the widget enters Dragging, which closes the menu.
func (w *Widget) PointerMove(x, y float64) {
	w.mu.Lock()
	changed := w.moveLocked(x, y)
	vs := w.viewLocked()
	w.mu.Unlock()

	if changed {
		w.emit(vs)
	}
}

// PointerUp resolves the press: a drag commits its position, a click on the
// control toggles the menu and a click on an option starts its lookup. hit
// is where the release happened; releases of a control press are captured
// by the control wherever they land.
func (w *Widget) PointerUp(x, y float64, hit Hit) {
	w.mu.Lock()
	if !w.press.active {
		w.mu.Unlock()
		return
	}

	p := w.press
	var lookup *Option

	switch p.hit.Part {
	case PartControl:
		w.moveLocked(x, y)
		w.press = press{}

		if w.state == Dragging {
			w.commitDragLocked()
		} else if w.state == MenuOpen {
			w.state = Idle
		} else {
			w.openMenuLocked()
		}

	case PartOption:
		w.press = press{}
		if hit.Part == PartOption && hit.Option == p.hit.Option && w.state == MenuOpen {
			opt := w.cfg.Options[p.hit.Option]
			lookup = &opt
			w.state = Idle
		}
	}

	vs := w.viewLocked()
	w.mu.Unlock()

	w.emit(vs)
	if lookup != nil {
		w.startLookup(*lookup)
	}
}

// PointerCancel ends the press as if released where the pointer last was.
// Cancelled option presses never start a lookup.
func (w *Widget) PointerCancel() {
	w.mu.Lock()
	if !w.press.active {
		w.mu.Unlock()
		return
	}
	if w.press.hit.Part != PartControl {
		w.press = press{}
		w.mu.Unlock()
		return
	}
	x := w.left + w.press.offsetX
	y := w.top + w.press.offsetY
	w.mu.Unlock()

	w.PointerUp(x, y, Hit{Part: PartControl})
}

// Resize keeps the stored side and reclamps the stored top against the new
// viewport, whatever the interaction state.
func (w *Widget) Resize(viewportW, viewportH float64) {
	w.mu.Lock()
	w.viewportW, w.viewportH = viewportW, viewportH

	if stored, ok := w.cfg.Store.Lookup(); ok {
		w.applyLocked(w.cfg.Store.Save(stored, viewportH))
	} else {
		w.applyLocked(w.cfg.Geometry.Position().Clamped(w.committed, viewportH))
	}

	vs := w.viewLocked()
	w.mu.Unlock()

	w.emit(vs)
}

// Activate handles a non-pointer activation such as Enter on a focused
// button: the control toggles the menu and an open menu's option is
// selected.
func (w *Widget) Activate(hit Hit) {
	switch hit.Part {
	case PartControl:
		w.mu.Lock()
		if w.press.active || w.state == Dragging {
			w.mu.Unlock()
			return
		}
		if w.state == MenuOpen {
			w.state = Idle
		} else {
			w.openMenuLocked()
		}
		vs := w.viewLocked()
		w.mu.Unlock()
		w.emit(vs)

	case PartOption:
		if w.State() == MenuOpen {
			w.Lookup(hit.Option)
		}
	}
}

// Lookup starts the lookup for option i directly, as a keyboard shortcut
// would. It closes the menu if open.
func (w *Widget) Lookup(i int) {
	w.mu.Lock()
	if !w.validOption(i) {
		w.mu.Unlock()
		return
	}
	opt := w.cfg.Options[i]
	if w.state == MenuOpen {
		w.state = Idle
	}
	vs := w.viewLocked()
	w.mu.Unlock()

	w.emit(vs)
	w.startLookup(opt)
}

// ResetPosition forgets the stored position and moves the control back to
// the default placement.
func (w *Widget) ResetPosition() {
	w.mu.Lock()
	w.cfg.Store.Reset()
	w.applyLocked(w.cfg.Geometry.Position().Default(w.viewportH))
	vs := w.viewLocked()
	w.mu.Unlock()

	w.emit(vs)
}

// State returns the current interaction state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Pending returns the outstanding lookup, if any.
func (w *Widget) Pending() (PendingAction, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return PendingAction{}, false
	}
	return *w.pending, true
}

// View returns the current view state.
func (w *Widget) View() ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// HitTest maps a point to the part of the widget under it.
func (w *Widget) HitTest(x, y float64) Hit {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layoutLocked().HitTest(x, y)
}

func (w *Widget) startLookup(opt Option) {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	if w.cancelLookup != nil {
		w.cancelLookup()
	}
	w.attempt++
	attempt := w.attempt
	ctx, cancel := context.WithCancel(w.ctx)
	w.cancelLookup = cancel
	w.pending = &PendingAction{IncludePayments: opt.IncludePayments, attempt: attempt}
	timeout := w.cfg.WaitTimeout
	w.wg.Add(1)
	w.mu.Unlock()

	debugLog.Infof("lookup #%d started (%s)", attempt, opt.ID)

	go func() {
		defer w.wg.Done()
		defer cancel()

		addr, ok := w.cfg.Finder.WaitForEmail(ctx, timeout)

		w.mu.Lock()
		if w.attempt != attempt {
			w.mu.Unlock()
			debugLog.Debugf("lookup #%d superseded", attempt)
			return
		}
		w.pending = nil
		w.cancelLookup = nil
		w.mu.Unlock()

		if ctx.Err() != nil && !ok {
			return
		}

		if !ok {
			debugLog.Infof("lookup #%d: email not found", attempt)
			w.flash()
			return
		}

		debugLog.Infof("lookup #%d: found %s", attempt, addr)
		if w.cfg.Dispatcher == nil {
			return
		}
		if err := w.cfg.Dispatcher.OpenLookup(ctx, addr, opt.IncludePayments); err != nil {
			debugLog.Errorf("lookup #%d: dispatch failed: %v", attempt, err)
		}
	}()
}

// flash shows the error affordance and schedules its own revert. Flashes
// are independent: an earlier revert may end a later flash early, which
// leaves the same neutral appearance.
func (w *Widget) flash() {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	w.flashing = true
	w.title = TitleNotFound

	var t *time.Timer
	t = time.AfterFunc(w.cfg.FlashDuration, func() {
		w.mu.Lock()
		delete(w.timers, t)
		if w.ctx.Err() != nil {
			w.mu.Unlock()
			return
		}
		w.flashing = false
		w.title = TitleNormal
		vs := w.viewLocked()
		w.mu.Unlock()

		w.emit(vs)
	})
	w.timers[t] = struct{}{}

	vs := w.viewLocked()
	w.mu.Unlock()

	w.emit(vs)
}

func (w *Widget) moveLocked(x, y float64) bool {
	if !w.press.active || w.press.hit.Part != PartControl {
		return false
	}

	changed := false
	if w.state != Dragging && IsDrag(x-w.press.startX, y-w.press.startY, w.cfg.Geometry.DragThreshold) {
		w.state = Dragging
		changed = true
	}
	if w.state != Dragging {
		return changed
	}

	g := w.cfg.Geometry
	w.left = clamp(x-w.press.offsetX, 0, w.viewportW-g.BubbleSize)
	w.top = clamp(y-w.press.offsetY, g.MarginTop, w.viewportH-g.BubbleSize-g.MarginBottom)
	return true
}

func (w *Widget) commitDragLocked() {
	center := w.left + w.cfg.Geometry.BubbleSize/2
	pos := position.Position{
		Side: SideFor(center, w.viewportW),
		Top:  w.top,
	}
	w.applyLocked(w.cfg.Store.Save(pos, w.viewportH))
	w.state = Idle
	debugLog.Infof("drag committed at %s", w.committed)
}

func (w *Widget) openMenuLocked() {
	g := w.cfg.Geometry
	spaceAbove := w.top
	spaceBelow := w.viewportH - (w.top + g.BubbleSize)
	w.direction = MenuDirection(spaceAbove, spaceBelow, g.menuNeeded(len(w.cfg.Options)))
	w.state = MenuOpen
}

func (w *Widget) applyLocked(pos position.Position) {
	g := w.cfg.Geometry
	w.committed = pos
	w.top = pos.Top
	if pos.Side == position.Left {
		w.left = g.EdgeMargin
	} else {
		w.left = w.viewportW - g.EdgeMargin - g.BubbleSize
	}
}

func (w *Widget) validOption(i int) bool {
	return i >= 0 && i < len(w.cfg.Options)
}

func (w *Widget) emit(vs ViewState) {
	if w.cfg.OnChange != nil {
		w.cfg.OnChange(vs)
	}
}
