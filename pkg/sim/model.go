// Package sim runs the overlay in a terminal over a saved ticket page. The
// same widget, locator and position store as the browser host are driven
// by mouse and keyboard events, with cells as the unit of length.
package sim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/quickopen/pkg/dispatch"
	"github.com/entrhq/quickopen/pkg/dom"
	"github.com/entrhq/quickopen/pkg/email"
	"github.com/entrhq/quickopen/pkg/logging"
	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("sim")
	if err != nil {
		debugLog.Warnf("Failed to initialize sim logger, using stderr fallback: %v", err)
	}
}

// CellGeometry lays the widget out in terminal cells.
var CellGeometry = overlay.Geometry{
	BubbleSize:    3,
	OptionSize:    3,
	EdgeMargin:    2,
	MarginTop:     1,
	MarginBottom:  1,
	MenuGap:       1,
	DragThreshold: 2,
	MinDefaultTop: 2,
}

// statusLines is how many rows below the page the status bar takes.
const statusLines = 2

// Config wires a simulator.
type Config struct {
	Page     *dom.Tree
	Store    *position.Store
	BaseURL  string
	UserType string

	// LateHTML is appended to the page body when the inject key is pressed,
	// standing in for a ticket field that renders after load.
	LateHTML string

	WaitTimeout   time.Duration
	FlashDuration time.Duration
}

type viewMsg overlay.ViewState

type openedMsg string

// model is the bubbletea model of the simulator.
type model struct {
	cfg    Config
	widget *overlay.Widget

	views  chan overlay.ViewState
	opened chan string

	view     overlay.ViewState
	mounted  bool
	width    int
	height   int
	lastOpen string
	injected bool

	keys keyMap
	help help.Model
}

func newModel(cfg Config) *model {
	m := &model{
		cfg:    cfg,
		views:  make(chan overlay.ViewState, 64),
		opened: make(chan string, 16),
		keys:   defaultKeyMap(),
		help:   help.New(),
	}

	opener := dispatch.OpenerFunc(func(_ context.Context, rawURL string) error {
		select {
		case m.opened <- rawURL:
		default:
			debugLog.Warnf("dropping opened url %s", rawURL)
		}
		return nil
	})

	m.widget = overlay.NewWidget(overlay.Config{
		Geometry:      CellGeometry,
		Store:         cfg.Store,
		Finder:        email.NewLocator(cfg.Page),
		Dispatcher:    dispatch.New(opener, cfg.BaseURL, cfg.UserType),
		WaitTimeout:   cfg.WaitTimeout,
		FlashDuration: cfg.FlashDuration,
		OnChange:      m.publish,
	})
	m.view = m.widget.View()
	return m
}

// publish hands a view state to the update loop. The newest state is what
// matters, so a full queue drops the older entry.
func (m *model) publish(vs overlay.ViewState) {
	for {
		select {
		case m.views <- vs:
			return
		default:
		}
		select {
		case <-m.views:
		default:
		}
	}
}

func waitForView(ch <-chan overlay.ViewState) tea.Cmd {
	return func() tea.Msg {
		vs, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(vs)
	}
}

func waitForOpen(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return openedMsg(u)
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return tea.Batch(waitForView(m.views), waitForOpen(m.opened))
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		vw, vh := float64(m.width), float64(m.pageHeight())
		if !m.mounted {
			m.mounted = true
			m.widget.Mount(vw, vh)
		} else {
			m.widget.Resize(vw, vh)
		}
		m.view = m.widget.View()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		m.view = m.widget.View()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case viewMsg:
		m.view = overlay.ViewState(msg)
		return m, waitForView(m.views)

	case openedMsg:
		m.lastOpen = string(msg)
		return m, waitForOpen(m.opened)
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if !m.mounted {
		return
	}
	x, y := float64(msg.X), float64(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			return
		}
		m.widget.PointerDown(x, y, pointerButton(msg.Button), m.widget.HitTest(x, y))
	case tea.MouseActionMotion:
		m.widget.PointerMove(x, y)
	case tea.MouseActionRelease:
		m.widget.PointerUp(x, y, m.widget.HitTest(x, y))
	}
}

func pointerButton(b tea.MouseButton) int {
	switch b {
	case tea.MouseButtonLeft:
		return overlay.PrimaryButton
	case tea.MouseButtonMiddle:
		return 1
	default:
		return 2
	}
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.widget.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Menu):
		m.widget.Activate(overlay.Hit{Part: overlay.PartControl})

	case key.Matches(msg, m.keys.Payment):
		m.widget.Lookup(0)

	case key.Matches(msg, m.keys.Plain):
		m.widget.Lookup(1)

	case key.Matches(msg, m.keys.Reset):
		m.widget.ResetPosition()

	case key.Matches(msg, m.keys.Inject):
		m.inject()
	}

	m.view = m.widget.View()
	return m, nil
}

func (m *model) inject() {
	if m.injected || strings.TrimSpace(m.cfg.LateHTML) == "" {
		return
	}
	if err := m.cfg.Page.AppendHTML("", m.cfg.LateHTML); err != nil {
		debugLog.Warnf("failed to inject late html: %v", err)
		return
	}
	m.injected = true
}

func (m *model) pageHeight() int {
	h := m.height - statusLines
	if h < 1 {
		return 1
	}
	return h
}

// View implements tea.Model.
func (m *model) View() string {
	if m.width == 0 {
		return "starting…"
	}

	var b strings.Builder
	b.WriteString(m.renderPage())
	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *model) status() string {
	vs := m.view
	parts := []string{
		fmt.Sprintf("[%s]", vs.State),
		fmt.Sprintf("%s@%.0f", vs.Side, vs.Layout.Control.Y),
		vs.Title,
	}
	if vs.Pending {
		parts = append(parts, "looking up…")
	}
	if m.lastOpen != "" {
		parts = append(parts, openedStyle.Render("opened "+m.lastOpen))
	}
	return strings.Join(parts, "  ")
}
