package sim

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/entrhq/quickopen/pkg/dom"
	"github.com/entrhq/quickopen/pkg/overlay"
	"github.com/entrhq/quickopen/pkg/position"
)

// cellKind selects the style a grid cell is drawn with.
type cellKind int

const (
	kindPage cellKind = iota
	kindControl
	kindControlError
	kindOption
	kindTooltip
)

type cell struct {
	r    rune
	kind cellKind
}

type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int, lines []string) *grid {
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for y := 0; y < h; y++ {
		row := make([]cell, w)
		var line []rune
		if y < len(lines) {
			line = []rune(lines[y])
		}
		for x := range row {
			row[x] = cell{r: ' ', kind: kindPage}
			if x < len(line) {
				row[x].r = line[x]
			}
		}
		g.cells[y] = row
	}
	return g
}

// box fills r with kind and writes label centred on its middle row.
func (g *grid) box(r overlay.Rect, kind cellKind, label string) {
	x0, y0 := int(math.Round(r.X)), int(math.Round(r.Y))
	w, h := int(math.Round(r.W)), int(math.Round(r.H))
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			g.set(x, y, ' ', kind)
		}
	}
	runes := []rune(label)
	lx := x0 + (w-len(runes))/2
	ly := y0 + h/2
	for i, c := range runes {
		g.set(lx+i, ly, c, kind)
	}
}

// text writes s on row y from x, clipped to the grid.
func (g *grid) text(x, y int, s string, kind cellKind) {
	for i, c := range []rune(s) {
		g.set(x+i, y, c, kind)
	}
}

func (g *grid) set(x, y int, r rune, kind cellKind) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = cell{r: r, kind: kind}
}

func styleFor(kind cellKind) lipgloss.Style {
	switch kind {
	case kindControl:
		return controlStyle
	case kindControlError:
		return controlErrorStyle
	case kindOption:
		return optionStyle
	case kindTooltip:
		return tooltipStyle
	default:
		return pageStyle
	}
}

// String renders the grid, styling each run of same-kind cells once.
func (g *grid) String() string {
	rows := make([]string, g.h)
	for y, row := range g.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].kind == row[start].kind {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:x] {
				run.WriteRune(c.r)
			}
			b.WriteString(styleFor(row[start].kind).Render(run.String()))
			start = x
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

// optionGlyph is the one-character icon of an option.
func optionGlyph(o overlay.Option) string {
	if o.IncludePayments {
		return "$"
	}
	return "@"
}

// drawWidget composites the control, and the menu when open, onto g.
func drawWidget(g *grid, vs overlay.ViewState) {
	kind := kindControl
	if vs.Flashing {
		kind = kindControlError
	}
	label := "V"
	if vs.Pending {
		label = "…"
	}
	g.box(vs.Layout.Control, kind, label)

	for _, o := range vs.Layout.Options {
		g.box(o.Rect, kindOption, optionGlyph(o.Option))

		tip := " " + o.Title + " "
		y := int(math.Round(o.Rect.Y + o.Rect.H/2))
		x := int(math.Round(o.Rect.X + o.Rect.W + 1))
		if vs.Side == position.Right {
			x = int(math.Round(o.Rect.X)) - 1 - len([]rune(tip))
		}
		g.text(x, y, tip, kindTooltip)
	}

	if vs.Flashing {
		tip := " " + vs.Title + " "
		c := vs.Layout.Control
		y := int(math.Round(c.Y + c.H/2))
		x := int(math.Round(c.X + c.W + 1))
		if vs.Side == position.Right {
			x = int(math.Round(c.X)) - 1 - len([]rune(tip))
		}
		g.text(x, y, tip, kindTooltip)
	}
}

// blockElements start a new line when they open or close.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"tr": true, "table": true, "section": true, "article": true,
	"header": true, "footer": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "dt": true, "dd": true, "dl": true,
	"br": true, "form": true, "nav": true, "aside": true, "main": true,
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true, "template": true,
}

// pageText flattens the page into paragraphs of collapsed text.
func pageText(root *html.Node) []string {
	var paras []string
	var cur strings.Builder

	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			paras = append(paras, s)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				cur.WriteString(c.Data)
			case html.ElementNode:
				if skippedElements[c.Data] {
					continue
				}
				block := blockElements[c.Data]
				if block {
					flush()
				} else {
					cur.WriteByte(' ')
				}
				walk(c)
				if block {
					flush()
				} else {
					cur.WriteByte(' ')
				}
			case html.DocumentNode:
				walk(c)
			}
		}
	}
	walk(root)
	flush()
	return paras
}

// pageLines wraps the page's text to width and returns at most height rows.
func pageLines(doc dom.Document, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	wrap := lipgloss.NewStyle().Width(width)

	var lines []string
	for _, p := range pageText(doc.Snapshot()) {
		for _, l := range strings.Split(wrap.Render(p), "\n") {
			lines = append(lines, strings.TrimRight(l, " "))
			if len(lines) == height {
				return lines
			}
		}
	}
	return lines
}

func (m *model) renderPage() string {
	h := m.pageHeight()
	g := newGrid(m.width, h, pageLines(m.cfg.Page, m.width, h))
	if m.mounted {
		drawWidget(g, m.view)
	}
	return g.String()
}
