package overlay

import (
	"bytes"
	"fmt"
	"html/template"
)

// RootID is the id of the host element the overlay mounts into. At most one
// exists per page.
const RootID = "vrc-fab-root"

// Markup is a rendered frame: Style and Body go into the overlay's shadow
// root, HostStyle onto the host element itself.
type Markup struct {
	HostStyle string
	Style     string
	Body      string
}

var styleTmpl = template.Must(template.New("style").Parse(`
:host { all: initial; }
* { box-sizing: border-box; font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; }
.wrapper { position: relative; width: {{.BubbleSize}}px; height: {{.BubbleSize}}px; }
button { -webkit-tap-highlight-color: transparent; }
.fab {
  width: {{.BubbleSize}}px; height: {{.BubbleSize}}px; border-radius: 9999px; border: none;
  cursor: pointer; background: #008417; color: #ffffff;
  box-shadow: 0 10px 25px rgba(0,0,0,0.24);
  display: inline-flex; align-items: center; justify-content: center;
  user-select: none; touch-action: none; outline: none;
  transition: transform 140ms ease, box-shadow 140ms ease;
}
.fab:hover { transform: translateY(-1px); box-shadow: 0 14px 30px rgba(0,0,0,0.28); }
.fab.error { animation: shake 420ms ease; box-shadow: 0 0 0 4px rgba(239, 68, 68, 0.35), 0 10px 25px rgba(0,0,0,0.24); }
.fab[data-pending="true"] { cursor: progress; }
@keyframes shake {
  0%, 100% { transform: translateX(0); }
  25% { transform: translateX(-3px); }
  50% { transform: translateX(3px); }
  75% { transform: translateX(-2px); }
}
.menu { position: absolute; display: flex; flex-direction: column; gap: {{.MenuGap}}px; filter: drop-shadow(0 10px 18px rgba(0,0,0,0.18)); }
.wrapper[data-direction="up"] .menu { bottom: calc(100% + {{.MenuGap}}px); right: 0; }
.wrapper[data-direction="down"] .menu { top: calc(100% + {{.MenuGap}}px); right: 0; }
.wrapper[data-side="left"] .menu { left: 0; right: auto; }
.option {
  width: {{.OptionSize}}px; height: {{.OptionSize}}px; border-radius: 9999px;
  border: 1px solid rgba(17, 24, 39, 0.10); background: #ffffff; color: #111827;
  cursor: pointer; display: inline-flex; align-items: center; justify-content: center;
  box-shadow: 0 10px 18px rgba(0,0,0,0.12);
}
.option:hover { transform: translateY(-1px); }
.icon { width: 22px; height: 22px; display: block; }
`))

var bodyTmpl = template.Must(template.New("body").Parse(
	`<div class="wrapper" data-side="{{.Side}}" data-open="{{.MenuOpen}}" data-direction="{{.Direction}}" data-state="{{.State}}">` +
		`<button class="fab{{if .Flashing}} error{{end}}" type="button" data-part="control" data-pending="{{.Pending}}" title="{{.Title}}" aria-label="{{.Title}}">` +
		`<svg class="icon" viewBox="0 0 24 24" fill="none" aria-hidden="true">` +
		`<path d="M4 7.5C4 6.12 5.12 5 6.5 5h11C18.88 5 20 6.12 20 7.5v9c0 1.38-1.12 2.5-2.5 2.5h-11C5.12 19 4 17.88 4 16.5v-9Z" stroke="currentColor" stroke-width="1.8"/>` +
		`<path d="M7 9h10M7 12h7M7 15h9" stroke="currentColor" stroke-width="1.8" stroke-linecap="round"/>` +
		`</svg></button>` +
		`{{if .MenuOpen}}<div class="menu" role="menu">` +
		`{{range .Layout.Options}}<button class="option" type="button" role="menuitem" data-part="option" data-option="{{.Index}}" data-id="{{.ID}}" title="{{.Title}}" aria-label="{{.Title}}">` +
		`<svg class="icon" viewBox="0 0 24 24" fill="none" aria-hidden="true">{{if .IncludePayments}}` +
		`<path d="M3.5 8.5c0-1.66 1.34-3 3-3h11c1.66 0 3 1.34 3 3v7c0 1.66-1.34 3-3 3h-11c-1.66 0-3-1.34-3-3v-7Z" stroke="currentColor" stroke-width="1.8"/>` +
		`<path d="M3.5 10.5h17M7 15h4" stroke="currentColor" stroke-width="1.8" stroke-linecap="round"/>` +
		`{{else}}` +
		`<path d="M12 12c2.21 0 4-1.79 4-4S14.21 4 12 4 8 5.79 8 8s1.79 4 4 4Z" stroke="currentColor" stroke-width="1.8"/>` +
		`<path d="M4.5 20c1.5-4 13.5-4 15 0" stroke="currentColor" stroke-width="1.8" stroke-linecap="round"/>` +
		`{{end}}</svg></button>{{end}}</div>{{end}}</div>`))

// Render turns a view state into markup for an isolated shadow root.
func Render(vs ViewState) (Markup, error) {
	var style, body bytes.Buffer
	if err := styleTmpl.Execute(&style, vs.Geometry); err != nil {
		return Markup{}, fmt.Errorf("render style: %w", err)
	}
	if err := bodyTmpl.Execute(&body, vs); err != nil {
		return Markup{}, fmt.Errorf("render body: %w", err)
	}

	c := vs.Layout.Control
	return Markup{
		HostStyle: fmt.Sprintf(
			"position:fixed;z-index:2147483647;left:%.0fpx;top:%.0fpx;width:%.0fpx;height:%.0fpx;",
			c.X, c.Y, c.W, c.H),
		Style: style.String(),
		Body:  body.String(),
	}, nil
}
