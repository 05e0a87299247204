package browser

import (
	"encoding/json"
	"fmt"

	"github.com/entrhq/quickopen/pkg/overlay"
)

// pageEvent is one message from the injected script.
type pageEvent struct {
	Type   string
	X, Y   float64
	Button int
	W, H   float64
	Part   string
	Option int
}

// decodeEvent reads the single object argument a binding call carries.
func decodeEvent(args []interface{}) (pageEvent, error) {
	if len(args) == 0 {
		return pageEvent{}, fmt.Errorf("event binding called without arguments")
	}
	obj, ok := args[0].(map[string]interface{})
	if !ok {
		return pageEvent{}, fmt.Errorf("event must be an object, got %T", args[0])
	}

	ev := pageEvent{Option: -1}
	ev.Type, _ = obj["type"].(string)
	if ev.Type == "" {
		return pageEvent{}, fmt.Errorf("event has no type")
	}
	ev.Part, _ = obj["part"].(string)

	ev.X, _ = toFloat(obj["x"])
	ev.Y, _ = toFloat(obj["y"])
	ev.W, _ = toFloat(obj["w"])
	ev.H, _ = toFloat(obj["h"])
	if b, ok := toFloat(obj["button"]); ok {
		ev.Button = int(b)
	}
	if o, ok := toFloat(obj["option"]); ok {
		ev.Option = int(o)
	}
	return ev, nil
}

// hit converts the script's part description to a widget hit.
func (ev pageEvent) hit() overlay.Hit {
	switch ev.Part {
	case "control":
		return overlay.Hit{Part: overlay.PartControl}
	case "option":
		return overlay.Hit{Part: overlay.PartOption, Option: ev.Option}
	default:
		return overlay.Hit{Part: overlay.PartOutside}
	}
}

// dispatchEvent applies ev to w. Pointer events are hit-tested against the
// widget's own layout, which the rendered markup mirrors.
func dispatchEvent(w *overlay.Widget, ev pageEvent) error {
	switch ev.Type {
	case "down":
		w.PointerDown(ev.X, ev.Y, ev.Button, w.HitTest(ev.X, ev.Y))
	case "move":
		w.PointerMove(ev.X, ev.Y)
	case "up":
		w.PointerUp(ev.X, ev.Y, w.HitTest(ev.X, ev.Y))
	case "cancel":
		w.PointerCancel()
	case "resize":
		if ev.W > 0 && ev.H > 0 {
			w.Resize(ev.W, ev.H)
		}
	case "activate":
		w.Activate(ev.hit())
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
