package trace

import (
	"github.com/tidwall/sjson"

	"github.com/dshills/webshim/internal/input/native"
)

// Snapshot renders s as compact JSON:
//
//	{"cursor":{"x":0.5,"y":-0.5},"buttons":1,"axes":[0.75,-0.75,0],"keys":[65]}
//
// keys lists only the codes reported by the poll.
func Snapshot(s native.State) string {
	out := `{}`
	out, _ = sjson.Set(out, "cursor.x", s.CursorX)
	out, _ = sjson.Set(out, "cursor.y", s.CursorY)
	out, _ = sjson.Set(out, "buttons", s.Buttons)
	out, _ = sjson.Set(out, "axes", s.Axes[:])

	keys := make([]int, 0, 4)
	for _, c := range s.PressedKeys() {
		keys = append(keys, int(c))
	}
	out, _ = sjson.Set(out, "keys", keys)
	return out
}
