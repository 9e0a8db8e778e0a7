//go:build !js

package window

import (
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
)

// Frame is the input state sampled once per tick.
type Frame struct {
	// Keys holds the DOM codes of held keys. Left and right variants of a
	// modifier share one code and may both appear.
	Keys []key.Code

	// X and Y are the cursor position in window pixels.
	X, Y int

	Buttons mouse.Buttons

	// WheelY is the vertical wheel offset for the tick, positive upward.
	WheelY float64

	Width, Height int

	// Captured reports whether the cursor is captured.
	Captured bool
}

// Apply dispatches the differences between f and the previous frame.
func (h *Host) Apply(f Frame) {
	prev, started := h.prev, h.started
	h.prev, h.started = f, true

	if f.Width > 0 && f.Height > 0 && (!started || f.Width != prev.Width || f.Height != prev.Height) {
		h.surface.SetRect(mouse.Rect{Width: float64(f.Width), Height: float64(f.Height)})
	}
	if f.Captured != prev.Captured {
		h.surface.SetPointerLock(f.Captured)
	}

	held := keySet(f.Keys)
	was := keySet(prev.Keys)
	for _, c := range uniqueKeys(prev.Keys) {
		if !held[c] {
			h.surface.Dispatch(native.Event{Type: native.EventKeyUp, KeyCode: int(c)})
		}
	}
	for _, c := range uniqueKeys(f.Keys) {
		if !was[c] {
			h.surface.Dispatch(native.Event{Type: native.EventKeyDown, KeyCode: int(c)})
		}
	}

	ev := native.Event{
		ClientX: float64(f.X),
		ClientY: float64(f.Y),
		Buttons: f.Buttons,
	}
	if started {
		ev.MovementX = float64(f.X - prev.X)
		ev.MovementY = float64(f.Y - prev.Y)
	}

	moved := ev.MovementX != 0 || ev.MovementY != 0
	switch {
	case f.Buttons&^prev.Buttons != 0:
		ev.Type = native.EventMouseDown
		h.surface.Dispatch(ev)
	case prev.Buttons&^f.Buttons != 0:
		ev.Type = native.EventMouseUp
		h.surface.Dispatch(ev)
	case moved:
		ev.Type = native.EventMouseMove
		h.surface.Dispatch(ev)
	}

	if f.WheelY != 0 {
		ev.Type = native.EventWheel
		ev.MovementX, ev.MovementY = 0, 0
		ev.DeltaY = -f.WheelY
		h.surface.Dispatch(ev)
	}
}

func keySet(keys []key.Code) map[key.Code]bool {
	set := make(map[key.Code]bool, len(keys))
	for _, c := range keys {
		set[c] = true
	}
	return set
}

func uniqueKeys(keys []key.Code) []key.Code {
	seen := make(map[key.Code]bool, len(keys))
	out := keys[:0:0]
	for _, c := range keys {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
