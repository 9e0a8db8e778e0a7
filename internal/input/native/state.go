package native

import "github.com/dshills/webshim/internal/input/key"

// Axis indexes into State.Axes.
const (
	AxisX = iota
	AxisY
	AxisZ
	NumAxes
)

// KeyState is the per-key latch. A key is reported by a poll when it is
// held and not yet reported.
type KeyState struct {
	Held     bool
	Reported bool
}

// State is one poll's snapshot of the device.
type State struct {
	// CursorX and CursorY are the pointer position normalized to [-1, 1].
	CursorX float32
	CursorY float32

	// Buttons is the bitmask of held mouse buttons.
	Buttons uint32

	// Axes holds the mouse X and Y deltas and the wheel sign.
	Axes [NumAxes]float32

	// Keys is 1 for each key reported by this poll and 0 otherwise.
	Keys [key.NumCodes]uint8
}

// PressedKeys returns the codes reported by the poll, in ascending order.
func (s State) PressedKeys() []key.Code {
	var codes []key.Code
	for i, v := range s.Keys {
		if v != 0 {
			codes = append(codes, key.Code(i))
		}
	}
	return codes
}
