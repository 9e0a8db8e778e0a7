package mouse

import "strings"

// Buttons is the DOM MouseEvent.buttons bitmask of currently held buttons.
type Buttons uint32

// Button bits as reported by MouseEvent.buttons.
const (
	ButtonLeft    Buttons = 1 << 0
	ButtonRight   Buttons = 1 << 1
	ButtonMiddle  Buttons = 1 << 2
	ButtonBack    Buttons = 1 << 3
	ButtonForward Buttons = 1 << 4
)

// Has reports whether every bit of b is held.
func (m Buttons) Has(b Buttons) bool {
	return b != 0 && m&b == b
}

// String returns a "+"-joined list of held buttons, or "none".
func (m Buttons) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, bn := range buttonNames {
		if m.Has(bn.bit) {
			parts = append(parts, bn.name)
		}
	}
	if rest := m &^ (ButtonLeft | ButtonRight | ButtonMiddle | ButtonBack | ButtonForward); rest != 0 {
		parts = append(parts, "other")
	}
	return strings.Join(parts, "+")
}

var buttonNames = []struct {
	bit  Buttons
	name string
}{
	{ButtonLeft, "left"},
	{ButtonRight, "right"},
	{ButtonMiddle, "middle"},
	{ButtonBack, "back"},
	{ButtonForward, "forward"},
}

// FromIndex converts a MouseEvent.button index (0 left, 1 middle, 2 right,
// 3 back, 4 forward) to its Buttons bit. Unknown indexes return 0.
func FromIndex(i int) Buttons {
	switch i {
	case 0:
		return ButtonLeft
	case 1:
		return ButtonMiddle
	case 2:
		return ButtonRight
	case 3:
		return ButtonBack
	case 4:
		return ButtonForward
	default:
		return 0
	}
}
