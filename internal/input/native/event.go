package native

import "github.com/dshills/webshim/internal/input/mouse"

// EventType identifies a host event.
type EventType uint8

const (
	// EventKeyDown is a key press.
	EventKeyDown EventType = iota
	// EventKeyUp is a key release.
	EventKeyUp
	// EventMouseDown is a mouse button press.
	EventMouseDown
	// EventMouseUp is a mouse button release.
	EventMouseUp
	// EventMouseMove is pointer motion.
	EventMouseMove
	// EventWheel is a wheel turn. It carries pointer coordinates too.
	EventWheel
)

// EventTypes lists every event type a device listens to.
var EventTypes = []EventType{
	EventKeyDown,
	EventKeyUp,
	EventMouseDown,
	EventMouseUp,
	EventMouseMove,
	EventWheel,
}

// String returns the DOM event name.
func (t EventType) String() string {
	switch t {
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventMouseDown:
		return "mousedown"
	case EventMouseUp:
		return "mouseup"
	case EventMouseMove:
		return "mousemove"
	case EventWheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// ParseEventType converts a DOM event name to an EventType.
func ParseEventType(name string) (EventType, bool) {
	for _, t := range EventTypes {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// IsKey reports whether t is a keyboard event.
func (t EventType) IsKey() bool {
	return t == EventKeyDown || t == EventKeyUp
}

// Event is a raw host event. Key events use KeyCode; pointer events use the
// coordinate, movement and button fields; wheel events also use DeltaY.
type Event struct {
	Type EventType

	// KeyCode is the DOM virtual key code.
	KeyCode int

	// ClientX and ClientY are the pointer position in client pixels.
	ClientX float64
	ClientY float64

	// MovementX and MovementY are the pointer motion since the previous
	// pointer event, reported even while the pointer is locked.
	MovementX float64
	MovementY float64

	// Buttons is the bitmask of held mouse buttons.
	Buttons mouse.Buttons

	// DeltaY is the vertical wheel delta.
	DeltaY float64

	defaultPrevented bool
}

// PreventDefault suppresses the host's default action for the event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Listener receives events from an element. Listeners are compared by
// identity when removed, so implementations should be pointers.
type Listener interface {
	HandleEvent(ev *Event)
}

// Element is a host UI element that can receive input.
type Element interface {
	// AddEventListener registers l for events of type t.
	AddEventListener(t EventType, l Listener)

	// RemoveEventListener unregisters l for events of type t.
	RemoveEventListener(t EventType, l Listener)

	// BoundingClientRect returns the element's box in client pixels.
	// Hosts without layout information return a zero rect.
	BoundingClientRect() mouse.Rect

	// OffsetSize returns the element's full width and height.
	OffsetSize() (width, height float64)

	// PointerLocked reports whether the host has pointer lock engaged.
	PointerLocked() bool
}

// Document resolves element selectors.
type Document interface {
	// QuerySelector returns the element matching selector, or nil.
	QuerySelector(selector string) Element
}
