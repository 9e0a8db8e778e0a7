// Package trace records and replays input delivered to a surface.
//
// A trace is a JSON Lines stream. Each line is one record with a "type"
// field holding a DOM event name (keydown, keyup, mousedown, mouseup,
// mousemove, wheel) or one of the host records:
//
//	pointerlock  {"type":"pointerlock","locked":true}
//	resize       {"type":"resize","left":0,"top":0,"width":640,"height":480}
//	poll         {"type":"poll"}
//
// Every record carries "t", the milliseconds since recording started.
// Zero-valued event fields are omitted.
//
// Snapshot renders a poll result as compact JSON for logs and golden
// files.
package trace

import "errors"

// Record types that are not DOM events.
const (
	TypePointerLock = "pointerlock"
	TypeResize      = "resize"
	TypePoll        = "poll"
)

// ErrBadRecord is returned for a line that is not a valid record.
var ErrBadRecord = errors.New("invalid trace record")

// record is the encoded form of one trace line.
type record struct {
	T    int64  `json:"t"`
	Type string `json:"type"`

	KeyCode   int     `json:"keyCode,omitempty"`
	ClientX   float64 `json:"clientX,omitempty"`
	ClientY   float64 `json:"clientY,omitempty"`
	MovementX float64 `json:"movementX,omitempty"`
	MovementY float64 `json:"movementY,omitempty"`
	Buttons   uint32  `json:"buttons,omitempty"`
	DeltaY    float64 `json:"deltaY,omitempty"`

	Locked *bool `json:"locked,omitempty"`

	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}
