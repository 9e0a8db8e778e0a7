//go:build js && wasm

package dom

import (
	"sync"
	"syscall/js"

	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
)

// Document wraps the page document.
type Document struct {
	v js.Value
}

// Global returns the page document.
func Global() *Document {
	return &Document{v: js.Global().Get("document")}
}

// QuerySelector returns the first element matching selector, or nil.
func (d *Document) QuerySelector(selector string) native.Element {
	el := d.v.Call("querySelector", selector)
	if el.IsNull() || el.IsUndefined() {
		return nil
	}
	return &Element{v: el, doc: d.v, funcs: make(map[handlerKey]js.Func)}
}

type handlerKey struct {
	t native.EventType
	l native.Listener
}

// Element wraps a DOM element.
type Element struct {
	v   js.Value
	doc js.Value

	mu    sync.Mutex
	funcs map[handlerKey]js.Func
}

// AddEventListener registers l for events of type t. Registering the same
// pair twice has no effect.
func (e *Element) AddEventListener(t native.EventType, l native.Listener) {
	k := handlerKey{t, l}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.funcs[k]; ok {
		return
	}

	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		jev := args[0]
		ev := convertEvent(t, jev)
		l.HandleEvent(&ev)
		if ev.DefaultPrevented() {
			jev.Call("preventDefault")
		}
		return nil
	})
	e.funcs[k] = fn
	e.v.Call("addEventListener", t.String(), fn, false)
}

// RemoveEventListener unregisters l for events of type t.
func (e *Element) RemoveEventListener(t native.EventType, l native.Listener) {
	k := handlerKey{t, l}

	e.mu.Lock()
	fn, ok := e.funcs[k]
	delete(e.funcs, k)
	e.mu.Unlock()

	if !ok {
		return
	}
	e.v.Call("removeEventListener", t.String(), fn, false)
	fn.Release()
}

// BoundingClientRect returns getBoundingClientRect().
func (e *Element) BoundingClientRect() mouse.Rect {
	r := e.v.Call("getBoundingClientRect")
	return mouse.Rect{
		Left:   r.Get("left").Float(),
		Top:    r.Get("top").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

// OffsetSize returns offsetWidth and offsetHeight.
func (e *Element) OffsetSize() (float64, float64) {
	return e.v.Get("offsetWidth").Float(), e.v.Get("offsetHeight").Float()
}

// PointerLocked reports whether the element holds the pointer lock.
func (e *Element) PointerLocked() bool {
	locked := e.doc.Get("pointerLockElement")
	return !locked.IsNull() && !locked.IsUndefined() && locked.Equal(e.v)
}

// RequestPointerLock asks the browser to lock the pointer to the element.
func (e *Element) RequestPointerLock() {
	e.v.Call("requestPointerLock")
}

func convertEvent(t native.EventType, v js.Value) native.Event {
	ev := native.Event{Type: t}
	switch t {
	case native.EventKeyDown, native.EventKeyUp:
		ev.KeyCode = intProp(v, "keyCode")
	default:
		ev.ClientX = floatProp(v, "clientX")
		ev.ClientY = floatProp(v, "clientY")
		ev.MovementX = floatProp(v, "movementX")
		ev.MovementY = floatProp(v, "movementY")
		ev.Buttons = mouse.Buttons(intProp(v, "buttons"))
		if t == native.EventWheel {
			ev.DeltaY = floatProp(v, "deltaY")
		}
	}
	return ev
}

func floatProp(v js.Value, name string) float64 {
	p := v.Get(name)
	if p.Type() != js.TypeNumber {
		return 0
	}
	return p.Float()
}

func intProp(v js.Value, name string) int {
	p := v.Get(name)
	if p.Type() != js.TypeNumber {
		return 0
	}
	return p.Int()
}
