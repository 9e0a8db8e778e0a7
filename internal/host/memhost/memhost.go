// Package memhost provides an in-memory document for the input aggregator.
//
// Elements are registered by selector and hold a listener table per event
// type. Dispatch delivers an event synchronously to every listener in
// registration order, the way a browser delivers DOM events. Layout
// (bounding rect and offset size) and pointer lock are plain settable
// fields, so memhost serves as the base for the terminal, window, remote
// and script hosts as well as the test double for the aggregator.
//
// All types are safe for concurrent use. Listeners are invoked without any
// memhost lock held, so a listener may add or remove listeners.
package memhost

import (
	"sync"

	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
)

// Document is an in-memory native.Document.
type Document struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		elements: make(map[string]*Element),
	}
}

// Add registers el under selector, replacing any previous element.
func (d *Document) Add(selector string, el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[selector] = el
}

// Remove unregisters the element for selector.
func (d *Document) Remove(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, selector)
}

// Element returns the element registered under selector, or nil.
func (d *Document) Element(selector string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.elements[selector]
}

// QuerySelector implements native.Document.
func (d *Document) QuerySelector(selector string) native.Element {
	// A typed nil must not escape as a non-nil interface.
	if el := d.Element(selector); el != nil {
		return el
	}
	return nil
}

// Element is an in-memory native.Element.
type Element struct {
	mu        sync.RWMutex
	listeners map[native.EventType][]native.Listener
	rect      mouse.Rect
	width     float64
	height    float64
	locked    bool
}

// NewElement creates an element whose bounding rect is at the origin and
// whose offset size matches the rect.
func NewElement(width, height float64) *Element {
	return &Element{
		listeners: make(map[native.EventType][]native.Listener),
		rect:      mouse.Rect{Width: width, Height: height},
		width:     width,
		height:    height,
	}
}

// AddEventListener implements native.Element. Adding the same listener
// twice for one type is a no-op.
func (e *Element) AddEventListener(t native.EventType, l native.Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.listeners[t] {
		if existing == l {
			return
		}
	}
	e.listeners[t] = append(e.listeners[t], l)
}

// RemoveEventListener implements native.Element.
func (e *Element) RemoveEventListener(t native.EventType, l native.Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.listeners[t]
	for i, existing := range ls {
		if existing == l {
			// Copy so an in-flight Dispatch keeps its snapshot.
			next := make([]native.Listener, 0, len(ls)-1)
			next = append(next, ls[:i]...)
			next = append(next, ls[i+1:]...)
			if len(next) == 0 {
				delete(e.listeners, t)
			} else {
				e.listeners[t] = next
			}
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for t.
func (e *Element) ListenerCount(t native.EventType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[t])
}

// TotalListeners returns the number of listeners across all event types.
func (e *Element) TotalListeners() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, ls := range e.listeners {
		n += len(ls)
	}
	return n
}

// Dispatch delivers ev to the listeners for its type and reports whether
// any listener prevented the default action.
func (e *Element) Dispatch(ev native.Event) bool {
	e.mu.RLock()
	ls := e.listeners[ev.Type]
	e.mu.RUnlock()

	for _, l := range ls {
		l.HandleEvent(&ev)
	}
	return ev.DefaultPrevented()
}

// BoundingClientRect implements native.Element.
func (e *Element) BoundingClientRect() mouse.Rect {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rect
}

// SetRect sets the bounding rect and the offset size together.
func (e *Element) SetRect(r mouse.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rect = r
	e.width = r.Width
	e.height = r.Height
}

// OffsetSize implements native.Element.
func (e *Element) OffsetSize() (float64, float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.width, e.height
}

// SetOffsetSize sets the offset size without moving the bounding rect.
// Borders and padding make the two differ on real hosts.
func (e *Element) SetOffsetSize(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width = width
	e.height = height
}

// PointerLocked implements native.Element.
func (e *Element) PointerLocked() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.locked
}

// SetPointerLock engages or releases pointer lock.
func (e *Element) SetPointerLock(locked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.locked = locked
}

// NewSurface creates a document with a single element of the given size
// registered under selector.
func NewSurface(selector string, width, height float64) (*Document, *Element) {
	doc := NewDocument()
	el := NewElement(width, height)
	doc.Add(selector, el)
	return doc, el
}

// Surface is the write side of an element: the calls a host makes to
// deliver input. *Element implements it, and wrappers such as an input
// recorder implement it to observe what a host delivers.
type Surface interface {
	Dispatch(ev native.Event) bool
	SetPointerLock(locked bool)
	SetRect(r mouse.Rect)
}

// Compile-time interface checks.
var (
	_ native.Document = (*Document)(nil)
	_ native.Element  = (*Element)(nil)
	_ Surface         = (*Element)(nil)
)
