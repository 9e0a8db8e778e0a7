//go:build !js

package window

import (
	"testing"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

type captureSurface struct {
	next   memhost.Surface
	events []native.Event
	rects  []mouse.Rect
	locks  []bool
}

func (c *captureSurface) Dispatch(ev native.Event) bool {
	c.events = append(c.events, ev)
	return c.next.Dispatch(ev)
}

func (c *captureSurface) SetPointerLock(locked bool) {
	c.locks = append(c.locks, locked)
	c.next.SetPointerLock(locked)
}

func (c *captureSurface) SetRect(r mouse.Rect) {
	c.rects = append(c.rects, r)
	c.next.SetRect(r)
}

func (c *captureSurface) take() []native.Event {
	evs := c.events
	c.events = nil
	return evs
}

func newTestHost() (*Host, *captureSurface) {
	capture := &captureSurface{}
	h := New("#surface",
		WithLogger(logging.Discard),
		WithSurface(func(s memhost.Surface) memhost.Surface {
			capture.next = s
			return capture
		}))
	return h, capture
}

func TestApplyFirstFrameSizesElement(t *testing.T) {
	h, capture := newTestHost()

	h.Apply(Frame{Width: 640, Height: 480, X: 10, Y: 10})
	if len(capture.rects) != 1 {
		t.Fatalf("SetRect calls = %d, want 1", len(capture.rects))
	}
	if r := capture.rects[0]; r.Width != 640 || r.Height != 480 {
		t.Errorf("rect = %+v, want 640x480", r)
	}
	if evs := capture.take(); len(evs) != 0 {
		t.Errorf("first frame dispatched %d events, want 0", len(evs))
	}

	h.Apply(Frame{Width: 640, Height: 480, X: 10, Y: 10})
	if len(capture.rects) != 1 {
		t.Errorf("SetRect calls = %d after unchanged frame, want 1", len(capture.rects))
	}

	h.Apply(Frame{Width: 800, Height: 480, X: 10, Y: 10})
	if len(capture.rects) != 2 {
		t.Errorf("SetRect calls = %d after resize, want 2", len(capture.rects))
	}
}

func TestApplyKeys(t *testing.T) {
	h, capture := newTestHost()
	h.Apply(Frame{Width: 100, Height: 100})

	h.Apply(Frame{Width: 100, Height: 100, Keys: []key.Code{key.CodeW, key.CodeShift, key.CodeShift}})
	evs := capture.take()
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	for i, want := range []key.Code{key.CodeW, key.CodeShift} {
		if evs[i].Type != native.EventKeyDown || evs[i].KeyCode != int(want) {
			t.Errorf("event %d = %+v, want keydown %v", i, evs[i], want)
		}
	}

	h.Apply(Frame{Width: 100, Height: 100, Keys: []key.Code{key.CodeShift}})
	evs = capture.take()
	if len(evs) != 1 || evs[0].Type != native.EventKeyUp || evs[0].KeyCode != int(key.CodeW) {
		t.Errorf("events = %+v, want keyup W", evs)
	}

	h.Apply(Frame{Width: 100, Height: 100, Keys: []key.Code{key.CodeShift}})
	if evs = capture.take(); len(evs) != 0 {
		t.Errorf("held key produced %d events, want 0", len(evs))
	}
}

func TestApplyMouse(t *testing.T) {
	h, capture := newTestHost()
	h.Apply(Frame{Width: 100, Height: 100, X: 50, Y: 50})

	steps := []struct {
		name    string
		frame   Frame
		typ     native.EventType
		mx, my  float64
		buttons mouse.Buttons
	}{
		{"move", Frame{X: 55, Y: 48}, native.EventMouseMove, 5, -2, 0},
		{"press", Frame{X: 55, Y: 48, Buttons: mouse.ButtonLeft}, native.EventMouseDown, 0, 0, mouse.ButtonLeft},
		{"drag", Frame{X: 60, Y: 48, Buttons: mouse.ButtonLeft}, native.EventMouseMove, 5, 0, mouse.ButtonLeft},
		{"release", Frame{X: 60, Y: 48}, native.EventMouseUp, 0, 0, 0},
	}

	for _, s := range steps {
		s.frame.Width, s.frame.Height = 100, 100
		h.Apply(s.frame)
		evs := capture.take()
		if len(evs) != 1 {
			t.Fatalf("%s: got %d events, want 1", s.name, len(evs))
		}
		ev := evs[0]
		if ev.Type != s.typ {
			t.Errorf("%s: Type = %v, want %v", s.name, ev.Type, s.typ)
		}
		if ev.MovementX != s.mx || ev.MovementY != s.my {
			t.Errorf("%s: movement = %v,%v, want %v,%v", s.name, ev.MovementX, ev.MovementY, s.mx, s.my)
		}
		if ev.Buttons != s.buttons {
			t.Errorf("%s: Buttons = %v, want %v", s.name, ev.Buttons, s.buttons)
		}
	}

	h.Apply(Frame{Width: 100, Height: 100, X: 60, Y: 48})
	if evs := capture.take(); len(evs) != 0 {
		t.Errorf("idle frame dispatched %d events, want 0", len(evs))
	}
}

func TestApplyWheel(t *testing.T) {
	h, capture := newTestHost()
	h.Apply(Frame{Width: 100, Height: 100})

	h.Apply(Frame{Width: 100, Height: 100, WheelY: 1})
	evs := capture.take()
	if len(evs) != 1 || evs[0].Type != native.EventWheel {
		t.Fatalf("events = %+v, want one wheel", evs)
	}
	if evs[0].DeltaY >= 0 {
		t.Errorf("DeltaY = %v, want negative for upward scroll", evs[0].DeltaY)
	}
}

func TestApplyCapture(t *testing.T) {
	h, capture := newTestHost()
	h.Apply(Frame{Width: 100, Height: 100})

	h.Apply(Frame{Width: 100, Height: 100, Captured: true})
	h.Apply(Frame{Width: 100, Height: 100, Captured: true})
	h.Apply(Frame{Width: 100, Height: 100})

	want := []bool{true, false}
	if len(capture.locks) != len(want) {
		t.Fatalf("locks = %v, want %v", capture.locks, want)
	}
	for i := range want {
		if capture.locks[i] != want[i] {
			t.Errorf("locks[%d] = %v, want %v", i, capture.locks[i], want[i])
		}
	}
	if h.Element().PointerLocked() {
		t.Error("PointerLocked() = true, want false")
	}
}
