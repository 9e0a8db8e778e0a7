package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

type captureSurface struct {
	next   memhost.Surface
	events []native.Event
	locks  []bool
	rects  []mouse.Rect
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

func newTestHost(t *testing.T, opts ...Option) (*Host, *captureSurface) {
	t.Helper()
	capture := &captureSurface{}
	opts = append([]Option{
		WithLogger(logging.Discard),
		WithSize(200, 100),
		WithSurface(func(s memhost.Surface) memhost.Surface {
			capture.next = s
			return capture
		}),
	}, opts...)
	h := New("#surface", opts...)
	t.Cleanup(h.Close)
	return h, capture
}

func TestKeys(t *testing.T) {
	h, capture := newTestHost(t)

	err := h.RunString(context.Background(), "keys", `
		webshim.keydown("A")
		webshim.keyup(65)
		webshim.press("space")
	`)
	if err != nil {
		t.Fatalf("RunString() error = %v", err)
	}

	want := []struct {
		typ  native.EventType
		code key.Code
	}{
		{native.EventKeyDown, key.CodeA},
		{native.EventKeyUp, key.CodeA},
		{native.EventKeyDown, key.CodeSpace},
		{native.EventKeyUp, key.CodeSpace},
	}
	if len(capture.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(capture.events), len(want))
	}
	for i, w := range want {
		ev := capture.events[i]
		if ev.Type != w.typ || ev.KeyCode != int(w.code) {
			t.Errorf("event %d = %v %d, want %v %d", i, ev.Type, ev.KeyCode, w.typ, w.code)
		}
	}
}

func TestUnknownKeyName(t *testing.T) {
	h, _ := newTestHost(t)

	err := h.RunString(context.Background(), "bad", `webshim.keydown("NoSuchKey")`)
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("RunString() error = %v, want unknown key", err)
	}
}

func TestPointer(t *testing.T) {
	h, capture := newTestHost(t)

	err := h.RunString(context.Background(), "pointer", `
		webshim.move(10, 20)
		webshim.down(0)
		webshim.moveby(5, -5)
		webshim.down(2)
		webshim.up(0)
		webshim.wheel(-3)
	`)
	if err != nil {
		t.Fatalf("RunString() error = %v", err)
	}

	want := []struct {
		typ     native.EventType
		x, y    float64
		mx, my  float64
		buttons mouse.Buttons
	}{
		{native.EventMouseMove, 10, 20, 10, 20, 0},
		{native.EventMouseDown, 10, 20, 0, 0, mouse.ButtonLeft},
		{native.EventMouseMove, 15, 15, 5, -5, mouse.ButtonLeft},
		{native.EventMouseDown, 15, 15, 0, 0, mouse.ButtonLeft | mouse.ButtonRight},
		{native.EventMouseUp, 15, 15, 0, 0, mouse.ButtonRight},
		{native.EventWheel, 15, 15, 0, 0, mouse.ButtonRight},
	}
	if len(capture.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(capture.events), len(want))
	}
	for i, w := range want {
		ev := capture.events[i]
		if ev.Type != w.typ {
			t.Errorf("event %d Type = %v, want %v", i, ev.Type, w.typ)
		}
		if ev.ClientX != w.x || ev.ClientY != w.y {
			t.Errorf("event %d client = %v,%v, want %v,%v", i, ev.ClientX, ev.ClientY, w.x, w.y)
		}
		if ev.MovementX != w.mx || ev.MovementY != w.my {
			t.Errorf("event %d movement = %v,%v, want %v,%v", i, ev.MovementX, ev.MovementY, w.mx, w.my)
		}
		if ev.Buttons != w.buttons {
			t.Errorf("event %d Buttons = %v, want %v", i, ev.Buttons, w.buttons)
		}
	}
	if got := capture.events[5].DeltaY; got != -3 {
		t.Errorf("wheel DeltaY = %v, want -3", got)
	}
}

func TestLockAndResize(t *testing.T) {
	h, capture := newTestHost(t)

	err := h.RunString(context.Background(), "lock", `
		webshim.lock()
		webshim.lock(false)
		webshim.resize(640, 480)
	`)
	if err != nil {
		t.Fatalf("RunString() error = %v", err)
	}
	if len(capture.locks) != 2 || !capture.locks[0] || capture.locks[1] {
		t.Errorf("locks = %v, want [true false]", capture.locks)
	}
	if w, ht := h.Element().OffsetSize(); w != 640 || ht != 480 {
		t.Errorf("OffsetSize() = %v,%v, want 640,480", w, ht)
	}
}

func TestPollDrivesDevice(t *testing.T) {
	var dev *native.Device
	h, _ := newTestHost(t, WithPoll(func() (native.State, error) { return dev.Poll() }))

	var err error
	dev, err = native.Bind(h.Document(), "#surface", native.WithLogger(logging.Discard))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer func() { _ = dev.Unbind() }()

	err = h.RunString(context.Background(), "poll", `
		webshim.keydown("W")
		webshim.move(150, 25)
		local s = webshim.poll()
		assert(#s.keys == 1, "keys " .. #s.keys)
		assert(s.keys[1] == webshim.keycode("W"), "key " .. tostring(s.keys[1]))
		assert(s.cursor.x == 0.5, "x " .. s.cursor.x)
		assert(s.cursor.y == -0.5, "y " .. s.cursor.y)
		assert(#s.axes == 3, "axes " .. #s.axes)
		local again = webshim.poll()
		assert(#again.keys == 0, "latched keys " .. #again.keys)
	`)
	if err != nil {
		t.Fatalf("RunString() error = %v", err)
	}
}

func TestPollUnavailable(t *testing.T) {
	h, _ := newTestHost(t)

	err := h.RunString(context.Background(), "poll", `webshim.poll()`)
	if err == nil || !strings.Contains(err.Error(), ErrNotPollable.Error()) {
		t.Errorf("RunString() error = %v, want %v", err, ErrNotPollable)
	}
}

func TestRequire(t *testing.T) {
	h, _ := newTestHost(t)

	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"module", `local w = require("webshim"); assert(w.press ~= nil)`, false},
		{"string", `local s = require("string"); assert(s.upper("a") == "A")`, false},
		{"io", `require("io")`, true},
		{"os global", `assert(os == nil)`, false},
		{"dofile", `assert(dofile == nil and loadfile == nil and load == nil)`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.RunString(context.Background(), tt.name, tt.src)
			if (err != nil) != tt.wantErr {
				t.Errorf("RunString() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSleepHonorsContext(t *testing.T) {
	h, _ := newTestHost(t)
	var slept time.Duration
	h.sleep = func(ctx context.Context, d time.Duration) error {
		slept += d
		return ctx.Err()
	}

	if err := h.RunString(context.Background(), "sleep", `webshim.sleep(250)`); err != nil {
		t.Fatalf("RunString() error = %v", err)
	}
	if slept != 250*time.Millisecond {
		t.Errorf("slept = %v, want 250ms", slept)
	}
}

func TestContextStopsScript(t *testing.T) {
	h, _ := newTestHost(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := h.RunString(ctx, "loop", `while true do end`)
	if err == nil {
		t.Fatal("RunString() error = nil, want context error")
	}
}

func TestClosed(t *testing.T) {
	h, _ := newTestHost(t)
	h.Close()

	if err := h.RunString(context.Background(), "x", `return 1`); !errors.Is(err, ErrClosed) {
		t.Errorf("RunString() error = %v, want %v", err, ErrClosed)
	}
}
