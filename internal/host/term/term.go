// Package term delivers terminal input to an in-memory surface.
//
// The terminal screen is the element: one cell is one client pixel, and
// the bottom row is reserved for a status line. tcell key events become
// keydown events with DOM key codes. Terminals report no key releases, so
// each key is released by a keyup after it has gone KeyRelease without a
// repeat. Modifier flags on a key event press and release the matching
// modifier keys alongside it.
//
// Mouse reports are compared with the previous button mask to produce
// mousedown, mouseup and mousemove events. Wheel reports become wheel
// events with a DeltaY of one line. Ctrl+C is not delivered as a key; it
// calls the interrupt handler instead.
package term

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

// DefaultKeyRelease is the hold time used when none is configured.
const DefaultKeyRelease = 150 * time.Millisecond

type stopper interface {
	Stop() bool
}

// Host binds a tcell screen to a surface.
type Host struct {
	mu sync.Mutex

	screen   tcell.Screen
	doc      *memhost.Document
	el       *memhost.Element
	surface  memhost.Surface
	selector string

	keyRelease time.Duration
	afterFunc  func(time.Duration, func()) stopper
	held       map[key.Code]stopper

	buttons      mouse.Buttons
	lastX, lastY int

	status      string
	onInterrupt func()
	log         *logging.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithKeyRelease sets how long a key stays held without a repeat.
func WithKeyRelease(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.keyRelease = d
		}
	}
}

// WithSurface wraps the element's write side, for example with a trace
// recorder.
func WithSurface(wrap func(memhost.Surface) memhost.Surface) Option {
	return func(h *Host) {
		h.surface = wrap(h.surface)
	}
}

// WithInterrupt sets the Ctrl+C handler.
func WithInterrupt(fn func()) Option {
	return func(h *Host) {
		h.onInterrupt = fn
	}
}

// WithLogger sets the host logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// New creates a host on screen. The element is registered under selector.
func New(screen tcell.Screen, selector string, opts ...Option) *Host {
	doc, el := memhost.NewSurface(selector, 0, 0)
	h := &Host{
		screen:     screen,
		doc:        doc,
		el:         el,
		surface:    el,
		selector:   selector,
		keyRelease: DefaultKeyRelease,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		held: make(map[key.Code]stopper),
		log:  logging.Default().Child("term"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Document returns the document holding the terminal element.
func (h *Host) Document() native.Document { return h.doc }

// Element returns the terminal element.
func (h *Host) Element() *memhost.Element { return h.el }

// Init initializes the screen and sizes the element.
func (h *Host) Init() error {
	if err := h.screen.Init(); err != nil {
		return err
	}
	h.screen.EnableMouse()
	h.screen.Clear()
	w, ht := h.screen.Size()
	h.resize(w, ht)
	h.screen.Show()
	return nil
}

// Close releases held keys and the screen.
func (h *Host) Close() {
	h.mu.Lock()
	for c, t := range h.held {
		t.Stop()
		delete(h.held, c)
	}
	h.mu.Unlock()
	h.screen.Fini()
}

// Run delivers screen events until ctx is done or the screen is closed.
func (h *Host) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return ctx.Err()
		}
		h.HandleEvent(ev)
	}
}

// HandleEvent translates one tcell event.
func (h *Host) HandleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		h.handleKey(e)
	case *tcell.EventMouse:
		h.handleMouse(e)
	case *tcell.EventResize:
		w, ht := e.Size()
		h.resize(w, ht)
	}
}

func (h *Host) resize(w, ht int) {
	rows := ht - 1
	if rows < 1 {
		rows = 1
	}
	h.surface.SetRect(mouse.Rect{Width: float64(w), Height: float64(rows)})
	h.drawStatus()
}

func (h *Host) handleKey(e *tcell.EventKey) {
	if e.Key() == tcell.KeyCtrlC {
		if h.onInterrupt != nil {
			h.onInterrupt()
		}
		return
	}

	code, implied, ok := KeyCode(e)
	if !ok {
		h.log.Debugf("unmapped terminal key %v", e.Name())
		return
	}

	mods := e.Modifiers() | implied
	if mods&tcell.ModShift != 0 {
		h.press(key.CodeShift)
	}
	if mods&tcell.ModCtrl != 0 {
		h.press(key.CodeControl)
	}
	if mods&tcell.ModAlt != 0 {
		h.press(key.CodeAlt)
	}
	if mods&tcell.ModMeta != 0 {
		h.press(key.CodeMeta)
	}
	h.press(code)
}

// press delivers keydown for c and schedules its keyup.
func (h *Host) press(c key.Code) {
	h.surface.Dispatch(native.Event{Type: native.EventKeyDown, KeyCode: int(c)})

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.held[c]; ok {
		t.Stop()
	}
	h.held[c] = h.afterFunc(h.keyRelease, func() { h.release(c) })
}

func (h *Host) release(c key.Code) {
	h.mu.Lock()
	_, ok := h.held[c]
	delete(h.held, c)
	h.mu.Unlock()

	if ok {
		h.surface.Dispatch(native.Event{Type: native.EventKeyUp, KeyCode: int(c)})
	}
}

func (h *Host) handleMouse(e *tcell.EventMouse) {
	x, y := e.Position()
	mask := e.Buttons()

	var buttons mouse.Buttons
	if mask&tcell.ButtonPrimary != 0 {
		buttons |= mouse.ButtonLeft
	}
	if mask&tcell.ButtonSecondary != 0 {
		buttons |= mouse.ButtonRight
	}
	if mask&tcell.ButtonMiddle != 0 {
		buttons |= mouse.ButtonMiddle
	}
	if mask&tcell.Button4 != 0 {
		buttons |= mouse.ButtonBack
	}
	if mask&tcell.Button5 != 0 {
		buttons |= mouse.ButtonForward
	}

	h.mu.Lock()
	prev := h.buttons
	h.buttons = buttons
	dx, dy := x-h.lastX, y-h.lastY
	h.lastX, h.lastY = x, y
	h.mu.Unlock()

	ev := native.Event{
		ClientX:   float64(x),
		ClientY:   float64(y),
		MovementX: float64(dx),
		MovementY: float64(dy),
		Buttons:   buttons,
	}

	switch {
	case mask&tcell.WheelUp != 0:
		ev.Type, ev.DeltaY = native.EventWheel, -1
	case mask&tcell.WheelDown != 0:
		ev.Type, ev.DeltaY = native.EventWheel, 1
	case buttons&^prev != 0:
		ev.Type = native.EventMouseDown
	case prev&^buttons != 0:
		ev.Type = native.EventMouseUp
	default:
		ev.Type = native.EventMouseMove
	}
	h.surface.Dispatch(ev)
}

// SetStatus replaces the status line text.
func (h *Host) SetStatus(text string) {
	h.mu.Lock()
	h.status = text
	h.mu.Unlock()
	h.drawStatus()
}

// drawStatus renders the status line on the bottom row, truncated to the
// screen width by grapheme cluster.
func (h *Host) drawStatus() {
	h.mu.Lock()
	text := h.status
	h.mu.Unlock()

	w, ht := h.screen.Size()
	if ht < 1 {
		return
	}
	y := ht - 1
	style := tcell.StyleDefault.Reverse(true)

	x := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		cw := g.Width()
		if x+cw > w {
			break
		}
		h.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += cw
	}
	for ; x < w; x++ {
		h.screen.SetContent(x, y, ' ', nil, style)
	}
	h.screen.Show()
}
