// Package script drives an in-memory surface from a Lua script.
//
// Scripts run in a sandbox with the base, string, table and math libraries
// and the webshim module, available as a global and through require:
//
//	webshim.keydown(key)        key is a DOM code or a key name such as "A"
//	webshim.keyup(key)
//	webshim.press(key)          keydown then keyup
//	webshim.move(x, y)          mousemove to client coordinates
//	webshim.moveby(dx, dy)      mousemove by a relative amount
//	webshim.down(button)        MouseEvent.button index, 0 is left
//	webshim.up(button)
//	webshim.wheel(deltaY)
//	webshim.lock(locked)        pointer lock on or off
//	webshim.resize(w, h)
//	webshim.poll()              table with cursor, buttons, axes and keys
//	webshim.sleep(ms)
//	webshim.log(...)
//	webshim.keycode(name)       DOM code for a key name, or nil
//
// A script is stopped when its context is done.
package script

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

// ModuleName is the name of the Lua module exposing the input API.
const ModuleName = "webshim"

// PollFunc polls the bound input device.
type PollFunc func() (native.State, error)

// Host runs input scripts against a surface.
type Host struct {
	doc     *memhost.Document
	el      *memhost.Element
	surface memhost.Surface

	st   *state
	poll PollFunc
	log  *logging.Logger

	mu      sync.Mutex
	x, y    float64
	buttons mouse.Buttons

	sleep func(context.Context, time.Duration) error
}

// Option configures a Host.
type Option func(*Host)

// WithPoll sets the function behind webshim.poll.
func WithPoll(fn PollFunc) Option {
	return func(h *Host) { h.poll = fn }
}

// WithSurface wraps the element's write side.
func WithSurface(wrap func(memhost.Surface) memhost.Surface) Option {
	return func(h *Host) { h.surface = wrap(h.surface) }
}

// WithSize sets the initial element size.
func WithSize(w, ht float64) Option {
	return func(h *Host) { h.el.SetRect(mouse.Rect{Width: w, Height: ht}) }
}

// WithLogger sets the logger behind webshim.log.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) { h.log = l }
}

// New creates a script host. The element is registered under selector.
func New(selector string, opts ...Option) *Host {
	doc, el := memhost.NewSurface(selector, 0, 0)
	h := &Host{
		doc:     doc,
		el:      el,
		surface: el,
		log:     logging.Default().Child("script"),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.st = newState()
	L := h.st.L
	mod := L.SetFuncs(L.NewTable(), h.exports())
	L.SetGlobal(ModuleName, mod)
	L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	return h
}

// Document returns the document holding the script element.
func (h *Host) Document() native.Document { return h.doc }

// Element returns the script element.
func (h *Host) Element() *memhost.Element { return h.el }

// RunString runs a script. name is used in error messages.
func (h *Host) RunString(ctx context.Context, name, src string) error {
	return h.st.do(ctx, func(L *lua.LState) error {
		fn, err := L.Load(strings.NewReader(src), name)
		if err != nil {
			return err
		}
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
}

// RunFile reads and runs the script at path.
func (h *Host) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return h.RunString(ctx, path, string(src))
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.st.close()
}

func (h *Host) exports() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"keydown": h.luaKey(native.EventKeyDown),
		"keyup":   h.luaKey(native.EventKeyUp),
		"press":   h.luaPress,
		"move":    h.luaMove,
		"moveby":  h.luaMoveBy,
		"down":    h.luaButton(true),
		"up":      h.luaButton(false),
		"wheel":   h.luaWheel,
		"lock":    h.luaLock,
		"resize":  h.luaResize,
		"poll":    h.luaPoll,
		"sleep":   h.luaSleep,
		"log":     h.luaLog,
		"keycode": h.luaKeycode,
	}
}

// checkKey reads a key argument given as a code or a name.
func checkKey(L *lua.LState, n int) int {
	switch v := L.CheckAny(n).(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		c, ok := key.Parse(string(v))
		if !ok {
			L.ArgError(n, "unknown key "+string(v))
		}
		return int(c)
	default:
		L.TypeError(n, lua.LTNumber)
	}
	return 0
}

func (h *Host) luaKey(t native.EventType) lua.LGFunction {
	return func(L *lua.LState) int {
		code := checkKey(L, 1)
		L.Push(lua.LBool(h.surface.Dispatch(native.Event{Type: t, KeyCode: code})))
		return 1
	}
}

func (h *Host) luaPress(L *lua.LState) int {
	code := checkKey(L, 1)
	h.surface.Dispatch(native.Event{Type: native.EventKeyDown, KeyCode: code})
	h.surface.Dispatch(native.Event{Type: native.EventKeyUp, KeyCode: code})
	return 0
}

func (h *Host) luaMove(L *lua.LState) int {
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	h.moveTo(x, y)
	return 0
}

func (h *Host) luaMoveBy(L *lua.LState) int {
	dx := float64(L.CheckNumber(1))
	dy := float64(L.CheckNumber(2))
	h.mu.Lock()
	x, y := h.x+dx, h.y+dy
	h.mu.Unlock()
	h.moveTo(x, y)
	return 0
}

func (h *Host) moveTo(x, y float64) {
	h.mu.Lock()
	ev := native.Event{
		Type:      native.EventMouseMove,
		ClientX:   x,
		ClientY:   y,
		MovementX: x - h.x,
		MovementY: y - h.y,
		Buttons:   h.buttons,
	}
	h.x, h.y = x, y
	h.mu.Unlock()
	h.surface.Dispatch(ev)
}

func (h *Host) luaButton(pressed bool) lua.LGFunction {
	return func(L *lua.LState) int {
		bit := mouse.FromIndex(L.OptInt(1, 0))
		if bit == 0 {
			L.ArgError(1, "unknown button")
			return 0
		}

		h.mu.Lock()
		t := native.EventMouseDown
		if pressed {
			h.buttons |= bit
		} else {
			h.buttons &^= bit
			t = native.EventMouseUp
		}
		ev := native.Event{Type: t, ClientX: h.x, ClientY: h.y, Buttons: h.buttons}
		h.mu.Unlock()

		h.surface.Dispatch(ev)
		return 0
	}
}

func (h *Host) luaWheel(L *lua.LState) int {
	dy := float64(L.CheckNumber(1))
	h.mu.Lock()
	ev := native.Event{Type: native.EventWheel, ClientX: h.x, ClientY: h.y, Buttons: h.buttons, DeltaY: dy}
	h.mu.Unlock()
	h.surface.Dispatch(ev)
	return 0
}

func (h *Host) luaLock(L *lua.LState) int {
	h.surface.SetPointerLock(L.OptBool(1, true))
	return 0
}

func (h *Host) luaResize(L *lua.LState) int {
	w := float64(L.CheckNumber(1))
	ht := float64(L.CheckNumber(2))
	if w < 0 || ht < 0 {
		L.ArgError(1, "size must not be negative")
		return 0
	}
	h.surface.SetRect(mouse.Rect{Width: w, Height: ht})
	return 0
}

func (h *Host) luaPoll(L *lua.LState) int {
	if h.poll == nil {
		L.RaiseError("%s", ErrNotPollable.Error())
		return 0
	}
	st, err := h.poll()
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(stateTable(L, st))
	return 1
}

// stateTable converts a poll result to a Lua table:
//
//	{cursor = {x =, y =}, buttons =, axes = {x, y, z}, keys = {codes...}}
func stateTable(L *lua.LState, st native.State) *lua.LTable {
	t := L.NewTable()

	cursor := L.NewTable()
	cursor.RawSetString("x", lua.LNumber(st.CursorX))
	cursor.RawSetString("y", lua.LNumber(st.CursorY))
	t.RawSetString("cursor", cursor)

	t.RawSetString("buttons", lua.LNumber(st.Buttons))

	axes := L.NewTable()
	for _, a := range st.Axes {
		axes.Append(lua.LNumber(a))
	}
	t.RawSetString("axes", axes)

	keys := L.NewTable()
	for _, c := range st.PressedKeys() {
		keys.Append(lua.LNumber(c))
	}
	t.RawSetString("keys", keys)
	return t
}

func (h *Host) luaSleep(L *lua.LState) int {
	ms := L.CheckNumber(1)
	if err := h.sleep(L.Context(), time.Duration(float64(ms)*float64(time.Millisecond))); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (h *Host) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.log.Infof("%s", strings.Join(parts, " "))
	return 0
}

func (h *Host) luaKeycode(L *lua.LState) int {
	c, ok := key.Parse(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(c))
	return 1
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
