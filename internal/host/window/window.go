//go:build !js

// Package window delivers desktop window input to an in-memory surface.
//
// The window's drawable area is the element, sized in logical pixels.
// Each frame the keyboard and mouse state read from ebiten is compared with
// the previous frame and the differences are dispatched as DOM events.
// Captured cursor mode stands in for pointer lock: a click requests it and
// Escape releases it.
package window

import (
	"context"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

const (
	DefaultTitle  = "webshim"
	DefaultWidth  = 800
	DefaultHeight = 600
)

var background = color.RGBA{0x20, 0x20, 0x28, 0xff}

// Host runs an ebiten window bound to a surface.
type Host struct {
	mu sync.Mutex

	doc     *memhost.Document
	el      *memhost.Element
	surface memhost.Surface

	title         string
	width, height int
	lockOnClick   bool

	ctx     context.Context
	prev    Frame
	started bool
	status  string
	onFrame func()
	log     *logging.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(h *Host) { h.title = title }
}

// WithSize sets the initial window size.
func WithSize(w, ht int) Option {
	return func(h *Host) {
		if w > 0 && ht > 0 {
			h.width, h.height = w, ht
		}
	}
}

// WithPointerLockOnClick makes a click inside the window capture the cursor.
func WithPointerLockOnClick(on bool) Option {
	return func(h *Host) { h.lockOnClick = on }
}

// WithSurface wraps the element's write side.
func WithSurface(wrap func(memhost.Surface) memhost.Surface) Option {
	return func(h *Host) { h.surface = wrap(h.surface) }
}

// WithFrameFunc sets a callback run after each frame's events are dispatched.
func WithFrameFunc(fn func()) Option {
	return func(h *Host) { h.onFrame = fn }
}

// WithLogger sets the host logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) { h.log = l }
}

// New creates a window host. The element is registered under selector.
func New(selector string, opts ...Option) *Host {
	doc, el := memhost.NewSurface(selector, 0, 0)
	h := &Host{
		doc:     doc,
		el:      el,
		surface: el,
		title:   DefaultTitle,
		width:   DefaultWidth,
		height:  DefaultHeight,
		ctx:     context.Background(),
		log:     logging.Default().Child("window"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Document returns the document holding the window element.
func (h *Host) Document() native.Document { return h.doc }

// Element returns the window element.
func (h *Host) Element() *memhost.Element { return h.el }

// SetStatus replaces the text drawn in the window.
func (h *Host) SetStatus(text string) {
	h.mu.Lock()
	h.status = text
	h.mu.Unlock()
}

// Run opens the window and blocks until it is closed or ctx is done. It
// must be called from the main goroutine.
func (h *Host) Run(ctx context.Context) error {
	h.ctx = ctx
	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(h); err != nil && err != ebiten.Termination {
		return err
	}
	h.log.Debugf("window closed")
	return nil
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.ctx.Err() != nil {
		return ebiten.Termination
	}

	if h.lockOnClick && ebiten.CursorMode() != ebiten.CursorModeCaptured &&
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	}
	if ebiten.CursorMode() == ebiten.CursorModeCaptured && inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}

	h.Apply(readFrame(h.width, h.height))
	if h.onFrame != nil {
		h.onFrame()
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	h.mu.Lock()
	status := h.status
	h.mu.Unlock()
	if status != "" {
		ebitenutil.DebugPrint(screen, status)
	}
}

// Layout implements ebiten.Game. The element is sized in logical pixels.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.width, h.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func readFrame(w, ht int) Frame {
	f := Frame{Width: w, Height: ht}

	for _, k := range inpututil.AppendPressedKeys(nil) {
		if c, ok := keyCodes[k]; ok {
			f.Keys = append(f.Keys, c)
		}
	}

	f.X, f.Y = ebiten.CursorPosition()
	for _, mb := range mouseButtons {
		if ebiten.IsMouseButtonPressed(mb.button) {
			f.Buttons |= mb.bit
		}
	}
	_, f.WheelY = ebiten.Wheel()
	f.Captured = ebiten.CursorMode() == ebiten.CursorModeCaptured
	return f
}

var mouseButtons = []struct {
	button ebiten.MouseButton
	bit    mouse.Buttons
}{
	{ebiten.MouseButtonLeft, mouse.ButtonLeft},
	{ebiten.MouseButtonRight, mouse.ButtonRight},
	{ebiten.MouseButtonMiddle, mouse.ButtonMiddle},
	{ebiten.MouseButton3, mouse.ButtonBack},
	{ebiten.MouseButton4, mouse.ButtonForward},
}

var keyCodes = map[ebiten.Key]key.Code{
	ebiten.KeyA: key.CodeA, ebiten.KeyB: key.CodeB, ebiten.KeyC: key.CodeC,
	ebiten.KeyD: key.CodeD, ebiten.KeyE: key.CodeE, ebiten.KeyF: key.CodeF,
	ebiten.KeyG: key.CodeG, ebiten.KeyH: key.CodeH, ebiten.KeyI: key.CodeI,
	ebiten.KeyJ: key.CodeJ, ebiten.KeyK: key.CodeK, ebiten.KeyL: key.CodeL,
	ebiten.KeyM: key.CodeM, ebiten.KeyN: key.CodeN, ebiten.KeyO: key.CodeO,
	ebiten.KeyP: key.CodeP, ebiten.KeyQ: key.CodeQ, ebiten.KeyR: key.CodeR,
	ebiten.KeyS: key.CodeS, ebiten.KeyT: key.CodeT, ebiten.KeyU: key.CodeU,
	ebiten.KeyV: key.CodeV, ebiten.KeyW: key.CodeW, ebiten.KeyX: key.CodeX,
	ebiten.KeyY: key.CodeY, ebiten.KeyZ: key.CodeZ,

	ebiten.Key0: key.Code0, ebiten.Key1: key.Code1, ebiten.Key2: key.Code2,
	ebiten.Key3: key.Code3, ebiten.Key4: key.Code4, ebiten.Key5: key.Code5,
	ebiten.Key6: key.Code6, ebiten.Key7: key.Code7, ebiten.Key8: key.Code8,
	ebiten.Key9: key.Code9,

	ebiten.KeyNumpad0: key.CodeNumpad0, ebiten.KeyNumpad1: key.CodeNumpad1,
	ebiten.KeyNumpad2: key.CodeNumpad2, ebiten.KeyNumpad3: key.CodeNumpad3,
	ebiten.KeyNumpad4: key.CodeNumpad4, ebiten.KeyNumpad5: key.CodeNumpad5,
	ebiten.KeyNumpad6: key.CodeNumpad6, ebiten.KeyNumpad7: key.CodeNumpad7,
	ebiten.KeyNumpad8: key.CodeNumpad8, ebiten.KeyNumpad9: key.CodeNumpad9,
	ebiten.KeyNumpadAdd:      key.CodeAdd,
	ebiten.KeyNumpadSubtract: key.CodeSubtract,
	ebiten.KeyNumpadMultiply: key.CodeMultiply,
	ebiten.KeyNumpadDivide:   key.CodeDivide,
	ebiten.KeyNumpadDecimal:  key.CodeDecimal,
	ebiten.KeyNumpadEnter:    key.CodeEnter,

	ebiten.KeyF1: key.CodeF1, ebiten.KeyF2: key.CodeF2, ebiten.KeyF3: key.CodeF3,
	ebiten.KeyF4: key.CodeF4, ebiten.KeyF5: key.CodeF5, ebiten.KeyF6: key.CodeF6,
	ebiten.KeyF7: key.CodeF7, ebiten.KeyF8: key.CodeF8, ebiten.KeyF9: key.CodeF9,
	ebiten.KeyF10: key.CodeF10, ebiten.KeyF11: key.CodeF11, ebiten.KeyF12: key.CodeF12,

	ebiten.KeyArrowUp:    key.CodeUp,
	ebiten.KeyArrowDown:  key.CodeDown,
	ebiten.KeyArrowLeft:  key.CodeLeft,
	ebiten.KeyArrowRight: key.CodeRight,
	ebiten.KeyHome:       key.CodeHome,
	ebiten.KeyEnd:        key.CodeEnd,
	ebiten.KeyPageUp:     key.CodePageUp,
	ebiten.KeyPageDown:   key.CodePageDown,
	ebiten.KeyInsert:     key.CodeInsert,
	ebiten.KeyDelete:     key.CodeDelete,

	ebiten.KeyBackspace:    key.CodeBackspace,
	ebiten.KeyTab:          key.CodeTab,
	ebiten.KeyEnter:        key.CodeEnter,
	ebiten.KeyEscape:       key.CodeEscape,
	ebiten.KeySpace:        key.CodeSpace,
	ebiten.KeyCapsLock:     key.CodeCapsLock,
	ebiten.KeyNumLock:      key.CodeNumLock,
	ebiten.KeyScrollLock:   key.CodeScrollLock,
	ebiten.KeyPause:        key.CodePause,
	ebiten.KeyShiftLeft:    key.CodeShift,
	ebiten.KeyShiftRight:   key.CodeShift,
	ebiten.KeyControlLeft:  key.CodeControl,
	ebiten.KeyControlRight: key.CodeControl,
	ebiten.KeyAltLeft:      key.CodeAlt,
	ebiten.KeyAltRight:     key.CodeAlt,
	ebiten.KeyMetaLeft:     key.CodeMeta,
	ebiten.KeyMetaRight:    key.CodeMeta,

	ebiten.KeySemicolon:    key.CodeSemicolon,
	ebiten.KeyEqual:        key.CodeEquals,
	ebiten.KeyComma:        key.CodeComma,
	ebiten.KeyMinus:        key.CodeHyphenMinus,
	ebiten.KeyPeriod:       key.CodePeriod,
	ebiten.KeySlash:        key.CodeSlash,
	ebiten.KeyBackquote:    key.CodeBackQuote,
	ebiten.KeyLeftBracket:  key.CodeOpenBracket,
	ebiten.KeyBackslash:    key.CodeBackSlash,
	ebiten.KeyRightBracket: key.CodeCloseBracket,
	ebiten.KeyApostrophe:   key.CodeQuote,
}
