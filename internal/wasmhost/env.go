package wasmhost

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/emscripten"

	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
	"github.com/dshills/webshim/internal/wasmenv"
	"github.com/dshills/webshim/internal/webadapter"
)

// ModuleName is the import module the core links against.
const ModuleName = "env"

// Env is the host side of the core's imports.
type Env struct {
	doc       native.Document
	prober    *wasmenv.Prober
	fetcher   *webadapter.Fetcher
	signals   *webadapter.Signals
	logColor  func(msg, color string)
	alert     func(msg string, confirm bool) bool
	userAgent func() string
	metrics   *native.Metrics
	log       *logging.Logger

	mu      sync.Mutex
	dev     *native.Device
	uaPtr   uint32
	pending []pendingSignal
}

type pendingSignal struct {
	handler uint32
	sig     int
}

// Option configures an Env.
type Option func(*Env)

// WithDocument sets the document input devices bind to.
func WithDocument(doc native.Document) Option {
	return func(e *Env) { e.doc = doc }
}

// WithProber sets the feature prober.
func WithProber(p *wasmenv.Prober) Option {
	return func(e *Env) { e.prober = p }
}

// WithFetcher sets the fetcher behind WebAdapter_FetchSync.
func WithFetcher(f *webadapter.Fetcher) Option {
	return func(e *Env) { e.fetcher = f }
}

// WithSignals sets the signal table guest handlers are installed in.
func WithSignals(s *webadapter.Signals) Option {
	return func(e *Env) { e.signals = s }
}

// WithLogColored sets the console sink behind WebAdapter_LogColored.
func WithLogColored(fn func(msg, color string)) Option {
	return func(e *Env) { e.logColor = fn }
}

// WithAlert sets the prompt behind WebAdapter_DisplayAlert.
func WithAlert(fn func(msg string, confirm bool) bool) Option {
	return func(e *Env) { e.alert = fn }
}

// WithUserAgent sets the user agent source.
func WithUserAgent(fn func() string) Option {
	return func(e *Env) { e.userAgent = fn }
}

// WithMetrics records the guest's input device in m.
func WithMetrics(m *native.Metrics) Option {
	return func(e *Env) { e.metrics = m }
}

// WithLogger sets the env logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Env) { e.log = l }
}

// NewEnv creates an Env using the process defaults for anything not set.
func NewEnv(opts ...Option) *Env {
	e := &Env{
		prober:    wasmenv.Default(),
		fetcher:   webadapter.NewFetcher(),
		signals:   webadapter.NewSignals(),
		logColor:  webadapter.LogColored,
		alert:     webadapter.DisplayAlert,
		userAgent: webadapter.UserAgent,
		log:       logging.Default().Child("wasmhost"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Signals returns the table guest signal handlers are installed in.
func (e *Env) Signals() *webadapter.Signals { return e.signals }

// Device returns the input device bound by the guest, or nil.
func (e *Env) Device() *native.Device {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dev
}

// Instantiate builds and instantiates the env module in rt. Exporters add
// further env functions, such as the emscripten invoke trampolines.
func (e *Env) Instantiate(ctx context.Context, rt wazero.Runtime, exporters ...emscripten.FunctionExporter) (api.Module, error) {
	b := rt.NewHostModuleBuilder(ModuleName)

	b.NewFunctionBuilder().WithFunc(e.supportsFeature).WithParameterNames("feature").Export("WasmEnv_SupportsFeature")
	b.NewFunctionBuilder().WithFunc(e.logColored).WithParameterNames("msg", "color").Export("WebAdapter_LogColored")
	b.NewFunctionBuilder().WithFunc(e.encodeURIComponent).WithParameterNames("str").Export("WebAdapter_EncodeURIComponent")
	b.NewFunctionBuilder().WithFunc(e.getUserAgent).Export("WebAdapter_GetUserAgent")
	b.NewFunctionBuilder().WithFunc(e.displayAlert).WithParameterNames("msg", "use_confirm").Export("WebAdapter_DisplayAlert")
	b.NewFunctionBuilder().WithFunc(e.fetchSync).
		WithParameterNames("verb", "url", "headers", "timeout", "out_data", "out_size", "payload", "payload_size", "progress_cb", "user_data").
		Export("WebAdapter_FetchSync")
	b.NewFunctionBuilder().WithFunc(e.setSignalHandler).WithParameterNames("sig", "handler").Export("WebAdapter_SetSignalHandler")
	b.NewFunctionBuilder().WithFunc(e.setupKeyboardMouse).WithParameterNames("target").Export("HTML5NativeInput_SetupKeyboardMouseDevice")
	b.NewFunctionBuilder().WithFunc(e.removeKeyboardMouse).Export("HTML5NativeInput_RemoveKeyboardMouseDevice")
	b.NewFunctionBuilder().WithFunc(e.getKeyboardMouseState).
		WithParameterNames("cursor_x", "cursor_y", "buttons", "axes", "keyboard").
		Export("HTML5NativeInput_GetKeyboardMouseInputState")

	for _, ex := range exporters {
		ex.ExportFunctions(b)
	}
	return b.Instantiate(ctx)
}

// Close unbinds the guest's input device, if any.
func (e *Env) Close() {
	e.mu.Lock()
	dev := e.dev
	e.dev = nil
	e.mu.Unlock()
	if dev != nil && dev.IsBound() {
		_ = dev.Unbind()
	}
}

func (e *Env) supportsFeature(ctx context.Context, m api.Module, feature int32) int32 {
	e.deliverSignals(ctx, m)
	ok, err := e.prober.Supports(ctx, wasmenv.Feature(feature))
	trap("WasmEnv_SupportsFeature", err)
	if ok {
		return 1
	}
	return 0
}

func (e *Env) logColored(ctx context.Context, m api.Module, msgPtr, colorPtr uint32) {
	e.deliverSignals(ctx, m)
	msg, err := readCString(m, msgPtr)
	trap("WebAdapter_LogColored", err)
	color, err := readCString(m, colorPtr)
	trap("WebAdapter_LogColored", err)
	e.logColor(msg, color)
}

func (e *Env) encodeURIComponent(ctx context.Context, m api.Module, strPtr uint32) uint32 {
	e.deliverSignals(ctx, m)
	s, err := readCString(m, strPtr)
	trap("WebAdapter_EncodeURIComponent", err)
	ptr, err := allocCString(ctx, m, webadapter.EncodeURIComponent(s))
	trap("WebAdapter_EncodeURIComponent", err)
	return ptr
}

func (e *Env) getUserAgent(ctx context.Context, m api.Module) uint32 {
	e.deliverSignals(ctx, m)
	e.mu.Lock()
	ptr := e.uaPtr
	e.mu.Unlock()
	if ptr != 0 {
		return ptr
	}

	ua := e.userAgent()
	if ua == "" {
		ua = webadapter.FallbackUserAgent
	}
	ptr, err := allocCString(ctx, m, ua)
	trap("WebAdapter_GetUserAgent", err)

	e.mu.Lock()
	e.uaPtr = ptr
	e.mu.Unlock()
	return ptr
}

func (e *Env) displayAlert(ctx context.Context, m api.Module, msgPtr uint32, useConfirm int32) int32 {
	e.deliverSignals(ctx, m)
	msg, err := readCString(m, msgPtr)
	trap("WebAdapter_DisplayAlert", err)
	if e.alert(msg, useConfirm != 0) {
		return 1
	}
	return 0
}

func (e *Env) fetchSync(ctx context.Context, m api.Module,
	verbPtr, urlPtr, headersPtr, timeoutMs, outData, outSize, payloadPtr, payloadSize, progressCb, userData uint32,
) int32 {
	const op = "WebAdapter_FetchSync"
	e.deliverSignals(ctx, m)

	verb, err := readCString(m, verbPtr)
	trap(op, err)
	url, err := readCString(m, urlPtr)
	trap(op, err)

	req := webadapter.FetchRequest{
		Method:  verb,
		URL:     url,
		Timeout: time.Duration(timeoutMs) * time.Millisecond,
	}

	if headersPtr != 0 {
		ptrs, err := readPointerList(m, headersPtr)
		trap(op, err)
		// A trailing name without a value is dropped.
		for i := 0; i+1 < len(ptrs); i += 2 {
			name, err := readCString(m, ptrs[i])
			trap(op, err)
			value, err := readCString(m, ptrs[i+1])
			trap(op, err)
			req.Headers = append(req.Headers, webadapter.Header{Name: name, Value: value})
		}
	}

	if payloadPtr != 0 {
		req.Payload, err = readBytes(m, payloadPtr, payloadSize)
		trap(op, err)
	}

	if progressCb != 0 {
		dyn := m.ExportedFunction("dynCall_iidd")
		if dyn == nil {
			trap(op, fmt.Errorf("%w: dynCall_iidd", ErrNoExport))
		}
		req.Progress = func(loaded, total float64) bool {
			res, err := dyn.Call(ctx, uint64(progressCb), uint64(userData), api.EncodeF64(loaded), api.EncodeF64(total))
			trap(op, err)
			return api.DecodeI32(res[0]) != 0
		}
	}

	res := e.fetcher.FetchSync(ctx, req)
	if !res.OK() {
		return webadapter.StatusFailed
	}

	buf, err := alloc(ctx, m, res.Body)
	trap(op, err)
	trap(op, writeUint32(m, outSize, uint32(len(res.Body))))
	trap(op, writeUint32(m, outData, buf))
	return int32(res.Status)
}

func (e *Env) setSignalHandler(ctx context.Context, m api.Module, sig int32, handler uint32) {
	e.deliverSignals(ctx, m)
	if handler == 0 {
		e.signals.Set(int(sig), nil)
		return
	}
	e.signals.Set(int(sig), func(s int) {
		e.mu.Lock()
		e.pending = append(e.pending, pendingSignal{handler: handler, sig: s})
		e.mu.Unlock()
	})
}

// deliverSignals runs queued guest signal handlers through dynCall_vi.
func (e *Env) deliverSignals(ctx context.Context, m api.Module) {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	dyn := m.ExportedFunction("dynCall_vi")
	if dyn == nil {
		trap("WebAdapter_SetSignalHandler", fmt.Errorf("%w: dynCall_vi", ErrNoExport))
	}
	for _, p := range pending {
		e.log.Debugf("delivering signal %d to guest handler %#x", p.sig, p.handler)
		_, err := dyn.Call(ctx, uint64(p.handler), api.EncodeI32(int32(p.sig)))
		trap("WebAdapter_SetSignalHandler", err)
	}
}

// PendingSignals returns the number of raised signals not yet delivered.
func (e *Env) PendingSignals() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Env) setupKeyboardMouse(ctx context.Context, m api.Module, targetPtr uint32) {
	const op = "HTML5NativeInput_SetupKeyboardMouseDevice"
	e.deliverSignals(ctx, m)
	selector, err := readCString(m, targetPtr)
	trap(op, err)

	dev, err := native.Bind(e.doc, selector, native.WithLogger(e.log), native.WithMetrics(e.metrics))
	trap(op, err)

	e.mu.Lock()
	e.dev = dev
	e.mu.Unlock()
}

func (e *Env) removeKeyboardMouse(ctx context.Context, m api.Module) {
	const op = "HTML5NativeInput_RemoveKeyboardMouseDevice"
	e.deliverSignals(ctx, m)

	e.mu.Lock()
	dev := e.dev
	e.dev = nil
	e.mu.Unlock()

	if dev == nil {
		trap(op, native.ErrNotBound)
	}
	trap(op, dev.Unbind())
}

func (e *Env) getKeyboardMouseState(ctx context.Context, m api.Module, cursorX, cursorY, buttons, axes, keyboard uint32) {
	const op = "HTML5NativeInput_GetKeyboardMouseInputState"
	e.deliverSignals(ctx, m)

	e.mu.Lock()
	dev := e.dev
	e.mu.Unlock()
	if dev == nil {
		trap(op, native.ErrNotBound)
	}

	var st native.State
	trap(op, dev.PollInto(&st))

	trap(op, writeFloat32(m, cursorX, st.CursorX))
	trap(op, writeFloat32(m, cursorY, st.CursorY))
	trap(op, writeUint32(m, buttons, st.Buttons))
	for i, a := range st.Axes {
		trap(op, writeFloat32(m, axes+uint32(4*i), a))
	}
	trap(op, writeBytes(m, keyboard, st.Keys[:key.NumCodes]))
}
