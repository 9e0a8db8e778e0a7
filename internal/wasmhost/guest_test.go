package wasmhost

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// envImports lists every function the core imports from env.
var envImports = []importFunc{
	{name: "WasmEnv_SupportsFeature", typ: funcType{i32s(1), i32s(1)}},
	{name: "WebAdapter_LogColored", typ: funcType{i32s(2), nil}},
	{name: "WebAdapter_EncodeURIComponent", typ: funcType{i32s(1), i32s(1)}},
	{name: "WebAdapter_GetUserAgent", typ: funcType{nil, i32s(1)}},
	{name: "WebAdapter_DisplayAlert", typ: funcType{i32s(2), i32s(1)}},
	{name: "WebAdapter_FetchSync", typ: funcType{i32s(10), i32s(1)}},
	{name: "WebAdapter_SetSignalHandler", typ: funcType{i32s(2), nil}},
	{name: "HTML5NativeInput_SetupKeyboardMouseDevice", typ: funcType{i32s(1), nil}},
	{name: "HTML5NativeInput_RemoveKeyboardMouseDevice", typ: funcType{nil, nil}},
	{name: "HTML5NativeInput_GetKeyboardMouseInputState", typ: funcType{i32s(5), nil}},
}

// Guest globals, in index order.
var guestGlobals = []guestGlobal{
	{"heap", 1024},
	{"progress_calls", 0},
	{"last_user", 0},
	{"progress_ret", 0},
	{"last_handler", 0},
	{"last_signal", 0},
	{"malloc_zero_null", 0},
}

// testGuest assembles a core with a bump allocator, the two dynCall
// trampolines, and a call_<name> export forwarding to each env import.
// Setting malloc_zero_null makes malloc(0) return NULL.
func testGuest() []byte {
	funcs := []guestFunc{
		{
			name: "malloc",
			typ:  funcType{i32s(1), i32s(1)},
			// return (size != 0 || !malloc_zero_null) ? heap : 0; heap += size
			body: []byte{
				opGlobalGet, 0, opI32Const, 0,
				opLocalGet, 0, opGlobalGet, 6, opI32Eqz, opI32Or,
				opSelect,
				opGlobalGet, 0, opLocalGet, 0, opI32Add, opGlobalSet, 0,
			},
		},
		{
			name: "dynCall_iidd",
			typ:  funcType{[]byte{valI32, valI32, valF64, valF64}, i32s(1)},
			body: []byte{
				opGlobalGet, 1, opI32Const, 1, opI32Add, opGlobalSet, 1,
				opLocalGet, 1, opGlobalSet, 2,
				opGlobalGet, 3,
			},
		},
		{
			name: "dynCall_vi",
			typ:  funcType{i32s(2), nil},
			body: []byte{opLocalGet, 0, opGlobalSet, 4, opLocalGet, 1, opGlobalSet, 5},
		},
	}
	for i, im := range envImports {
		funcs = append(funcs, guestFunc{name: "call_" + im.name, typ: im.typ, body: forward(im.typ, i)})
	}
	return assemble(envImports, funcs, guestGlobals)
}

type guest struct {
	t   *testing.T
	ctx context.Context
	mod api.Module
}

func testRuntimeConfig() wazero.RuntimeConfig {
	return wazero.NewRuntimeConfigInterpreter().WithCoreFeatures(api.CoreFeaturesV2)
}

// newGuest links env and instantiates the test guest against it.
func newGuest(t *testing.T, env *Env) *guest {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, testRuntimeConfig())
	t.Cleanup(func() {
		env.Close()
		_ = rt.Close(ctx)
	})

	if _, err := env.Instantiate(ctx, rt); err != nil {
		t.Fatalf("Instantiate(env) error = %v", err)
	}
	mod, err := rt.Instantiate(ctx, testGuest())
	if err != nil {
		t.Fatalf("Instantiate(guest) error = %v", err)
	}
	return &guest{t: t, ctx: ctx, mod: mod}
}

func (g *guest) call(name string, args ...uint64) ([]uint64, error) {
	g.t.Helper()
	fn := g.mod.ExportedFunction("call_" + name)
	if fn == nil {
		g.t.Fatalf("guest has no call_%s", name)
	}
	return fn.Call(g.ctx, args...)
}

// mustCall is call failing the test on error.
func (g *guest) mustCall(name string, args ...uint64) []uint64 {
	g.t.Helper()
	res, err := g.call(name, args...)
	if err != nil {
		g.t.Fatalf("%s error = %v", name, err)
	}
	return res
}

// putString writes s and a NUL at ptr and returns ptr.
func (g *guest) putString(ptr uint32, s string) uint64 {
	g.t.Helper()
	if !g.mod.Memory().Write(ptr, append([]byte(s), 0)) {
		g.t.Fatalf("write %q at %#x out of range", s, ptr)
	}
	return uint64(ptr)
}

func (g *guest) putUint32s(ptr uint32, vs ...uint32) uint64 {
	g.t.Helper()
	for i, v := range vs {
		if !g.mod.Memory().WriteUint32Le(ptr+uint32(4*i), v) {
			g.t.Fatalf("write u32 at %#x out of range", ptr)
		}
	}
	return uint64(ptr)
}

func (g *guest) cString(ptr uint32) string {
	g.t.Helper()
	s, err := readCString(g.mod, ptr)
	if err != nil {
		g.t.Fatalf("readCString(%#x) error = %v", ptr, err)
	}
	return s
}

func (g *guest) u32(ptr uint32) uint32 {
	v, _ := g.mod.Memory().ReadUint32Le(ptr)
	return v
}

func (g *guest) f32(ptr uint32) float32 {
	v, _ := g.mod.Memory().ReadFloat32Le(ptr)
	return v
}

func (g *guest) global(name string) uint32 {
	return api.DecodeU32(g.mod.ExportedGlobal(name).Get())
}

func (g *guest) setGlobal(name string, v uint32) {
	g.mod.ExportedGlobal(name).(api.MutableGlobal).Set(api.EncodeU32(v))
}
