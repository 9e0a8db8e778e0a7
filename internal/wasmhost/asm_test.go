package wasmhost

// A minimal WebAssembly binary encoder for test guests.

const (
	valI32 = 0x7f
	valF64 = 0x7c
)

const (
	opCall      = 0x10
	opLocalGet  = 0x20
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opSelect    = 0x1b
	opI32Const  = 0x41
	opI32Eqz    = 0x45
	opI32Add    = 0x6a
	opI32Or     = 0x72
	opEnd       = 0x0b
)

type funcType struct {
	params, results []byte
}

type importFunc struct {
	name   string
	typ    funcType
	module string // defaults to env
}

type guestFunc struct {
	name string
	typ  funcType
	body []byte // without the trailing end
}

type guestGlobal struct {
	name string
	init int32
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

func encName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func vec(items [][]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func encodeType(t funcType) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(t.params)))...)
	out = append(out, t.params...)
	out = append(out, uleb(uint32(len(t.results)))...)
	return append(out, t.results...)
}

// assemble builds a module with one exported page of memory, mutable i32
// globals and the given imports (all from env) and functions, all of which
// are exported.
func assemble(imports []importFunc, funcs []guestFunc, globals []guestGlobal) []byte {
	var types, imps, fidx, globs, exps, codes [][]byte

	for i, im := range imports {
		types = append(types, encodeType(im.typ))
		mod := im.module
		if mod == "" {
			mod = ModuleName
		}
		entry := append(encName(mod), encName(im.name)...)
		entry = append(entry, 0x00)
		imps = append(imps, append(entry, uleb(uint32(i))...))
	}
	for i, fn := range funcs {
		types = append(types, encodeType(fn.typ))
		fidx = append(fidx, uleb(uint32(len(imports)+i)))

		e := append(encName(fn.name), 0x00)
		exps = append(exps, append(e, uleb(uint32(len(imports)+i))...))

		body := append([]byte{0x00}, fn.body...) // no locals
		body = append(body, opEnd)
		codes = append(codes, append(uleb(uint32(len(body))), body...))
	}
	for i, g := range globals {
		def := []byte{valI32, 0x01, opI32Const}
		def = append(def, sleb(g.init)...)
		globs = append(globs, append(def, opEnd))

		e := append(encName(g.name), 0x03)
		exps = append(exps, append(e, uleb(uint32(i))...))
	}
	exps = append(exps, append(encName("memory"), 0x02, 0x00))

	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, vec(types))...)
	out = append(out, section(2, vec(imps))...)
	out = append(out, section(3, vec(fidx))...)
	out = append(out, section(5, vec([][]byte{{0x00, 0x01}}))...)
	out = append(out, section(6, vec(globs))...)
	out = append(out, section(7, vec(exps))...)
	out = append(out, section(10, vec(codes))...)
	return out
}

// forward returns a body passing every parameter of t to function idx.
func forward(t funcType, idx int) []byte {
	var body []byte
	for i := range t.params {
		body = append(body, opLocalGet)
		body = append(body, uleb(uint32(i))...)
	}
	body = append(body, opCall)
	return append(body, uleb(uint32(idx))...)
}

func i32s(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = valI32
	}
	return out
}
