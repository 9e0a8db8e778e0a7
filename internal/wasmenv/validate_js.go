//go:build js && wasm

package wasmenv

import (
	"context"
	"syscall/js"
)

// BrowserValidator uses WebAssembly.validate.
type BrowserValidator struct{}

// Validate implements Validator.
func (BrowserValidator) Validate(_ context.Context, module []byte) bool {
	wasm := js.Global().Get("WebAssembly")
	if wasm.IsUndefined() {
		return false
	}
	buf := js.Global().Get("Uint8Array").New(len(module))
	js.CopyBytesToJS(buf, module)
	return wasm.Call("validate", buf).Bool()
}

func hostValidator() Validator {
	return BrowserValidator{}
}
