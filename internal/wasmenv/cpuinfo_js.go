//go:build js && wasm

package wasmenv

import (
	"context"
	"syscall/js"
)

// BrowserCPU names the browser's JavaScript VM.
const BrowserCPU = "WebAssemblyJavaScriptVM"

func hostCPU(context.Context) (name, model string, logical int) {
	logical = 1
	if nav := js.Global().Get("navigator"); !nav.IsUndefined() {
		if hc := nav.Get("hardwareConcurrency"); hc.Type() == js.TypeNumber {
			logical = hc.Int()
		}
	}
	return BrowserCPU, "", logical
}
