//go:build js && wasm

package webadapter

import "syscall/js"

func hostUserAgent() string {
	nav := js.Global().Get("navigator")
	if nav.IsUndefined() || nav.IsNull() {
		return ""
	}
	ua := nav.Get("userAgent")
	if ua.Type() != js.TypeString {
		return ""
	}
	return ua.String()
}
