//go:build js && wasm

package webadapter

import "syscall/js"

// LogColored writes msg to the browser console in a CSS color.
func LogColored(msg, color string) {
	js.Global().Get("console").Call("log", "%c"+msg, "color:"+color)
}
