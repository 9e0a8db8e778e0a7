//go:build js && wasm

package webadapter

import "syscall/js"

// WindowPrompter uses window.alert and window.confirm.
type WindowPrompter struct{}

// Alert implements Prompter.
func (WindowPrompter) Alert(msg string) {
	js.Global().Call("alert", msg)
}

// Confirm implements Prompter.
func (WindowPrompter) Confirm(msg string) bool {
	return js.Global().Call("confirm", msg).Truthy()
}

// hostPrompter uses the window dialogs in a browser. Workers and other
// window-less hosts log instead.
func hostPrompter() Prompter {
	if js.Global().Get("window").IsUndefined() {
		return LogPrompter{}
	}
	return WindowPrompter{}
}
