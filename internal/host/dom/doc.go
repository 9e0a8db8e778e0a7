// Package dom binds the input aggregator to the browser DOM.
//
// Document and Element wrap syscall/js values. Listeners are registered
// through addEventListener with js.FuncOf callbacks that convert the
// browser event and call preventDefault when the listener asks for it.
// The package only builds for js/wasm.
package dom
