//go:build !(js && wasm)

package webadapter

import (
	"os"
	"sync"
)

var (
	consoleOnce sync.Once
	console     *Console
)

// DefaultConsole returns the process console on standard output.
func DefaultConsole() *Console {
	consoleOnce.Do(func() {
		console = NewConsole(os.Stdout)
	})
	return console
}

// LogColored writes msg to the process console in a CSS color.
func LogColored(msg, color string) {
	DefaultConsole().LogColored(msg, color)
}
