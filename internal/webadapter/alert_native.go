//go:build !(js && wasm)

package webadapter

import (
	"os"
	"runtime"

	"github.com/sqweek/dialog"
)

// DialogTitle is the title of native message boxes.
var DialogTitle = "webshim"

// DialogPrompter shows native message boxes.
type DialogPrompter struct{}

// Alert implements Prompter.
func (DialogPrompter) Alert(msg string) {
	dialog.Message("%s", msg).Title(DialogTitle).Info()
}

// Confirm implements Prompter.
func (DialogPrompter) Confirm(msg string) bool {
	return dialog.Message("%s", msg).Title(DialogTitle).YesNo()
}

// hostPrompter uses message boxes when a display is available and logs
// otherwise.
func hostPrompter() Prompter {
	if hasDisplay() {
		return DialogPrompter{}
	}
	return LogPrompter{}
}

func hasDisplay() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	default:
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
}
