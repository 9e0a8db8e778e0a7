package webadapter

import (
	"sync"

	"github.com/dshills/webshim/internal/logging"
)

// Prompter shows blocking messages to the user.
type Prompter interface {
	// Alert shows msg and waits for it to be dismissed.
	Alert(msg string)

	// Confirm shows msg and reports whether the user accepted.
	Confirm(msg string) bool
}

var (
	prompterMu sync.RWMutex
	prompter   Prompter
)

// SetPrompter replaces the prompter used by DisplayAlert. Nil restores
// the host default.
func SetPrompter(p Prompter) {
	prompterMu.Lock()
	defer prompterMu.Unlock()
	prompter = p
}

func currentPrompter() Prompter {
	prompterMu.RLock()
	p := prompter
	prompterMu.RUnlock()
	if p != nil {
		return p
	}
	return hostPrompter()
}

// DisplayAlert shows msg in a blocking prompt. With confirm set the user
// may accept or decline, and the result is true only if they accepted.
// A plain alert always reports false.
func DisplayAlert(msg string, confirm bool) bool {
	p := currentPrompter()
	if confirm {
		return p.Confirm(msg)
	}
	p.Alert(msg)
	return false
}

// LogPrompter writes prompts to a logger. It never confirms.
type LogPrompter struct {
	Log *logging.Logger
}

// Alert implements Prompter.
func (p LogPrompter) Alert(msg string) {
	p.logger().Errorf("%s", msg)
}

// Confirm implements Prompter.
func (p LogPrompter) Confirm(msg string) bool {
	p.logger().Errorf("%s", msg)
	return false
}

func (p LogPrompter) logger() *logging.Logger {
	if p.Log == nil {
		return logging.Default().Child("alert")
	}
	return p.Log
}
