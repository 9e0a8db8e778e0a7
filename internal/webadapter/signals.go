package webadapter

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Pseudo-signal numbers.
const (
	SIGINT  = 2
	SIGTERM = 15
)

// SignalHandler receives the raised signal number.
type SignalHandler func(sig int)

// Signals is a table of one-shot signal handlers.
type Signals struct {
	mu       sync.Mutex
	handlers map[int]SignalHandler
}

// NewSignals creates an empty table.
func NewSignals() *Signals {
	return &Signals{handlers: make(map[int]SignalHandler)}
}

// Set installs h for sig, replacing any previous handler. A nil h clears
// the slot.
func (s *Signals) Set(sig int, h SignalHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.handlers, sig)
		return
	}
	s.handlers[sig] = h
}

// Handled reports whether a handler is installed for sig.
func (s *Signals) Handled(sig int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handlers[sig]
	return ok
}

// Raise invokes and clears the handler for sig. It reports whether a
// handler ran. The slot is cleared before the handler runs, so the
// handler may install a replacement.
func (s *Signals) Raise(sig int) bool {
	s.mu.Lock()
	h := s.handlers[sig]
	delete(s.handlers, sig)
	s.mu.Unlock()

	if h == nil {
		return false
	}
	h(sig)
	return true
}

// RaiseSIGINT raises SIGINT.
func (s *Signals) RaiseSIGINT() bool { return s.Raise(SIGINT) }

// RaiseSIGTERM raises SIGTERM.
func (s *Signals) RaiseSIGTERM() bool { return s.Raise(SIGTERM) }

// Notify forwards process interrupts and terminations into the table
// until ctx is done. When no handler is installed for a received signal,
// unhandled is called with it.
func (s *Signals) Notify(ctx context.Context, unhandled func(os.Signal)) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				num := SIGINT
				if sig == syscall.SIGTERM {
					num = SIGTERM
				}
				if !s.Raise(num) && unhandled != nil {
					unhandled(sig)
				}
			}
		}
	}()
}
