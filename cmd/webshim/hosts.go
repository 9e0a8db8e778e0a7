//go:build !js

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/webshim/internal/config"
	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/host/remote"
	"github.com/dshills/webshim/internal/host/script"
	"github.com/dshills/webshim/internal/host/term"
	"github.com/dshills/webshim/internal/host/window"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/input/trace"
	"github.com/dshills/webshim/internal/logging"
)

// headlessSize is the element size of hosts without a real surface.
const (
	headlessWidth  = 640
	headlessHeight = 480
)

// inputHost is an event source feeding an in-memory element.
type inputHost interface {
	Document() native.Document
	Element() *memhost.Element

	// Run delivers events until ctx is done or the source ends.
	Run(ctx context.Context) error

	// SetStatus shows a line of text where the host can.
	SetStatus(text string)

	Close()
}

// hostConfig selects and configures an input host.
type hostConfig struct {
	input  config.InputConfig
	listen string

	// tracer records every delivered event when not nil.
	tracer *tracer

	// scriptPath is the Lua file run by the script host.
	scriptPath string
	scriptPoll script.PollFunc

	// remotePoll answers poll messages on the remote host.
	remotePoll remote.PollFunc

	// onInterrupt handles Ctrl+C in the terminal host.
	onInterrupt func()

	log *logging.Logger
}

// tracer records delivered input to a JSON Lines file.
type tracer struct {
	f   *os.File
	rec *trace.Recorder
}

// openTracer creates the trace file named in cfg. It returns nil when
// tracing is off.
func openTracer(cfg config.TraceConfig) (*tracer, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("creating trace: %w", err)
	}
	return &tracer{f: f}, nil
}

// wrapper returns the surface wrapper installing the recorder, or nil.
func (t *tracer) wrapper() func(memhost.Surface) memhost.Surface {
	if t == nil {
		return nil
	}
	return func(next memhost.Surface) memhost.Surface {
		t.rec = trace.NewRecorder(t.f, next)
		return t.rec
	}
}

// Poll records a poll.
func (t *tracer) Poll() {
	if t != nil && t.rec != nil {
		t.rec.Poll()
	}
}

func (t *tracer) Close() error {
	if t == nil {
		return nil
	}
	var err error
	if t.rec != nil {
		err = t.rec.Err()
	}
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// newHost builds the host selected by hc.input.Host.
func newHost(hc hostConfig) (inputHost, error) {
	sel := hc.input.Selector
	log := hc.log
	wrap := hc.tracer.wrapper()

	switch hc.input.Host {
	case config.HostTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("opening terminal: %w", err)
		}
		opts := []term.Option{
			term.WithKeyRelease(hc.input.KeyRelease),
			term.WithLogger(log.Child("term")),
		}
		if wrap != nil {
			opts = append(opts, term.WithSurface(wrap))
		}
		if hc.onInterrupt != nil {
			opts = append(opts, term.WithInterrupt(hc.onInterrupt))
		}
		h := term.New(screen, sel, opts...)
		if err := h.Init(); err != nil {
			return nil, fmt.Errorf("initializing terminal: %w", err)
		}
		return h, nil

	case config.HostWindow:
		opts := []window.Option{
			window.WithTitle("webshim " + sel),
			window.WithPointerLockOnClick(true),
			window.WithLogger(log.Child("window")),
		}
		if wrap != nil {
			opts = append(opts, window.WithSurface(wrap))
		}
		return windowHost{window.New(sel, opts...)}, nil

	case config.HostRemote:
		opts := []remote.Option{
			remote.WithSize(headlessWidth, headlessHeight),
			remote.WithLogger(log.Child("remote")),
		}
		if wrap != nil {
			opts = append(opts, remote.WithSurface(wrap))
		}
		if hc.remotePoll != nil {
			opts = append(opts, remote.WithPoll(hc.remotePoll))
		}
		return &remoteHost{srv: remote.New(sel, opts...), addr: hc.listen, log: log}, nil

	case config.HostScript:
		if hc.scriptPath == "" {
			return nil, fmt.Errorf("%w: the script host needs a script file", errUsage)
		}
		opts := []script.Option{
			script.WithSize(headlessWidth, headlessHeight),
			script.WithLogger(log.Child("script")),
		}
		if wrap != nil {
			opts = append(opts, script.WithSurface(wrap))
		}
		if hc.scriptPoll != nil {
			opts = append(opts, script.WithPoll(hc.scriptPoll))
		}
		return &scriptHost{h: script.New(sel, opts...), path: hc.scriptPath}, nil

	case config.HostHeadless:
		doc, el := memhost.NewSurface(sel, headlessWidth, headlessHeight)
		return headlessHost{doc: doc, el: el}, nil

	default:
		return nil, fmt.Errorf("unknown input host %q", hc.input.Host)
	}
}

type windowHost struct{ *window.Host }

func (windowHost) Close() {}

type remoteHost struct {
	srv    *remote.Server
	addr   string
	log    *logging.Logger
	status string
}

func (h *remoteHost) Document() native.Document { return h.srv.Document() }
func (h *remoteHost) Element() *memhost.Element { return h.srv.Element() }
func (h *remoteHost) Close()                    {}

func (h *remoteHost) Run(ctx context.Context) error {
	h.log.Noticef("remote input listening on %s", h.addr)
	return h.srv.ListenAndServe(ctx, h.addr)
}

// SetStatus logs status changes at debug level; the page shows its own.
func (h *remoteHost) SetStatus(text string) {
	if text != h.status {
		h.status = text
		h.log.Debugf("status: %s", text)
	}
}

type scriptHost struct {
	h    *script.Host
	path string
}

func (s *scriptHost) Document() native.Document     { return s.h.Document() }
func (s *scriptHost) Element() *memhost.Element     { return s.h.Element() }
func (s *scriptHost) Run(ctx context.Context) error { return s.h.RunFile(ctx, s.path) }
func (s *scriptHost) SetStatus(string)              {}
func (s *scriptHost) Close()                        { s.h.Close() }

type headlessHost struct {
	doc *memhost.Document
	el  *memhost.Element
}

func (h headlessHost) Document() native.Document { return h.doc }
func (h headlessHost) Element() *memhost.Element { return h.el }
func (headlessHost) SetStatus(string)            {}
func (headlessHost) Close()                      {}

func (headlessHost) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
