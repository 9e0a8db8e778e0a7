//go:build !js

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/webshim/internal/config"
	"github.com/dshills/webshim/internal/httprequest"
	"github.com/dshills/webshim/internal/input/kbm"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/input/trace"
	"github.com/dshills/webshim/internal/logging"
	"github.com/dshills/webshim/internal/wasmenv"
	"github.com/dshills/webshim/internal/wasmhost"
	"github.com/dshills/webshim/internal/webadapter"
)

// statusInterval is how often watch refreshes the status line.
const statusInterval = 50 * time.Millisecond

// pollIntervalThreshold is the longest gap between polls reported as
// healthy. Cores poll once per frame.
const pollIntervalThreshold = 250 * time.Millisecond

// app carries what every command needs.
type app struct {
	cfg        *config.Config
	log        *logging.Logger
	console    *logging.ConsoleListener
	signals    *webadapter.Signals
	scriptPath string
	stdout     io.Writer
}

type command struct {
	usage   string
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"run":     {"run <core.wasm> [args...]", "Run a native core with the configured input host", (*app).runCore},
	"probe":   {"probe", "Report the WebAssembly features of the host VM", (*app).probe},
	"fetch":   {"fetch [-d data] [-H k:v] <url>", "Perform a synchronous request and print the body", (*app).fetch},
	"script":  {"script <file.lua>", "Drive the input device from a Lua script", (*app).script},
	"replay":  {"replay [-realtime] <trace.jsonl>", "Replay a trace and print every poll", (*app).replay},
	"watch":   {"watch", "Show the active inputs of the configured host", (*app).watch},
	"version": {"version", "Print version information", nil},
}

var commandOrder = []string{"run", "probe", "fetch", "script", "replay", "watch", "version"}

func usageError(format string, args ...any) error {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return errUsage
}

// runCore runs a core on its own goroutine while the input host runs on
// this one. Window hosts must own the main goroutine.
func (a *app) runCore(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("run needs a core module")
	}
	wasm, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading core: %w", err)
	}

	tr, err := openTracer(a.cfg.Trace())
	if err != nil {
		return err
	}
	defer a.closeTracer(tr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := a.cfg.Input()
	host, err := newHost(hostConfig{
		input:       input,
		listen:      a.cfg.Remote().Listen,
		tracer:      tr,
		scriptPath:  a.scriptPath,
		onInterrupt: func() { a.interrupt(cancel) },
		log:         a.log,
	})
	if err != nil {
		return err
	}
	defer host.Close()

	metrics := native.NewMetrics()
	defer a.logMetrics(metrics)

	envOpts := []wasmhost.Option{
		wasmhost.WithDocument(host.Document()),
		wasmhost.WithMetrics(metrics),
		wasmhost.WithSignals(a.signals),
		wasmhost.WithFetcher(webadapter.NewFetcher(webadapter.WithFetchLogger(a.log.Child("fetch")))),
		wasmhost.WithLogger(a.log.Child("wasmhost")),
	}
	runnerOpts := []wasmhost.RunnerOption{
		wasmhost.WithEntry(a.cfg.Core().Entry),
		wasmhost.WithArgs(append([]string{filepath.Base(args[0])}, args[1:]...)...),
		wasmhost.WithRunnerLogger(a.log.Child("runner")),
	}
	if input.Host == config.HostTerminal {
		// The terminal owns the tty, so core output goes to the status
		// line too.
		envOpts = append(envOpts, wasmhost.WithLogColored(func(msg, _ string) { host.SetStatus(msg) }))
		defer a.logToStatus(host)()
		runnerOpts = append(runnerOpts, wasmhost.WithStdio(strings.NewReader(""), io.Discard, io.Discard))
	}

	runner := wasmhost.NewRunner(wasmhost.NewEnv(envOpts...), runnerOpts...)

	done := make(chan error, 1)
	go func() {
		err := runner.Run(ctx, wasm)
		cancel()
		done <- err
	}()

	hostErr := host.Run(ctx)
	cancel()
	coreErr := <-done

	if errors.Is(coreErr, context.Canceled) {
		coreErr = nil
	}
	if coreErr != nil {
		return fmt.Errorf("core: %w", coreErr)
	}
	return hostErr
}

// interrupt raises SIGINT in the signal table and stops when the core has
// no handler installed.
func (a *app) interrupt(cancel context.CancelFunc) {
	if !a.signals.RaiseSIGINT() {
		cancel()
	}
}

// logToStatus shows log records on the host's status line while the
// terminal owns the tty. The returned func restores the console.
func (a *app) logToStatus(host inputHost) func() {
	a.log.SetListener(logging.NewConsoleListener(func(msg, _ string) { host.SetStatus(msg) }, false))
	return func() { a.log.SetListener(a.console) }
}

func (a *app) closeTracer(tr *tracer) {
	if err := tr.Close(); err != nil {
		a.log.Errorf("writing trace: %v", err)
	}
}

func (a *app) probe(ctx context.Context, _ []string) error {
	p := wasmenv.Default()
	info := wasmenv.Detect(ctx, p)
	fmt.Fprintln(a.stdout, info.Summarize())
	if info.HostModel != "" {
		fmt.Fprintf(a.stdout, "host: %s, %d logical CPUs\n", info.HostModel, info.LogicalCPUCount)
	}
	for _, f := range wasmenv.Features {
		ok, err := p.Supports(ctx, f)
		if err != nil {
			return err
		}
		mark := "no"
		if ok {
			mark = "yes"
		}
		fmt.Fprintf(a.stdout, "  %-24s %s\n", f.String()+":", mark)
	}
	return nil
}

// headerFlags collects repeated -H name:value flags.
type headerFlags httprequest.Headers

func (h headerFlags) String() string { return fmt.Sprint(map[string]string(h)) }

func (h headerFlags) Set(v string) error {
	name, value, ok := strings.Cut(v, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header %q is not name:value", v)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

func (a *app) fetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	data := fs.String("d", "", "Send data with a POST request")
	all := fs.Bool("all", false, "Accept any status, not only 200")
	headers := headerFlags{}
	fs.Var(headers, "H", "Request header name:value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return usageError("fetch needs exactly one url")
	}
	url := fs.Arg(0)

	fc := a.cfg.Fetch()
	opts := []httprequest.Option{httprequest.WithLogger(a.log.Child("http"))}
	if fc.CORSProxy != "" {
		opts = append(opts, httprequest.WithCORSProxy(fc.CORSProxy))
	}
	progress := func(dlNow, dlTotal, _, _ float64) bool {
		a.log.Debugf("received %.0f of %.0f bytes", dlNow, dlTotal)
		return true
	}
	req := httprequest.New(fc.Timeout, progress, opts...)

	codes := httprequest.OkOnly
	if *all {
		codes = httprequest.All
	}

	var (
		body []byte
		err  error
	)
	if *data != "" {
		body, err = req.Post(ctx, url, []byte(*data), httprequest.Headers(headers), codes)
	} else {
		body, err = req.Get(ctx, url, httprequest.Headers(headers), codes)
	}
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(body)
	return err
}

// logMetrics reports what the input device saw.
func (a *app) logMetrics(m *native.Metrics) {
	snap := m.Snapshot()
	if snap.Polls == 0 && snap.KeyEvents+snap.PointerEvents+snap.WheelEvents == 0 {
		return
	}
	a.log.Infof("input: %s", snap)
	if h := m.HealthCheck(pollIntervalThreshold); !h.Healthy {
		a.log.Warnf("input: %s (peak poll interval %v)", h.Message, h.PeakInterval)
	}
}

// bindKeyboardMouse sets up the named-control device on host.
func (a *app) bindKeyboardMouse(host inputHost) (*kbm.KeyboardMouse, error) {
	metrics := native.NewMetrics()
	km, err := kbm.Setup(host.Document(), a.cfg.Input().Selector,
		native.WithLogger(a.log.Child("input")),
		native.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("binding input: %w", err)
	}
	return km, nil
}

// script runs a Lua file against the script host. poll() in the script
// polls the bound device.
func (a *app) script(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("script needs exactly one Lua file")
	}

	tr, err := openTracer(a.cfg.Trace())
	if err != nil {
		return err
	}
	defer a.closeTracer(tr)

	input := a.cfg.Input()
	input.Host = config.HostScript

	var km *kbm.KeyboardMouse
	host, err := newHost(hostConfig{
		input:      input,
		tracer:     tr,
		scriptPath: args[0],
		scriptPoll: func() (native.State, error) {
			tr.Poll()
			if err := km.UpdateInput(); err != nil {
				return native.State{}, err
			}
			return km.Snapshot(), nil
		},
		log: a.log,
	})
	if err != nil {
		return err
	}
	defer host.Close()

	if km, err = a.bindKeyboardMouse(host); err != nil {
		return err
	}
	defer km.Close()
	defer a.logMetrics(km.Device().Metrics())

	return host.Run(ctx)
}

func (a *app) replay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	realtime := fs.Bool("realtime", false, "Wait between records as recorded")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return usageError("replay needs exactly one trace file")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	input := a.cfg.Input()
	input.Host = config.HostHeadless
	host, err := newHost(hostConfig{input: input, log: a.log})
	if err != nil {
		return err
	}
	km, err := a.bindKeyboardMouse(host)
	if err != nil {
		return err
	}
	defer km.Close()

	var pollErr error
	p := trace.NewReplayer(host.Element())
	p.Realtime = *realtime
	p.OnPoll = func(line int) {
		if err := km.UpdateInput(); err != nil {
			pollErr = err
			return
		}
		fmt.Fprintf(a.stdout, "%d %s\n", line, trace.Snapshot(km.Snapshot()))
	}

	n, err := p.Replay(ctx, f)
	if err != nil {
		return err
	}
	if pollErr != nil {
		return pollErr
	}
	a.log.Infof("replayed %d records", n)
	return nil
}

// watch shows the active controls of the configured host until it stops.
func (a *app) watch(ctx context.Context, _ []string) error {
	tr, err := openTracer(a.cfg.Trace())
	if err != nil {
		return err
	}
	defer a.closeTracer(tr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var km *kbm.KeyboardMouse
	host, err := newHost(hostConfig{
		input:       a.cfg.Input(),
		listen:      a.cfg.Remote().Listen,
		tracer:      tr,
		scriptPath:  a.scriptPath,
		onInterrupt: cancel,
		remotePoll: func() (string, error) {
			if err := km.UpdateInput(); err != nil {
				return "", err
			}
			return trace.Snapshot(km.Snapshot()), nil
		},
		log: a.log,
	})
	if err != nil {
		return err
	}
	defer host.Close()

	if km, err = a.bindKeyboardMouse(host); err != nil {
		return err
	}
	defer km.Close()
	defer a.logMetrics(km.Device().Metrics())

	switch a.cfg.Input().Host {
	case config.HostRemote:
	case config.HostTerminal:
		defer a.logToStatus(host)()
		fallthrough
	default:
		go a.showActive(ctx, host, km, tr)
	}
	return host.Run(ctx)
}

// showActive polls km and shows its active controls on the status line.
func (a *app) showActive(ctx context.Context, host inputHost, km *kbm.KeyboardMouse, tr *tracer) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		tr.Poll()
		if err := km.UpdateInput(); err != nil {
			a.log.Errorf("polling input: %v", err)
			return
		}
		active := strings.Join(km.Active(), " ")
		if active == "" {
			active = "(no input)"
		}
		if active != last {
			host.SetStatus(active)
			last = active
		}
	}
}
