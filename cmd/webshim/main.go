//go:build !js

// Package main is the entry point for the webshim host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/dshills/webshim/internal/config"
	"github.com/dshills/webshim/internal/logging"
	"github.com/dshills/webshim/internal/webadapter"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage reports a malformed command line. Usage has already been printed.
var errUsage = errors.New("usage error")

type options struct {
	ConfigPath string
	Host       string
	Selector   string
	Listen     string
	LogLevel   string
	TracePath  string
	ScriptPath string
	NoColor    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, args := parseFlags()
	if len(args) == 0 {
		flag.Usage()
		return 2
	}
	if args[0] == "version" {
		printVersion()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log, console := setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first signal nobody handles stops the command; the next one
	// exits immediately.
	signals := webadapter.NewSignals()
	var stopping atomic.Bool
	signals.Notify(ctx, func(sig os.Signal) {
		if stopping.Swap(true) {
			os.Exit(130)
		}
		log.Noticef("received %v, shutting down", sig)
		cancel()
	})

	a := &app{
		cfg:        cfg,
		log:        log,
		console:    console,
		signals:    signals,
		scriptPath: opts.ScriptPath,
		stdout:     os.Stdout,
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		flag.Usage()
		return 2
	}
	if err := cmd.run(a, ctx, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (options, []string) {
	var opts options

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (default "+config.DefaultFile+")")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Host, "host", "", "Input host: terminal, window, remote, script or headless")
	flag.StringVar(&opts.Selector, "selector", "", "Element the input device binds to")
	flag.StringVar(&opts.Listen, "listen", "", "Address of the remote input endpoint")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.TracePath, "trace", "", "Record delivered input to a JSON Lines file")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua file driving input when the host is script")
	flag.BoolVar(&opts.NoColor, "no-color", false, "Disable colored console output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "webshim - browser capabilities for native WebAssembly cores\n\n")
		fmt.Fprintf(os.Stderr, "Usage: webshim [options] <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		for _, name := range commandOrder {
			fmt.Fprintf(os.Stderr, "  %-28s %s\n", commands[name].usage, commands[name].summary)
		}
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  webshim run core.wasm                 Run a core with terminal input\n")
		fmt.Fprintf(os.Stderr, "  webshim -host window run core.wasm    Run a core in a window\n")
		fmt.Fprintf(os.Stderr, "  webshim -trace in.jsonl watch         Show and record live input\n")
		fmt.Fprintf(os.Stderr, "  webshim replay in.jsonl               Print the polls of a trace\n")
	}

	flag.Parse()
	return opts, flag.Args()
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig(opts options) (*config.Config, error) {
	var cfgOpts []config.Option
	if opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithFile(opts.ConfigPath))
	}
	cfg := config.New(cfgOpts...)
	if err := cfg.Load(context.Background()); err != nil {
		return nil, err
	}

	overrides := map[string]string{
		"input.host":     opts.Host,
		"input.selector": opts.Selector,
		"remote.listen":  opts.Listen,
		"logging.level":  opts.LogLevel,
		"trace.path":     opts.TracePath,
	}
	for path, v := range overrides {
		if v == "" {
			continue
		}
		if err := cfg.Set(path, v); err != nil {
			return nil, err
		}
	}
	if opts.NoColor {
		if err := cfg.Set("logging.color", false); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// setupLogging installs the process logger. Records go to a colored
// console on standard error; standard output is left to command results.
func setupLogging(cfg *config.Config) (*logging.Logger, *logging.ConsoleListener) {
	lc := cfg.Logging()
	console := webadapter.NewConsole(os.Stderr)
	if !lc.Color {
		console.SetColor(false)
		webadapter.DefaultConsole().SetColor(false)
	}

	listener := logging.NewConsoleListener(console.LogColored, lc.Color)
	log := logging.New(logging.Config{
		Level:    logging.ParseLevel(lc.Level),
		Output:   os.Stderr,
		Prefix:   "webshim",
		Listener: listener,
	})
	logging.SetDefault(log)
	return log, listener
}

func printVersion() {
	fmt.Printf("webshim %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Built: %s\n", date)
}
