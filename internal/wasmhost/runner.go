package wasmhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/emscripten"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/dshills/webshim/internal/logging"
)

// DefaultEntry is the start function run when none is configured.
const DefaultEntry = "_start"

// Runner compiles and runs a core module.
type Runner struct {
	env    *Env
	entry  string
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	config wazero.RuntimeConfig
	log    *logging.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEntry sets the start function. An empty name runs no start function.
func WithEntry(name string) RunnerOption {
	return func(r *Runner) { r.entry = name }
}

// WithArgs sets the guest's argv, including argv[0].
func WithArgs(args ...string) RunnerOption {
	return func(r *Runner) { r.args = args }
}

// WithStdio sets the guest's standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdin, r.stdout, r.stderr = stdin, stdout, stderr
	}
}

// WithRuntimeConfig replaces the wazero runtime configuration.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) RunnerOption {
	return func(r *Runner) { r.config = cfg }
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// NewRunner creates a runner providing env to the guest.
func NewRunner(env *Env, opts ...RunnerOption) *Runner {
	r := &Runner{
		env:    env,
		entry:  DefaultEntry,
		args:   []string{"core"},
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		config: wazero.NewRuntimeConfig().
			WithCoreFeatures(api.CoreFeaturesV2).
			WithCloseOnContextDone(true),
		log: logging.Default().Child("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compiles wasm, links WASI and env, and runs the entry function until
// it returns, the guest exits or ctx is done. A zero exit code is success.
func (r *Runner) Run(ctx context.Context, wasm []byte) error {
	rt := wazero.NewRuntimeWithConfig(ctx, r.config)
	defer rt.Close(ctx)
	defer r.env.Close()

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fmt.Errorf("instantiating wasi: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return fmt.Errorf("compiling core: %w", err)
	}

	invokes, err := emscripten.NewFunctionExporterForModule(compiled)
	if err != nil {
		return fmt.Errorf("linking emscripten imports: %w", err)
	}
	if _, err := r.env.Instantiate(ctx, rt, emscripten.NewFunctionExporter(), invokes); err != nil {
		return fmt.Errorf("instantiating env: %w", err)
	}

	cfg := wazero.NewModuleConfig().
		WithName("core").
		WithArgs(r.args...).
		WithStdin(r.stdin).
		WithStdout(r.stdout).
		WithStderr(r.stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep().
		WithStartFunctions()

	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return exitError(err)
	}
	defer mod.Close(ctx)

	if r.entry == "" {
		return nil
	}
	fn := mod.ExportedFunction(r.entry)
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNoExport, r.entry)
	}
	r.log.Debugf("running %s", r.entry)
	_, err = fn.Call(ctx)
	return exitError(err)
}

// exitError maps a WASI exit to its outcome. Exit code zero is success and
// a closed context reports the context error.
func exitError(err error) error {
	var exit *sys.ExitError
	if !errors.As(err, &exit) {
		return err
	}
	switch exit.ExitCode() {
	case 0:
		return nil
	case sys.ExitCodeContextCanceled:
		return context.Canceled
	case sys.ExitCodeDeadlineExceeded:
		return context.DeadlineExceeded
	}
	return err
}
