// Package wasmenv reports which WebAssembly proposals the host VM accepts.
//
// Each Feature is detected by validating a minimal module that uses one
// instruction from the proposal. In a browser the module is handed to
// WebAssembly.validate. Natively it is compiled by wazero with the
// WebAssembly 2.0 core feature set, which is the VM a native core runs on.
// Results are cached per feature for the life of the process.
package wasmenv

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Feature identifies a WebAssembly proposal.
type Feature int32

const (
	// BulkMemory is the bulk memory operations proposal.
	BulkMemory Feature = 0
	// SIMD is the fixed-width SIMD proposal.
	SIMD Feature = 1
	// TailCall is the tail call proposal.
	TailCall Feature = 2
)

// Features lists every known feature in id order.
var Features = []Feature{BulkMemory, SIMD, TailCall}

// ErrUnknownFeature is returned for an id outside Features.
var ErrUnknownFeature = errors.New("invalid feature id")

// String returns the feature's display name.
func (f Feature) String() string {
	switch f {
	case BulkMemory:
		return "Bulk Memory"
	case SIMD:
		return "Fixed-Width SIMD"
	case TailCall:
		return "Tail Call Optimization"
	default:
		return fmt.Sprintf("Feature(%d)", int32(f))
	}
}

// Probe modules, each a function of type [] -> [] using one instruction.
var probes = map[Feature][]byte{
	// memory.copy over a one-page memory.
	BulkMemory: {0, 97, 115, 109, 1, 0, 0, 0, 1, 4, 1, 96, 0, 0, 3, 2, 1, 0, 5, 3, 1, 0, 1, 10, 14, 1, 12, 0, 65, 0, 65, 0, 65, 0, 252, 10, 0, 0, 11},
	// i8x16.splat then drop.
	SIMD: {0, 97, 115, 109, 1, 0, 0, 0, 1, 4, 1, 96, 0, 0, 3, 2, 1, 0, 10, 9, 1, 7, 0, 65, 0, 253, 15, 26, 11},
	// return_call to itself.
	TailCall: {0, 97, 115, 109, 1, 0, 0, 0, 1, 4, 1, 96, 0, 0, 3, 2, 1, 0, 10, 6, 1, 4, 0, 18, 0, 11},
}

// ProbeModule returns a copy of the detection module for f.
func ProbeModule(f Feature) ([]byte, error) {
	p, ok := probes[f]
	if !ok {
		return nil, fmt.Errorf("%w %d provided", ErrUnknownFeature, int32(f))
	}
	return append([]byte(nil), p...), nil
}

// Validator reports whether a VM accepts a binary module.
type Validator interface {
	Validate(ctx context.Context, module []byte) bool
}

// Prober caches validation results per feature.
type Prober struct {
	v Validator

	mu    sync.Mutex
	cache map[Feature]bool
}

// NewProber creates a prober backed by v.
func NewProber(v Validator) *Prober {
	return &Prober{v: v, cache: make(map[Feature]bool)}
}

// Supports reports whether the VM accepts f.
func (p *Prober) Supports(ctx context.Context, f Feature) (bool, error) {
	mod, err := ProbeModule(f)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ok, cached := p.cache[f]; cached {
		return ok, nil
	}
	ok := p.v.Validate(ctx, mod)
	p.cache[f] = ok
	return ok, nil
}

var (
	defaultOnce   sync.Once
	defaultProber *Prober
)

// Default returns the prober for the host VM.
func Default() *Prober {
	defaultOnce.Do(func() {
		defaultProber = NewProber(hostValidator())
	})
	return defaultProber
}

// Supports reports whether the host VM accepts f.
func Supports(ctx context.Context, f Feature) (bool, error) {
	return Default().Supports(ctx, f)
}
