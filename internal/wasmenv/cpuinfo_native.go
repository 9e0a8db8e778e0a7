//go:build !(js && wasm)

package wasmenv

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// NativeCPU names the wazero VM.
const NativeCPU = "WazeroWebAssemblyVM"

func hostCPU(ctx context.Context) (name, model string, logical int) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil || logical < 1 {
		logical = runtime.NumCPU()
	}
	if stats, err := cpu.InfoWithContext(ctx); err == nil && len(stats) > 0 {
		model = stats[0].ModelName
	}
	return NativeCPU, model, logical
}
