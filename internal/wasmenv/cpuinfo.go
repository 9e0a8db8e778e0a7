package wasmenv

import (
	"context"
	"strings"
)

// Brand is the brand string reported for every WebAssembly VM.
const Brand = "GenericWebAssemblyVM"

// CPUInfo describes the VM a core runs on.
type CPUInfo struct {
	// CPU names the VM.
	CPU string
	// Brand is always Brand.
	Brand string
	// HostModel is the host processor model when it can be read.
	HostModel string

	NumCores        int
	LogicalCPUCount int

	BulkMemory bool
	SIMD       bool
	TailCall   bool
}

// Detect fills a CPUInfo using p for the feature flags.
func Detect(ctx context.Context, p *Prober) CPUInfo {
	info := CPUInfo{
		Brand:    Brand,
		NumCores: 1,
	}
	info.CPU, info.HostModel, info.LogicalCPUCount = hostCPU(ctx)
	if info.CPU == "" {
		info.CPU = Brand
	}
	if info.LogicalCPUCount < 1 {
		info.LogicalCPUCount = 1
	}

	// Known features cannot fail.
	info.BulkMemory, _ = p.Supports(ctx, BulkMemory)
	info.SIMD, _ = p.Supports(ctx, SIMD)
	info.TailCall, _ = p.Supports(ctx, TailCall)
	return info
}

// Summarize renders the info as "cpu (brand), feature, ...".
func (c CPUInfo) Summarize() string {
	var b strings.Builder
	b.WriteString(c.CPU)
	b.WriteString(" (")
	b.WriteString(c.Brand)
	b.WriteString(")")
	if c.BulkMemory {
		b.WriteString(", " + BulkMemory.String())
	}
	if c.SIMD {
		b.WriteString(", " + SIMD.String())
	}
	if c.TailCall {
		b.WriteString(", " + TailCall.String())
	}
	return b.String()
}
