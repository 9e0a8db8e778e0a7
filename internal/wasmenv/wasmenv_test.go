package wasmenv

import (
	"context"
	"errors"
	"testing"
)

type countingValidator struct {
	calls  int
	accept bool
}

func (v *countingValidator) Validate(context.Context, []byte) bool {
	v.calls++
	return v.accept
}

func TestUnknownFeature(t *testing.T) {
	p := NewProber(&countingValidator{})
	for _, f := range []Feature{-1, 3, 99} {
		if _, err := p.Supports(context.Background(), f); !errors.Is(err, ErrUnknownFeature) {
			t.Errorf("Supports(%d) error = %v, want ErrUnknownFeature", f, err)
		}
	}
}

func TestProberCaches(t *testing.T) {
	v := &countingValidator{accept: true}
	p := NewProber(v)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := p.Supports(ctx, SIMD)
		if err != nil || !ok {
			t.Fatalf("Supports(SIMD) = (%v, %v), want (true, nil)", ok, err)
		}
	}
	if v.calls != 1 {
		t.Errorf("validator calls = %d, want 1", v.calls)
	}
}

func TestProbeModuleIsCopy(t *testing.T) {
	a, _ := ProbeModule(BulkMemory)
	a[0] = 0xff
	b, _ := ProbeModule(BulkMemory)
	if b[0] != 0 {
		t.Error("ProbeModule returned shared storage")
	}
}

func TestWazeroValidator(t *testing.T) {
	p := NewProber(WazeroValidator{})
	ctx := context.Background()

	tests := []struct {
		f    Feature
		want bool
	}{
		{BulkMemory, true},
		{SIMD, true},
		{TailCall, false},
	}
	for _, tt := range tests {
		got, err := p.Supports(ctx, tt.f)
		if err != nil {
			t.Fatalf("Supports(%v) error = %v", tt.f, err)
		}
		if got != tt.want {
			t.Errorf("Supports(%v) = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		info CPUInfo
		want string
	}{
		{
			"none",
			CPUInfo{CPU: Brand, Brand: Brand},
			"GenericWebAssemblyVM (GenericWebAssemblyVM)",
		},
		{
			"all",
			CPUInfo{CPU: "WebAssemblyJavaScriptVM", Brand: Brand, BulkMemory: true, SIMD: true, TailCall: true},
			"WebAssemblyJavaScriptVM (GenericWebAssemblyVM), Bulk Memory, Fixed-Width SIMD, Tail Call Optimization",
		},
		{
			"simd only",
			CPUInfo{CPU: "x", Brand: Brand, SIMD: true},
			"x (GenericWebAssemblyVM), Fixed-Width SIMD",
		},
	}
	for _, tt := range tests {
		if got := tt.info.Summarize(); got != tt.want {
			t.Errorf("%s: Summarize() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	info := Detect(context.Background(), NewProber(&countingValidator{accept: true}))
	if info.Brand != Brand {
		t.Errorf("Brand = %q", info.Brand)
	}
	if info.LogicalCPUCount < 1 {
		t.Errorf("LogicalCPUCount = %d", info.LogicalCPUCount)
	}
	if !info.BulkMemory || !info.SIMD || !info.TailCall {
		t.Errorf("features = %+v, want all true", info)
	}
}
