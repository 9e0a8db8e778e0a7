//go:build !(js && wasm)

package wasmenv

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// WazeroValidator compiles modules with wazero.
type WazeroValidator struct {
	Features api.CoreFeatures
}

// Validate implements Validator.
func (v WazeroValidator) Validate(ctx context.Context, module []byte) bool {
	features := v.Features
	if features == 0 {
		features = api.CoreFeaturesV2
	}
	cfg := wazero.NewRuntimeConfigInterpreter().WithCoreFeatures(features)
	r := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, module)
	if err != nil {
		return false
	}
	_ = compiled.Close(ctx)
	return true
}

func hostValidator() Validator {
	return WazeroValidator{Features: api.CoreFeaturesV2}
}
