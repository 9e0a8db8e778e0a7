//go:build js && wasm

// Package main is the browser build of webshim. It binds the keyboard and
// mouse device to a page element and exposes polling to JavaScript.
package main

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/dshills/webshim/internal/host/dom"
	"github.com/dshills/webshim/internal/input/kbm"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/input/trace"
	"github.com/dshills/webshim/internal/logging"
	"github.com/dshills/webshim/internal/wasmenv"
	"github.com/dshills/webshim/internal/webadapter"
)

// Version information (set via ldflags during build).
var version = "dev"

var log *logging.Logger

func main() {
	log = logging.New(logging.Config{
		Level:    logging.LevelInfo,
		Prefix:   "webshim",
		Listener: logging.NewConsoleListener(webadapter.LogColored, true),
	})
	logging.SetDefault(log)
	log.Noticef("webshim %s loaded (%s)", version, webadapter.UserAgent())

	js.Global().Set("webshimSetupInput", js.FuncOf(setupInput))
	js.Global().Set("webshimRemoveInput", js.FuncOf(removeInput))
	js.Global().Set("webshimPollInput", js.FuncOf(pollInput))
	js.Global().Set("webshimActiveInputs", js.FuncOf(activeInputs))
	js.Global().Set("webshimRequestPointerLock", js.FuncOf(requestPointerLock))
	js.Global().Set("webshimSupports", js.FuncOf(supports))
	js.Global().Set("webshimCPU", js.FuncOf(cpu))
	js.Global().Set("webshimVersion", js.FuncOf(getVersion))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return version
}

func errorResult(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}

// setupInput binds the device to the element matching args[0].
func setupInput(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return map[string]interface{}{"error": "missing selector argument"}
	}
	km, err := kbm.Setup(dom.Global(), args[0].String(), native.WithLogger(log.Child("input")))
	if err != nil {
		return errorResult(err)
	}
	return map[string]interface{}{"status": "bound", "device": km.Device().ID()}
}

func removeInput(this js.Value, args []js.Value) interface{} {
	km := kbm.Current()
	if km == nil {
		return errorResult(native.ErrNotBound)
	}
	if err := km.Close(); err != nil {
		return errorResult(err)
	}
	return map[string]interface{}{"status": "removed"}
}

// pollInput polls the device and returns the snapshot as a JSON string.
func pollInput(this js.Value, args []js.Value) interface{} {
	km := kbm.Current()
	if km == nil {
		return errorResult(native.ErrNotBound)
	}
	if err := km.UpdateInput(); err != nil {
		return errorResult(err)
	}
	return trace.Snapshot(km.Snapshot())
}

// activeInputs returns the names of the controls active at the last poll.
func activeInputs(this js.Value, args []js.Value) interface{} {
	km := kbm.Current()
	if km == nil {
		return ""
	}
	return strings.Join(km.Active(), ",")
}

func requestPointerLock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return map[string]interface{}{"error": "missing selector argument"}
	}
	el, ok := dom.Global().QuerySelector(args[0].String()).(*dom.Element)
	if !ok || el == nil {
		return errorResult(fmt.Errorf("%w: %q", native.ErrNoElement, args[0].String()))
	}
	el.RequestPointerLock()
	return nil
}

func supports(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return map[string]interface{}{"error": "missing feature argument"}
	}
	ok, err := wasmenv.Supports(context.Background(), wasmenv.Feature(args[0].Int()))
	if err != nil {
		return errorResult(err)
	}
	return ok
}

func cpu(this js.Value, args []js.Value) interface{} {
	return wasmenv.Detect(context.Background(), wasmenv.Default()).Summarize()
}
