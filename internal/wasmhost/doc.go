// Package wasmhost runs a native core compiled to WebAssembly under wazero
// and provides the imports it expects from its JavaScript glue.
//
// Env builds the "env" host module:
//
//	WasmEnv_SupportsFeature(feature i32) i32
//	WebAdapter_LogColored(msg, color i32)
//	WebAdapter_EncodeURIComponent(str i32) i32
//	WebAdapter_GetUserAgent() i32
//	WebAdapter_DisplayAlert(msg, useConfirm i32) i32
//	WebAdapter_FetchSync(verb, url, headers, timeoutMs, outData, outSize,
//	                     payload, payloadSize, progressCb, userData i32) i32
//	WebAdapter_SetSignalHandler(sig, handler i32)
//	HTML5NativeInput_SetupKeyboardMouseDevice(selector i32)
//	HTML5NativeInput_RemoveKeyboardMouseDevice()
//	HTML5NativeInput_GetKeyboardMouseInputState(cursorX, cursorY, buttons, axes, keyboard i32)
//
// Pointers are offsets into the guest's exported memory. Strings are
// NUL-terminated UTF-8. Buffers returned to the guest are allocated with
// its exported malloc and belong to the guest. Function pointers are
// called through the guest's dynCall_iidd and dynCall_vi exports.
//
// Usage errors, such as binding a second input device or polling without
// one, abort the calling guest operation with a TrapError.
//
// Signal handlers installed by the guest are queued when raised and run at
// the guest's next call into env, since a wazero module must not be
// entered from two goroutines at once.
package wasmhost
