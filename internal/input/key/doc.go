// Package key provides DOM virtual key codes and key names for the input system.
//
// Browsers report keys through KeyboardEvent.keyCode. The input aggregator
// tracks the first 256 codes; this package names them and lists the subset
// that is exposed as named inputs to the native core:
//
//	for i, k := range key.NamedKeys() {
//	    fmt.Println(i, k.Code, k.Name)
//	}
//
// # Names
//
// Names follow the native core's input naming ("A", "F1", "Keypad 1",
// "Left Shift", "Tilde"). Parse accepts any of them case-insensitively.
package key
