package native

import "errors"

// Errors returned by device operations. All of them are usage errors.
var (
	// ErrAlreadyBound indicates a device is already bound in this process.
	ErrAlreadyBound = errors.New("native input: a keyboard and mouse device is already bound")

	// ErrNotBound indicates the device is not bound.
	ErrNotBound = errors.New("native input: no keyboard and mouse device is bound")

	// ErrNoElement indicates the selector did not resolve to an element.
	ErrNoElement = errors.New("native input: no element matches selector")

	// ErrNoDocument indicates a nil document was passed to Bind.
	ErrNoDocument = errors.New("native input: no document")
)
