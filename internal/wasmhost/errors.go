package wasmhost

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMemory indicates the guest exports no memory.
	ErrNoMemory = errors.New("guest exports no memory")

	// ErrNoExport indicates a required guest export is missing.
	ErrNoExport = errors.New("guest export not found")

	// ErrOutOfBounds indicates a pointer outside guest memory.
	ErrOutOfBounds = errors.New("guest memory access out of bounds")

	// ErrUnterminated indicates a string without a NUL terminator.
	ErrUnterminated = errors.New("unterminated guest string")

	// ErrAllocFailed indicates the guest malloc returned NULL.
	ErrAllocFailed = errors.New("guest allocation failed")
)

// TrapError aborts the guest call that invoked Op.
type TrapError struct {
	Op  string
	Err error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TrapError) Unwrap() error {
	return e.Err
}

// trap aborts the current guest call when err is not nil.
func trap(op string, err error) {
	if err != nil {
		panic(&TrapError{Op: op, Err: err})
	}
}
