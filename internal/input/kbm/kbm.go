// Package kbm exposes a bound input device as named controls.
//
// A KeyboardMouse polls the aggregator once per UpdateInput and presents
// the snapshot as a flat list of inputs in a fixed order:
//
//	one Key per named key       "A", "F1", "Keypad 1", "Left Shift", ...
//	three buttons               "Click 0" (left), "Click 1" (right), "Click 2" (middle)
//	four cursor halves          "Cursor X-", "Cursor X+", "Cursor Y-", "Cursor Y+"
//	four pointer axes           "Axis X-", "Axis X+", "Axis Y-", "Axis Y+"
//	two wheel axes              "Axis Z-", "Axis Z+"
//
// Key inputs read 1 only on the poll that first observes a press, matching
// the aggregator's latch. Pointer axes are scaled so that a smoothed delta
// of NormMouseAxisSensitivity reads 1.
//
// At most one KeyboardMouse exists per process. Setup returns the existing
// one until it is closed.
package kbm

import (
	"sync"

	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
)

// NormMouseAxisSensitivity is the pointer axis delta that reads as full
// deflection.
const NormMouseAxisSensitivity = 0.04

// Device identity.
const (
	Name   = "Keyboard Mouse"
	Source = "HTML5"
)

// Input is one named control.
type Input interface {
	// Name is the control's display name.
	Name() string

	// State returns the value observed by the last UpdateInput.
	State() float64

	// Detectable reports whether the control should be offered when
	// detecting user input for a binding.
	Detectable() bool
}

// KeyboardMouse is the named-control view of the bound input device.
type KeyboardMouse struct {
	mu     sync.RWMutex
	dev    *native.Device
	state  native.State
	inputs []Input
}

var (
	setupMu sync.Mutex
	current *KeyboardMouse
)

// Setup binds the input device to selector and builds its controls. When
// a KeyboardMouse already exists it is returned unchanged.
func Setup(doc native.Document, selector string, opts ...native.Option) (*KeyboardMouse, error) {
	setupMu.Lock()
	defer setupMu.Unlock()

	if current != nil {
		return current, nil
	}

	dev, err := native.Bind(doc, selector, opts...)
	if err != nil {
		return nil, err
	}

	km := &KeyboardMouse{dev: dev}
	km.inputs = km.buildInputs()
	current = km
	return km, nil
}

// Current returns the live KeyboardMouse, or nil.
func Current() *KeyboardMouse {
	setupMu.Lock()
	defer setupMu.Unlock()
	return current
}

func (km *KeyboardMouse) buildInputs() []Input {
	named := key.NamedKeys()
	inputs := make([]Input, 0, len(named)+13)

	for _, k := range named {
		inputs = append(inputs, keyInput{km: km, code: k.Code, name: k.Name})
	}

	for i, b := range []mouse.Buttons{mouse.ButtonLeft, mouse.ButtonRight, mouse.ButtonMiddle} {
		inputs = append(inputs, buttonInput{km: km, index: i, bit: b})
	}

	for axis := 0; axis < 2; axis++ {
		inputs = append(inputs,
			cursorInput{km: km, index: axis, positive: false},
			cursorInput{km: km, index: axis, positive: true},
		)
	}

	for i := 0; i < 4; i++ {
		r := -NormMouseAxisSensitivity
		if i%2 == 1 {
			r = NormMouseAxisSensitivity
		}
		inputs = append(inputs, axisInput{km: km, index: i / 2, rng: r})
	}

	inputs = append(inputs,
		axisInput{km: km, index: native.AxisZ, rng: -1},
		axisInput{km: km, index: native.AxisZ, rng: 1},
	)
	return inputs
}

// Name returns "Keyboard Mouse".
func (km *KeyboardMouse) Name() string { return Name }

// Source returns "HTML5".
func (km *KeyboardMouse) Source() string { return Source }

// Device returns the underlying aggregator.
func (km *KeyboardMouse) Device() *native.Device { return km.dev }

// Inputs returns the controls in their fixed order.
func (km *KeyboardMouse) Inputs() []Input {
	out := make([]Input, len(km.inputs))
	copy(out, km.inputs)
	return out
}

// Input returns the control with the given name.
func (km *KeyboardMouse) Input(name string) (Input, bool) {
	for _, in := range km.inputs {
		if in.Name() == name {
			return in, true
		}
	}
	return nil, false
}

// UpdateInput polls the device once.
func (km *KeyboardMouse) UpdateInput() error {
	km.mu.Lock()
	defer km.mu.Unlock()
	return km.dev.PollInto(&km.state)
}

// Snapshot returns the state observed by the last UpdateInput.
func (km *KeyboardMouse) Snapshot() native.State {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.state
}

// Active returns the names of controls with a non-zero state.
func (km *KeyboardMouse) Active() []string {
	var names []string
	for _, in := range km.inputs {
		if in.Detectable() && in.State() > 0 {
			names = append(names, in.Name())
		}
	}
	return names
}

// Close unbinds the device and allows a new Setup.
func (km *KeyboardMouse) Close() error {
	setupMu.Lock()
	defer setupMu.Unlock()

	if current == km {
		current = nil
	}
	if km.dev.IsBound() {
		return km.dev.Unbind()
	}
	return nil
}
