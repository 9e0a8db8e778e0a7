package kbm

import (
	"math"
	"testing"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

func setup(t *testing.T) (*KeyboardMouse, *memhost.Element) {
	t.Helper()
	doc, el := memhost.NewSurface("#surface", 200, 100)
	km, err := Setup(doc, "#surface", native.WithLogger(logging.Discard))
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { km.Close() })
	return km, el
}

func TestSetupIsSingleton(t *testing.T) {
	km, _ := setup(t)

	doc, _ := memhost.NewSurface("#other", 10, 10)
	again, err := Setup(doc, "#other")
	if err != nil {
		t.Fatalf("second Setup() error = %v", err)
	}
	if again != km {
		t.Error("second Setup() created a new device")
	}
	if Current() != km {
		t.Error("Current() does not return the device")
	}
}

func TestCloseAllowsSetup(t *testing.T) {
	km, el := setup(t)
	if err := km.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if el.TotalListeners() != 0 {
		t.Errorf("listeners after Close = %d, want 0", el.TotalListeners())
	}
	if Current() != nil {
		t.Error("Current() not cleared by Close")
	}

	next, _ := setup(t)
	if next == km {
		t.Error("Setup after Close returned the closed device")
	}
}

func TestInputNames(t *testing.T) {
	km, _ := setup(t)
	inputs := km.Inputs()

	named := key.NamedKeys()
	if len(inputs) != len(named)+13 {
		t.Fatalf("len(Inputs) = %d, want %d", len(inputs), len(named)+13)
	}
	if inputs[0].Name() != named[0].Name {
		t.Errorf("first input = %q, want %q", inputs[0].Name(), named[0].Name)
	}

	tail := []string{
		"Click 0", "Click 1", "Click 2",
		"Cursor X-", "Cursor X+", "Cursor Y-", "Cursor Y+",
		"Axis X-", "Axis X+", "Axis Y-", "Axis Y+",
		"Axis Z-", "Axis Z+",
	}
	for i, want := range tail {
		if got := inputs[len(named)+i].Name(); got != want {
			t.Errorf("input %d = %q, want %q", len(named)+i, got, want)
		}
	}

	if km.Name() != "Keyboard Mouse" || km.Source() != "HTML5" {
		t.Errorf("identity = %q/%q", km.Name(), km.Source())
	}
}

func state(t *testing.T, km *KeyboardMouse, name string) float64 {
	t.Helper()
	in, ok := km.Input(name)
	if !ok {
		t.Fatalf("no input %q", name)
	}
	return in.State()
}

func TestKeyAndButtonStates(t *testing.T) {
	km, el := setup(t)

	el.Dispatch(native.Event{Type: native.EventKeyDown, KeyCode: int(key.CodeShift)})
	el.Dispatch(native.Event{Type: native.EventMouseDown, ClientX: 100, ClientY: 50, Buttons: mouse.ButtonRight})

	if err := km.UpdateInput(); err != nil {
		t.Fatalf("UpdateInput() error = %v", err)
	}
	if got := state(t, km, "Left Shift"); got != 1 {
		t.Errorf("Left Shift = %v, want 1", got)
	}
	if got := state(t, km, "Click 1"); got != 1 {
		t.Errorf("Click 1 = %v, want 1", got)
	}
	if got := state(t, km, "Click 0"); got != 0 {
		t.Errorf("Click 0 = %v, want 0", got)
	}

	active := km.Active()
	if len(active) != 2 || active[0] != "Left Shift" || active[1] != "Click 1" {
		t.Errorf("Active() = %v, want [Left Shift Click 1]", active)
	}

	km.UpdateInput()
	if got := state(t, km, "Left Shift"); got != 0 {
		t.Errorf("Left Shift on second update = %v, want 0", got)
	}
	if got := state(t, km, "Click 1"); got != 1 {
		t.Errorf("Click 1 on second update = %v, want 1", got)
	}
}

func TestCursorAndAxes(t *testing.T) {
	km, el := setup(t)

	// (150, 25) normalizes to (0.5, -0.5).
	el.Dispatch(native.Event{Type: native.EventMouseMove, ClientX: 150, ClientY: 25})
	el.Dispatch(native.Event{Type: native.EventWheel, ClientX: 150, ClientY: 25, DeltaY: -3})
	km.UpdateInput()

	tests := []struct {
		name string
		want float64
	}{
		{"Cursor X+", 0.5},
		{"Cursor X-", -0.5},
		{"Cursor Y+", -0.5},
		{"Cursor Y-", 0.5},
		// The wheel event repeats the position, so the pointer delta is zero.
		{"Axis X+", 0},
		{"Axis Z-", 1},
		{"Axis Z+", -1},
	}
	for _, tt := range tests {
		if got := state(t, km, tt.name); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAxisSensitivity(t *testing.T) {
	km, el := setup(t)

	// A move of 1 pixel over 200 is a normalized delta of 0.01, smoothed to 0.015.
	el.Dispatch(native.Event{Type: native.EventMouseMove, ClientX: 100, ClientY: 50})
	km.UpdateInput()
	el.Dispatch(native.Event{Type: native.EventMouseMove, ClientX: 101, ClientY: 50})
	km.UpdateInput()

	want := 0.015 / NormMouseAxisSensitivity
	if got := state(t, km, "Axis X+"); math.Abs(got-want) > 1e-5 {
		t.Errorf("Axis X+ = %v, want %v", got, want)
	}
	if got := state(t, km, "Axis X-"); math.Abs(got+want) > 1e-5 {
		t.Errorf("Axis X- = %v, want %v", got, -want)
	}
}
