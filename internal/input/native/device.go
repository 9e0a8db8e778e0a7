package native

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/logging"
)

// The process-wide binding. At most one device is live at a time.
var (
	boundMu sync.Mutex
	bound   *Device
)

// Device aggregates keyboard and mouse events from one bound element.
type Device struct {
	mu sync.Mutex

	id       string
	selector string
	target   Element
	log      *logging.Logger
	metrics  *Metrics

	keys [key.NumCodes]KeyState

	// Last absolute pointer position in client pixels.
	lastX, lastY float64

	// Pointer position normalized over the element.
	normX, normY float64

	// Per-poll accumulators.
	axisX, axisY, axisZ float64

	buttons mouse.Buttons
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger used for binding diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(d *Device) {
		d.log = l
	}
}

// Bind creates a device on the element matching selector and registers its
// listeners. It fails if a device is already bound or the selector matches
// nothing.
func Bind(doc Document, selector string, opts ...Option) (*Device, error) {
	d := &Device{
		id:       uuid.NewString(),
		selector: selector,
		log:      logging.Default().Child("input"),
	}
	for _, opt := range opts {
		opt(d)
	}

	boundMu.Lock()
	defer boundMu.Unlock()

	if bound != nil {
		d.log.Errorf("attempted to set up a second keyboard and mouse device on %q (bound to %q)", selector, bound.selector)
		return nil, ErrAlreadyBound
	}
	if doc == nil {
		return nil, ErrNoDocument
	}

	target := doc.QuerySelector(selector)
	if target == nil {
		d.log.Errorf("no element with selector %q exists for the input device", selector)
		return nil, fmt.Errorf("%w: %q", ErrNoElement, selector)
	}

	d.target = target
	for _, t := range EventTypes {
		target.AddEventListener(t, d)
	}
	bound = d

	d.log.Debugf("keyboard and mouse device %s bound to %q", d.id, selector)
	return d, nil
}

// Bound returns the live device, or nil.
func Bound() *Device {
	boundMu.Lock()
	defer boundMu.Unlock()
	return bound
}

// Metrics returns the tracker set with WithMetrics, or nil.
func (d *Device) Metrics() *Metrics { return d.metrics }

// ID returns the device's unique session identifier.
func (d *Device) ID() string {
	return d.id
}

// Selector returns the selector the device was bound with.
func (d *Device) Selector() string {
	return d.selector
}

// IsBound reports whether the device is still bound.
func (d *Device) IsBound() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target != nil
}

// Unbind detaches the device's listeners and releases the process binding.
// Key and mouse state keep their last values.
func (d *Device) Unbind() error {
	boundMu.Lock()
	defer boundMu.Unlock()

	d.mu.Lock()
	target := d.target
	d.target = nil
	d.mu.Unlock()

	if target == nil {
		d.logger().Errorf("attempted to remove a keyboard and mouse device that is not bound")
		return ErrNotBound
	}

	for _, t := range EventTypes {
		target.RemoveEventListener(t, d)
	}
	if bound == d {
		bound = nil
	}

	d.logger().Debugf("keyboard and mouse device %s unbound", d.id)
	return nil
}

// Poll returns the device state and drains it: the axes are reset to zero
// and every reported key is latched until its next press.
func (d *Device) Poll() (State, error) {
	var s State
	err := d.PollInto(&s)
	return s, err
}

// PollInto is Poll writing into s. Every field of s is overwritten.
func (d *Device) PollInto(s *State) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.target == nil {
		d.logger().Errorf("attempted to query input from a keyboard and mouse device that is not bound")
		return ErrNotBound
	}
	d.metrics.recordPoll()

	s.CursorX = float32(d.normX)
	s.CursorY = float32(d.normY)
	s.Buttons = uint32(d.buttons)

	s.Axes[AxisX] = float32(d.axisX)
	s.Axes[AxisY] = float32(d.axisY)
	s.Axes[AxisZ] = float32(d.axisZ)
	d.axisX, d.axisY, d.axisZ = 0, 0, 0

	for i := range d.keys {
		k := &d.keys[i]
		if k.Held && !k.Reported {
			s.Keys[i] = 1
			k.Reported = true
		} else {
			s.Keys[i] = 0
		}
	}
	return nil
}

// KeyState returns the latch for c. Codes outside the table report zero.
func (d *Device) KeyState(c key.Code) KeyState {
	if !c.Valid() {
		return KeyState{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.keys[c]
}

// HandleEvent implements Listener.
func (d *Device) HandleEvent(ev *Event) {
	if ev == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Events that were queued before Unbind must not change state.
	if d.target == nil {
		d.metrics.recordDropped()
		return
	}
	d.metrics.recordEvent(ev.Type)

	switch ev.Type {
	case EventKeyDown:
		ev.PreventDefault()
		if c := key.Code(ev.KeyCode); c.Valid() {
			d.keys[c] = KeyState{Held: true}
		}
	case EventKeyUp:
		ev.PreventDefault()
		if c := key.Code(ev.KeyCode); c.Valid() {
			d.keys[c] = KeyState{}
		}
	case EventMouseDown, EventMouseUp, EventMouseMove:
		d.handlePointer(ev)
	case EventWheel:
		ev.PreventDefault()
		d.axisZ = mouse.WheelSign(ev.DeltaY)
		d.handlePointer(ev)
	}
}

// handlePointer updates position, axes and buttons from a pointer event.
// The caller holds d.mu.
func (d *Device) handlePointer(ev *Event) {
	w, h := d.target.OffsetSize()
	rect := d.target.BoundingClientRect()

	var x, y float64
	if d.target.PointerLocked() {
		x = d.lastX + ev.MovementX
		y = d.lastY + ev.MovementY
	} else {
		x = ev.ClientX
		y = ev.ClientY
	}
	d.lastX, d.lastY = x, y

	nx := mouse.Normalize(x, rect.Left, w)
	ny := mouse.Normalize(y, rect.Top, h)

	d.axisX = mouse.Smooth(nx - d.normX)
	d.axisY = mouse.Smooth(ny - d.normY)
	d.normX, d.normY = nx, ny

	d.buttons = ev.Buttons
}

func (d *Device) logger() *logging.Logger {
	if d.log == nil {
		return logging.Default().Child("input")
	}
	return d.log
}
