package kbm

import (
	"strconv"

	"github.com/dshills/webshim/internal/input/key"
	"github.com/dshills/webshim/internal/input/mouse"
)

type keyInput struct {
	km   *KeyboardMouse
	code key.Code
	name string
}

func (k keyInput) Name() string { return k.name }

func (k keyInput) State() float64 {
	k.km.mu.RLock()
	defer k.km.mu.RUnlock()
	return float64(k.km.state.Keys[k.code])
}

func (k keyInput) Detectable() bool { return true }

type buttonInput struct {
	km    *KeyboardMouse
	index int
	bit   mouse.Buttons
}

func (b buttonInput) Name() string { return "Click " + strconv.Itoa(b.index) }

func (b buttonInput) State() float64 {
	b.km.mu.RLock()
	defer b.km.mu.RUnlock()
	if mouse.Buttons(b.km.state.Buttons).Has(b.bit) {
		return 1
	}
	return 0
}

func (b buttonInput) Detectable() bool { return true }

type cursorInput struct {
	km       *KeyboardMouse
	index    int
	positive bool
}

func (c cursorInput) Name() string {
	return "Cursor " + string(rune('X'+c.index)) + sign(c.positive)
}

func (c cursorInput) State() float64 {
	c.km.mu.RLock()
	defer c.km.mu.RUnlock()
	v := c.km.state.CursorX
	if c.index == 1 {
		v = c.km.state.CursorY
	}
	if c.positive {
		return float64(v)
	}
	return -float64(v)
}

// Absolute cursor position is always non-zero over most of the surface.
func (c cursorInput) Detectable() bool { return false }

type axisInput struct {
	km    *KeyboardMouse
	index int
	rng   float64
}

func (a axisInput) Name() string {
	return "Axis " + string(rune('X'+a.index)) + sign(a.rng > 0)
}

func (a axisInput) State() float64 {
	a.km.mu.RLock()
	defer a.km.mu.RUnlock()
	return float64(a.km.state.Axes[a.index]) / a.rng
}

func (a axisInput) Detectable() bool { return true }

func sign(positive bool) string {
	if positive {
		return "+"
	}
	return "-"
}
