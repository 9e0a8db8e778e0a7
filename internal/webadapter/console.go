package webadapter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"
)

// Console writes messages styled with CSS colors.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsole creates a console on w. Color is enabled when w is a terminal.
func NewConsole(w io.Writer) *Console {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Console{w: w, color: color}
}

// SetColor forces colored output on or off.
func (c *Console) SetColor(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = enabled
}

// LogColored writes msg on its own line in the given CSS color. Colors
// that cannot be parsed, and black, are written in the default color.
func (c *Console) LogColored(msg, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.color {
		if seq, ok := ansiForeground(color); ok {
			fmt.Fprintf(c.w, "%s%s\x1b[0m\n", seq, msg)
			return
		}
	}
	fmt.Fprintln(c.w, msg)
}

// ansiForeground returns the 24-bit SGR sequence for a CSS color.
func ansiForeground(css string) (string, bool) {
	c, ok := ParseCSSColor(css)
	if !ok {
		return "", false
	}
	r, g, b := c.RGB255()
	if r == 0 && g == 0 && b == 0 {
		return "", false
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b), true
}

// ParseCSSColor parses a CSS color keyword or a #rgb / #rrggbb value.
func ParseCSSColor(css string) (colorful.Color, bool) {
	s := strings.ToLower(strings.TrimSpace(css))
	if hex, ok := cssNamedColors[s]; ok {
		s = hex
	}
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// cssNamedColors covers the keywords used by log listeners and common
// alert styling.
var cssNamedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"navy":    "#000080",
	"teal":    "#008080",
	"olive":   "#808000",
	"brown":   "#a52a2a",
	"pink":    "#ffc0cb",
	"gold":    "#ffd700",
}
