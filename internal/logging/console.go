package logging

// Sink writes one message in a CSS color.
type Sink func(msg, color string)

// ConsoleListener renders records as colored console lines.
type ConsoleListener struct {
	sink     Sink
	useColor bool
}

// NewConsoleListener creates a listener writing to sink. When useColor is
// false every record is written in the default color.
func NewConsoleListener(sink Sink, useColor bool) *ConsoleListener {
	return &ConsoleListener{sink: sink, useColor: useColor}
}

// Log writes text in the color for level.
func (c *ConsoleListener) Log(level Level, text string) {
	if c == nil || c.sink == nil {
		return
	}
	c.sink(text, c.Color(level))
}

// Color returns the CSS color used for level.
func (c *ConsoleListener) Color(level Level) string {
	if !c.useColor {
		return "black"
	}
	switch level {
	case LevelNotice:
		return "green"
	case LevelError:
		return "red"
	case LevelWarning:
		return "orange"
	default:
		return "black"
	}
}
