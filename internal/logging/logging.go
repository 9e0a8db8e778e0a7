// Package logging provides leveled, component-scoped logging for webshim.
//
// Output goes through kataras/golog by default. When a ConsoleListener is
// attached, records are instead rendered as colored console lines the way
// the native core's console listener does.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/kataras/golog"
)

// Level is the severity of a log record. Lower values are more severe,
// matching the native core's LOG_LEVELS numbering.
type Level int

const (
	// LevelNotice is for messages that should always be seen.
	LevelNotice Level = iota + 1
	// LevelError is for failures.
	LevelError
	// LevelWarning is for recoverable problems.
	LevelWarning
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelDebug is for detailed debugging information.
	LevelDebug
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelNotice:
		return "NOTICE"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "notice":
		return LevelNotice
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarning
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the least severe level that is written.
	Level Level
	// Output is where golog writes. Defaults to os.Stderr.
	Output io.Writer
	// Prefix names the root component.
	Prefix string
	// Listener, when set, receives every record instead of golog.
	Listener *ConsoleListener
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Prefix: "webshim",
	}
}

// Logger writes leveled records for one component.
type Logger struct {
	mu       *sync.Mutex
	g        *golog.Logger
	level    *Level
	listener **ConsoleListener
	prefix   string
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.Level == 0 {
		cfg.Level = LevelInfo
	}

	g := golog.New()
	g.SetOutput(cfg.Output)
	g.SetTimeFormat("2006-01-02T15:04:05.000")
	// Filtering happens in Logger.log.
	g.SetLevel("debug")
	if cfg.Prefix != "" {
		g = g.Child("[" + cfg.Prefix + "]")
	}

	level := cfg.Level
	listener := cfg.Listener
	return &Logger{
		mu:       &sync.Mutex{},
		g:        g,
		level:    &level,
		listener: &listener,
		prefix:   cfg.Prefix,
	}
}

// Child returns a logger for a sub-component. It shares level, output and
// listener with its parent.
func (l *Logger) Child(component string) *Logger {
	prefix := component
	if l.prefix != "" {
		prefix = l.prefix + "/" + component
	}
	return &Logger{
		mu:       l.mu,
		g:        l.g.Child("[" + component + "]"),
		level:    l.level,
		listener: l.listener,
		prefix:   prefix,
	}
}

// SetLevel sets the least severe level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

// Level returns the current level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.level
}

// SetListener routes records to a console listener. Nil restores golog output.
func (l *Logger) SetListener(c *ConsoleListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.listener = c
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level <= l.Level()
}

// Noticef logs a notice.
func (l *Logger) Noticef(format string, args ...any) { l.log(LevelNotice, format, args...) }

// Errorf logs an error.
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

// Warnf logs a warning.
func (l *Logger) Warnf(format string, args ...any) { l.log(LevelWarning, format, args...) }

// Infof logs an informational message.
func (l *Logger) Infof(format string, args ...any) { l.log(LevelInfo, format, args...) }

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	enabled := level <= *l.level
	listener := *l.listener
	l.mu.Unlock()

	if !enabled {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	if listener != nil {
		if l.prefix != "" {
			msg = l.prefix + ": " + msg
		}
		listener.Log(level, msg)
		return
	}

	switch level {
	case LevelNotice, LevelError:
		l.g.Error(msg)
	case LevelWarning:
		l.g.Warn(msg)
	case LevelDebug:
		l.g.Debug(msg)
	default:
		l.g.Info(msg)
	}
}

// Discard is a logger that writes nothing.
var Discard = New(Config{Level: LevelNotice, Output: io.Discard})

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
	defaultMu         sync.Mutex
)

// Default returns the process logger, creating it on first use.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New(DefaultConfig())
		}
	})
	return defaultLogger
}

// SetDefault replaces the process logger. Call early in startup.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLoggerOnce.Do(func() {})
	defaultLogger = l
}
