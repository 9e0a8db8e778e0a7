package config

import "time"

// Section accessors return snapshots. Values that fail to convert fall
// back to the defaults; Load reports them through Validate.

// Input hosts.
const (
	HostTerminal = "terminal"
	HostWindow   = "window"
	HostRemote   = "remote"
	HostScript   = "script"
	HostHeadless = "headless"
)

// Hosts lists the accepted input.host values.
var Hosts = []string{HostTerminal, HostWindow, HostRemote, HostScript, HostHeadless}

// InputConfig configures the input device and its host.
type InputConfig struct {
	// Selector is the element the device binds to.
	Selector string

	// Host selects the event source.
	Host string

	// KeyRelease is how long a terminal key stays held without a repeat.
	KeyRelease time.Duration
}

// RemoteConfig configures the remote input endpoint.
type RemoteConfig struct {
	Listen string
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string
	Color bool
}

// FetchConfig configures synchronous fetches.
type FetchConfig struct {
	Timeout time.Duration

	// CORSProxy is prepended to request URLs when not empty.
	CORSProxy string
}

// TraceConfig configures input tracing.
type TraceConfig struct {
	// Path is the trace file. Empty disables tracing.
	Path string
}

// CoreConfig configures the native core runner.
type CoreConfig struct {
	Entry string
}

// Input returns the input section.
func (c *Config) Input() InputConfig {
	return InputConfig{
		Selector:   c.getStringOr("input.selector", "#surface"),
		Host:       c.getStringOr("input.host", HostTerminal),
		KeyRelease: c.getDurationOr("input.keyRelease", 150*time.Millisecond),
	}
}

// Remote returns the remote section.
func (c *Config) Remote() RemoteConfig {
	return RemoteConfig{Listen: c.getStringOr("remote.listen", ":8090")}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
		Color: c.getBoolOr("logging.color", true),
	}
}

// Fetch returns the fetch section.
func (c *Config) Fetch() FetchConfig {
	return FetchConfig{
		Timeout:   c.getDurationOr("fetch.timeout", 30*time.Second),
		CORSProxy: c.getStringOr("fetch.corsProxy", ""),
	}
}

// Trace returns the trace section.
func (c *Config) Trace() TraceConfig {
	return TraceConfig{Path: c.getStringOr("trace.path", "")}
}

// Core returns the core section.
func (c *Config) Core() CoreConfig {
	return CoreConfig{Entry: c.getStringOr("core.entry", "_start")}
}

func (c *Config) getStringOr(path, def string) string {
	if v, err := c.GetString(path); err == nil {
		return v
	}
	return def
}

func (c *Config) getBoolOr(path string, def bool) bool {
	if v, err := c.GetBool(path); err == nil {
		return v
	}
	return def
}

func (c *Config) getDurationOr(path string, def time.Duration) time.Duration {
	if v, err := c.GetDuration(path); err == nil {
		return v
	}
	return def
}

func validHost(h string) bool {
	for _, known := range Hosts {
		if h == known {
			return true
		}
	}
	return false
}

func validLevel(l string) bool {
	switch l {
	case "notice", "error", "warning", "warn", "info", "debug":
		return true
	}
	return false
}
