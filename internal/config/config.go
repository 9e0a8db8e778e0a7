package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/webshim/internal/config/loader"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "WEBSHIM_"

// DefaultFile is the config file name looked up when none is given.
const DefaultFile = "webshim.toml"

// Config holds the merged configuration.
type Config struct {
	mu   sync.RWMutex
	data map[string]any

	file      string
	fs        loader.FileSystem
	envLoader loader.Loader
}

// Option configures a Config.
type Option func(*Config)

// WithFile sets the TOML file to read. An empty path skips the file layer.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithFS sets the file system the config file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnv replaces the environment layer.
func WithEnv(l loader.Loader) Option {
	return func(c *Config) {
		c.envLoader = l
	}
}

// New creates a Config holding the defaults.
func New(opts ...Option) *Config {
	c := &Config{
		data:      defaultConfig(),
		file:      DefaultFile,
		fs:        loader.OSFS{},
		envLoader: loader.NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load rebuilds the configuration from defaults, the config file and the
// environment, then validates it.
func (c *Config) Load(_ context.Context) error {
	merged := defaultConfig()

	fileData, err := loader.NewTOMLLoaderWithFS(c.fs, c.file).Load()
	if err != nil {
		return err
	}
	merged = loader.DeepMerge(merged, fileData)

	if c.envLoader != nil {
		envData, err := c.envLoader.Load()
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, envData)
	}

	c.mu.Lock()
	c.data = merged
	c.mu.Unlock()

	return c.Validate()
}

// Get returns the value at a dot-separated path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.data, path)
}

// Set stores value at path, overriding every layer.
func (c *Config) Set(path string, value any) error {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	loader.SetByPath(c.data, path, value)
	return nil
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.data)
}

// GetString returns a string setting.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetBool returns a boolean setting.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetInt returns an integer setting.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetDuration returns a duration setting. Strings use time.ParseDuration
// syntax; bare integers are milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", d)}
		}
		return parsed, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// Validate checks every setting read by the section accessors.
func (c *Config) Validate() error {
	for _, path := range []string{"input.selector", "input.host", "remote.listen", "logging.level", "core.entry"} {
		if _, err := c.GetString(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, path := range []string{"fetch.corsProxy", "trace.path"} {
		if _, err := c.GetString(path); err != nil && err != ErrSettingNotFound {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if _, err := c.GetBool("logging.color"); err != nil {
		return fmt.Errorf("logging.color: %w", err)
	}
	for _, path := range []string{"input.keyRelease", "fetch.timeout"} {
		d, err := c.GetDuration(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if d < 0 {
			return &ValidationError{Path: path, Message: "must not be negative", Value: d}
		}
	}

	in := c.Input()
	if in.Selector == "" {
		return &ValidationError{Path: "input.selector", Message: "must not be empty", Value: in.Selector}
	}
	if !validHost(in.Host) {
		return &ValidationError{Path: "input.host", Message: "unknown host (want " + strings.Join(Hosts, ", ") + ")", Value: in.Host}
	}
	if !validLevel(c.Logging().Level) {
		return &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging().Level}
	}
	return nil
}

// defaultConfig returns the built-in defaults.
func defaultConfig() map[string]any {
	return map[string]any{
		"input": map[string]any{
			"selector":   "#surface",
			"host":       HostTerminal,
			"keyRelease": "150ms",
		},
		"remote": map[string]any{
			"listen": ":8090",
		},
		"logging": map[string]any{
			"level": "info",
			"color": true,
		},
		"fetch": map[string]any{
			"timeout":   "30s",
			"corsProxy": "",
		},
		"trace": map[string]any{
			"path": "",
		},
		"core": map[string]any{
			"entry": "_start",
		},
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
