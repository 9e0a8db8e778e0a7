package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads prefixed environment variables.
//
// Mapped variables go to their configured path. Any other variable with
// the prefix is converted by name: WEBSHIM_FETCH_CORS_PROXY becomes
// fetch.corsProxy.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix. The
// prefix includes its trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, DefaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with explicit variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

// DefaultEnvMapping returns the variables whose names do not follow the
// section_setting convention.
func DefaultEnvMapping() map[string]string {
	return map[string]string{
		"WEBSHIM_SURFACE_SELECTOR": "input.selector",
		"WEBSHIM_HOST":             "input.host",
		"WEBSHIM_KEY_RELEASE":      "input.keyRelease",
		"WEBSHIM_LISTEN":           "remote.listen",
		"WEBSHIM_LOG_LEVEL":        "logging.level",
		"WEBSHIM_COLOR":            "logging.color",
		"WEBSHIM_CORS_PROXY":       "fetch.corsProxy",
		"WEBSHIM_TRACE":            "trace.path",
		"WEBSHIM_ENTRY":            "core.entry",
	}
}

// AddMapping maps envVar to a configuration path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = path
}

// Load implements Loader. Empty values are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	m := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		SetByPath(m, path, parseValue(value))
	}
	return m, nil
}

// envToPath converts WEBSHIM_SECTION_SOME_NAME to section.someName.
func (l *EnvLoader) envToPath(name string) string {
	parts := strings.Split(strings.TrimPrefix(name, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	b.WriteByte('.')
	b.WriteString(strings.ToLower(parts[1]))
	for _, p := range parts[2:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}

// parseValue converts booleans and integers. Durations and everything
// else stay strings and are interpreted by the typed accessors.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// SetByPath stores value in m under a dot-separated path, creating
// intermediate maps as needed.
func SetByPath(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// GetByPath looks up a dot-separated path in m.
func GetByPath(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, p := range strings.Split(path, ".") {
		cm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = cm[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}
