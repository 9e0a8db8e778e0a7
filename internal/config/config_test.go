package config

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/webshim/internal/config/loader"
)

type mapEnv map[string]any

func (m mapEnv) Load() (map[string]any, error) {
	out := make(map[string]any)
	for path, v := range m {
		loader.SetByPath(out, path, v)
	}
	return out, nil
}

func load(t *testing.T, file string, env mapEnv) (*Config, error) {
	t.Helper()
	fsys := fstest.MapFS{}
	if file != "" {
		fsys[DefaultFile] = &fstest.MapFile{Data: []byte(file)}
	}
	c := New(WithFS(loader.FSAdapter{FS: fsys}), WithEnv(env))
	return c, c.Load(context.Background())
}

func TestDefaults(t *testing.T) {
	c, err := load(t, "", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	in := c.Input()
	if in.Selector != "#surface" {
		t.Errorf("Selector = %q, want #surface", in.Selector)
	}
	if in.Host != HostTerminal {
		t.Errorf("Host = %q, want %q", in.Host, HostTerminal)
	}
	if in.KeyRelease != 150*time.Millisecond {
		t.Errorf("KeyRelease = %v, want 150ms", in.KeyRelease)
	}
	if got := c.Remote().Listen; got != ":8090" {
		t.Errorf("Listen = %q, want :8090", got)
	}
	if got := c.Fetch().Timeout; got != 30*time.Second {
		t.Errorf("Fetch timeout = %v, want 30s", got)
	}
	if got := c.Core().Entry; got != "_start" {
		t.Errorf("Entry = %q, want _start", got)
	}
	if lc := c.Logging(); lc.Level != "info" || !lc.Color {
		t.Errorf("Logging = %+v, want info with color", lc)
	}
}

func TestLayerPrecedence(t *testing.T) {
	file := `
[input]
selector = "#canvas"
host = "window"

[fetch]
timeout = "2s"
corsProxy = "https://file.test/?url="
`
	env := mapEnv{
		"input.selector": "#env",
		"fetch.timeout":  int64(500),
	}

	c, err := load(t, file, env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := c.Input().Selector; got != "#env" {
		t.Errorf("Selector = %q, want #env", got)
	}
	if got := c.Input().Host; got != HostWindow {
		t.Errorf("Host = %q, want window", got)
	}
	if got := c.Fetch().Timeout; got != 500*time.Millisecond {
		t.Errorf("Timeout = %v, want 500ms", got)
	}
	if got := c.Fetch().CORSProxy; got != "https://file.test/?url=" {
		t.Errorf("CORSProxy = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  mapEnv
		want error
	}{
		{"bad host", "[input]\nhost = \"fax\"\n", nil, ErrValidationFailed},
		{"empty selector", "", mapEnv{"input.selector": ""}, ErrValidationFailed},
		{"bad level", "[logging]\nlevel = \"loud\"\n", nil, ErrValidationFailed},
		{"selector type", "[input]\nselector = 4\n", nil, ErrTypeMismatch},
		{"bad duration", "[fetch]\ntimeout = \"soon\"\n", nil, ErrTypeMismatch},
		{"negative duration", "", mapEnv{"input.keyRelease": "-1s"}, ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.file, tt.env)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseErrorFromFile(t *testing.T) {
	_, err := load(t, "[input\n", nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if pe.Path != DefaultFile {
		t.Errorf("ParseError.Path = %q, want %q", pe.Path, DefaultFile)
	}
}

func TestSet(t *testing.T) {
	c := New(WithFile(""), WithEnv(nil))
	if err := c.Set("trace.path", "run.jsonl"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := c.Trace().Path; got != "run.jsonl" {
		t.Errorf("Trace().Path = %q, want run.jsonl", got)
	}

	for _, bad := range []string{"", ".x", "x.", "a..b"} {
		if err := c.Set(bad, 1); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Set(%q) error = %v, want ErrInvalidPath", bad, err)
		}
	}
}

func TestMergedIsCopy(t *testing.T) {
	c := New()
	m := c.Merged()
	loader.SetByPath(m, "input.selector", "#changed")
	if got := c.Input().Selector; got != "#surface" {
		t.Errorf("Selector = %q after mutating Merged()", got)
	}
}
