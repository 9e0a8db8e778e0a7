package webadapter

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/webshim/internal/logging"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcXYZ019", "abcXYZ019"},
		{"-_.!~*'()", "-_.!~*'()"},
		{"a b&c=d/e?f#g", "a%20b%26c%3Dd%2Fe%3Ff%23g"},
		{";,:@$+", "%3B%2C%3A%40%24%2B"},
		{"é", "%C3%A9"},
		{"日本", "%E6%97%A5%E6%9C%AC"},
		{"😀", "%F0%9F%98%80"},
		{"100%", "100%25"},
		{"\xff", "%EF%BF%BD"},
	}

	for _, tt := range tests {
		if got := EncodeURIComponent(tt.in); got != tt.want {
			t.Errorf("EncodeURIComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserAgentFallback(t *testing.T) {
	if got := UserAgent(); got != FallbackUserAgent {
		t.Errorf("UserAgent() = %q, want %q", got, FallbackUserAgent)
	}
	if UserAgent() != UserAgent() {
		t.Error("UserAgent() not stable")
	}
}

func TestConsoleLogColored(t *testing.T) {
	tests := []struct {
		name  string
		color bool
		css   string
		want  string
	}{
		{"plain", false, "red", "hello\n"},
		{"named", true, "red", "\x1b[38;2;255;0;0mhello\x1b[0m\n"},
		{"orange", true, "orange", "\x1b[38;2;255;165;0mhello\x1b[0m\n"},
		{"short hex", true, "#0f0", "\x1b[38;2;0;255;0mhello\x1b[0m\n"},
		{"long hex", true, "#102030", "\x1b[38;2;16;32;48mhello\x1b[0m\n"},
		{"black", true, "black", "hello\n"},
		{"unknown", true, "rebeccapurple-ish", "hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConsole(&buf)
			c.SetColor(tt.color)
			c.LogColored("hello", tt.css)
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewConsoleNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.LogColored("x", "red")
	if strings.Contains(buf.String(), "\x1b") {
		t.Errorf("buffer console wrote escape codes: %q", buf.String())
	}
}

type recordingPrompter struct {
	alerts   []string
	confirms []string
	answer   bool
}

func (p *recordingPrompter) Alert(msg string) { p.alerts = append(p.alerts, msg) }

func (p *recordingPrompter) Confirm(msg string) bool {
	p.confirms = append(p.confirms, msg)
	return p.answer
}

func TestDisplayAlert(t *testing.T) {
	p := &recordingPrompter{answer: true}
	SetPrompter(p)
	defer SetPrompter(nil)

	if DisplayAlert("saved", false) {
		t.Error("DisplayAlert(alert) = true, want false")
	}
	if !DisplayAlert("quit?", true) {
		t.Error("DisplayAlert(confirm) = false, want true")
	}
	p.answer = false
	if DisplayAlert("quit?", true) {
		t.Error("DisplayAlert(declined confirm) = true, want false")
	}

	if len(p.alerts) != 1 || p.alerts[0] != "saved" {
		t.Errorf("alerts = %v, want [saved]", p.alerts)
	}
	if len(p.confirms) != 2 {
		t.Errorf("confirms = %v, want 2 entries", p.confirms)
	}
}

func TestLogPrompterNeverConfirms(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	p := LogPrompter{Log: log}

	if p.Confirm("delete everything?") {
		t.Error("LogPrompter.Confirm = true")
	}
	if !strings.Contains(buf.String(), "delete everything?") {
		t.Errorf("log output = %q, want the message", buf.String())
	}
}

func TestSignalsOneShot(t *testing.T) {
	s := NewSignals()
	var got []int
	s.Set(SIGINT, func(sig int) { got = append(got, sig) })

	if !s.RaiseSIGINT() {
		t.Fatal("first RaiseSIGINT did not run the handler")
	}
	if s.RaiseSIGINT() {
		t.Error("second RaiseSIGINT ran a handler")
	}
	if len(got) != 1 || got[0] != SIGINT {
		t.Errorf("handler calls = %v, want [2]", got)
	}
}

func TestSignalsUnsetRaise(t *testing.T) {
	s := NewSignals()
	if s.RaiseSIGTERM() {
		t.Error("RaiseSIGTERM with no handler reported a call")
	}

	var called bool
	s.Set(SIGTERM, func(int) { called = true })
	if !s.RaiseSIGTERM() || !called {
		t.Error("handler set after an unhandled raise did not run")
	}
}

func TestSignalsReinstallFromHandler(t *testing.T) {
	s := NewSignals()
	count := 0
	var h SignalHandler
	h = func(sig int) {
		count++
		s.Set(sig, h)
	}
	s.Set(SIGINT, h)

	s.Raise(SIGINT)
	s.Raise(SIGINT)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if !s.Handled(SIGINT) {
		t.Error("reinstalled handler missing")
	}

	s.Set(SIGINT, nil)
	if s.Handled(SIGINT) {
		t.Error("Set(nil) did not clear the slot")
	}
}

func newTestFetcher() *Fetcher {
	return NewFetcher(WithFetchLogger(logging.Discard))
}

func TestFetchSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Method", r.Method)
			w.Write([]byte(r.Header.Get("X-Token") + ":" + string(body)))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/latin1":
			w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
			w.Write([]byte{'c', 'a', 'f', 0xe9})
		case "/missing":
			http.Error(w, "nope", http.StatusNotFound)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		}
	}))
	defer srv.Close()

	f := newTestFetcher()
	ctx := context.Background()

	t.Run("post with headers", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{
			Method:  http.MethodPost,
			URL:     srv.URL + "/echo",
			Headers: []Header{{Name: "X-Token", Value: "abc"}},
			Payload: []byte("payload"),
		})
		if res.Status != http.StatusOK {
			t.Fatalf("Status = %d, want 200", res.Status)
		}
		if string(res.Body) != "abc:payload" {
			t.Errorf("Body = %q, want abc:payload", res.Body)
		}
	})

	t.Run("empty body is a status", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{URL: srv.URL + "/empty"})
		if res.Status != http.StatusNoContent {
			t.Errorf("Status = %d, want 204", res.Status)
		}
		if res.Body == nil || len(res.Body) != 0 {
			t.Errorf("Body = %v, want empty non-nil", res.Body)
		}
	})

	t.Run("declared charset left undecoded", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{URL: srv.URL + "/latin1"})
		if res.Status != http.StatusOK {
			t.Fatalf("Status = %d, want 200", res.Status)
		}
		want := []byte{'c', 'a', 'f', 0xe9}
		if !bytes.Equal(res.Body, want) {
			t.Errorf("Body = %x, want %x", res.Body, want)
		}
	})

	t.Run("error status passes through", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{URL: srv.URL + "/missing"})
		if res.Status != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", res.Status)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{URL: srv.URL + "/slow", Timeout: 20 * time.Millisecond})
		if res.Status != StatusFailed {
			t.Errorf("Status = %d, want %d", res.Status, StatusFailed)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{URL: "http://[::1"})
		if res.OK() {
			t.Errorf("Status = %d, want failure", res.Status)
		}
	})

	t.Run("progress once", func(t *testing.T) {
		var calls int32
		var loaded float64
		res := f.FetchSync(ctx, FetchRequest{
			Method:  http.MethodPost,
			URL:     srv.URL + "/echo",
			Payload: []byte("0123456789"),
			Progress: func(l, _ float64) bool {
				atomic.AddInt32(&calls, 1)
				loaded = l
				return false
			},
		})
		if res.Status != http.StatusOK {
			t.Fatalf("Status = %d, want 200", res.Status)
		}
		if calls != 1 {
			t.Errorf("progress calls = %d, want 1", calls)
		}
		if loaded != float64(len(res.Body)) {
			t.Errorf("loaded = %v, want %d", loaded, len(res.Body))
		}
	})

	t.Run("progress abort", func(t *testing.T) {
		res := f.FetchSync(ctx, FetchRequest{
			URL:      srv.URL + "/echo",
			Progress: func(float64, float64) bool { return true },
		})
		if res.Status != StatusFailed {
			t.Errorf("Status = %d, want %d", res.Status, StatusFailed)
		}
	})
}
