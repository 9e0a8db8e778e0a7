package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/logging"
)

func TestRecorderWritesLines(t *testing.T) {
	_, el := memhost.NewSurface("#surface", 100, 100)
	var buf bytes.Buffer
	rec := NewRecorder(&buf, el)
	base := time.Unix(0, 0)
	rec.start = base
	rec.now = func() time.Time { return base.Add(25 * time.Millisecond) }

	rec.Dispatch(native.Event{Type: native.EventKeyDown, KeyCode: 65})
	rec.SetPointerLock(true)
	rec.SetRect(mouse.Rect{Width: 640, Height: 480})
	rec.Poll()

	if err := rec.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}

	first := gjson.Parse(lines[0])
	if first.Get("type").String() != "keydown" || first.Get("keyCode").Int() != 65 || first.Get("t").Int() != 25 {
		t.Errorf("first record = %s", lines[0])
	}
	if first.Get("clientX").Exists() {
		t.Errorf("zero field written: %s", lines[0])
	}
	if !gjson.Get(lines[1], "locked").Bool() {
		t.Errorf("lock record = %s", lines[1])
	}
	if gjson.Get(lines[2], "width").Float() != 640 {
		t.Errorf("resize record = %s", lines[2])
	}
	if gjson.Get(lines[3], "type").String() != TypePoll {
		t.Errorf("poll record = %s", lines[3])
	}

	if !el.PointerLocked() {
		t.Error("lock not forwarded")
	}
	if w, _ := el.OffsetSize(); w != 640 {
		t.Error("resize not forwarded")
	}
}

func TestRecordReplayRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	_, recorded := memhost.NewSurface("#surface", 200, 100)
	rec := NewRecorder(&buf, recorded)
	rec.Dispatch(native.Event{Type: native.EventMouseMove, ClientX: 150, ClientY: 25, Buttons: mouse.ButtonLeft})
	rec.Dispatch(native.Event{Type: native.EventWheel, ClientX: 150, ClientY: 25, DeltaY: 4})
	rec.Dispatch(native.Event{Type: native.EventKeyDown, KeyCode: 87})
	rec.Poll()

	doc, el := memhost.NewSurface("#surface", 200, 100)
	dev, err := native.Bind(doc, "#surface", native.WithLogger(logging.Discard))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer dev.Unbind()

	var snaps []string
	p := NewReplayer(el)
	p.OnPoll = func(int) {
		s, _ := dev.Poll()
		snaps = append(snaps, Snapshot(s))
	}

	n, err := p.Replay(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if n != 4 {
		t.Errorf("Replay() = %d records, want 4", n)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}

	want := `{"cursor":{"x":0.5,"y":-0.5},"buttons":0,"axes":[0,0,1],"keys":[87]}`
	if snaps[0] != want {
		t.Errorf("snapshot = %s, want %s", snaps[0], want)
	}
}

func TestReplayErrors(t *testing.T) {
	_, el := memhost.NewSurface("#surface", 10, 10)
	p := NewReplayer(el)

	tests := []struct {
		name  string
		input string
		n     int
	}{
		{"not json", "{\"type\":\"keydown\"}\nnope\n", 1},
		{"unknown type", "{\"type\":\"click\"}\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := p.Replay(context.Background(), strings.NewReader(tt.input))
			if !errors.Is(err, ErrBadRecord) {
				t.Errorf("Replay() error = %v, want ErrBadRecord", err)
			}
			if n != tt.n {
				t.Errorf("Replay() = %d, want %d", n, tt.n)
			}
		})
	}
}

func TestReplaySkipsBlankLines(t *testing.T) {
	_, el := memhost.NewSurface("#surface", 10, 10)
	n, err := NewReplayer(el).Replay(context.Background(), strings.NewReader("\n  \n{\"type\":\"keyup\",\"keyCode\":1}\n"))
	if err != nil || n != 1 {
		t.Errorf("Replay() = (%d, %v), want (1, nil)", n, err)
	}
}

func TestReplayCanceled(t *testing.T) {
	_, el := memhost.NewSurface("#surface", 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReplayer(el).Replay(ctx, strings.NewReader("{\"type\":\"keyup\"}\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Replay() error = %v, want context.Canceled", err)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	got := Snapshot(native.State{})
	want := `{"cursor":{"x":0,"y":0},"buttons":0,"axes":[0,0,0],"keys":[]}`
	if got != want {
		t.Errorf("Snapshot = %s, want %s", got, want)
	}
}
