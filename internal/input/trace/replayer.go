package trace

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
)

// Replayer feeds a trace into a surface.
type Replayer struct {
	target memhost.Surface

	// Realtime waits between records according to their timestamps.
	Realtime bool

	// OnPoll is called for every poll record.
	OnPoll func(line int)
}

// NewReplayer creates a replayer targeting s.
func NewReplayer(s memhost.Surface) *Replayer {
	return &Replayer{target: s}
}

// Replay reads records from r until EOF. It returns the number of records
// applied. Blank lines are skipped.
func (p *Replayer) Replay(ctx context.Context, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	var (
		n     int
		line  int
		start = time.Now()
	)
	for sc.Scan() {
		line++
		data := sc.Bytes()
		if len(trimSpace(data)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !gjson.ValidBytes(data) {
			return n, fmt.Errorf("line %d: %w: not JSON", line, ErrBadRecord)
		}

		res := gjson.ParseBytes(data)
		if p.Realtime {
			due := start.Add(time.Duration(res.Get("t").Int()) * time.Millisecond)
			if err := sleepUntil(ctx, due); err != nil {
				return n, err
			}
		}
		if err := p.apply(res, line); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading trace: %w", err)
	}
	return n, nil
}

func (p *Replayer) apply(res gjson.Result, line int) error {
	typ, err := ApplyRecord(p.target, res)
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	if typ == TypePoll && p.OnPoll != nil {
		p.OnPoll(line)
	}
	return nil
}

// ApplyRecord applies one parsed record to s and returns its type. Poll
// records change nothing; the caller decides what a poll means.
func ApplyRecord(s memhost.Surface, res gjson.Result) (string, error) {
	typ := res.Get("type").String()
	switch typ {
	case TypePointerLock:
		s.SetPointerLock(res.Get("locked").Bool())
	case TypeResize:
		s.SetRect(mouse.Rect{
			Left:   res.Get("left").Float(),
			Top:    res.Get("top").Float(),
			Width:  res.Get("width").Float(),
			Height: res.Get("height").Float(),
		})
	case TypePoll:
	default:
		et, ok := native.ParseEventType(typ)
		if !ok {
			return typ, fmt.Errorf("%w: unknown type %q", ErrBadRecord, typ)
		}
		s.Dispatch(EventFromJSON(et, res))
	}
	return typ, nil
}

// EventFromJSON builds an event of type t from the fields of a JSON
// object using DOM property names.
func EventFromJSON(t native.EventType, res gjson.Result) native.Event {
	return native.Event{
		Type:      t,
		KeyCode:   int(res.Get("keyCode").Int()),
		ClientX:   res.Get("clientX").Float(),
		ClientY:   res.Get("clientY").Float(),
		MovementX: res.Get("movementX").Float(),
		MovementY: res.Get("movementY").Float(),
		Buttons:   mouse.Buttons(res.Get("buttons").Uint()),
		DeltaY:    res.Get("deltaY").Float(),
	}
}

func sleepUntil(ctx context.Context, due time.Time) error {
	d := time.Until(due)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\r') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
