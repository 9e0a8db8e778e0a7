package trace

import (
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Recorder writes every call to a surface as a trace record and forwards
// it. It implements memhost.Surface.
type Recorder struct {
	mu    sync.Mutex
	next  memhost.Surface
	enc   *jsoniter.Encoder
	start time.Time
	now   func() time.Time
	err   error
}

// NewRecorder records to w and forwards to next.
func NewRecorder(w io.Writer, next memhost.Surface) *Recorder {
	return &Recorder{
		next:  next,
		enc:   json.NewEncoder(w),
		start: time.Now(),
		now:   time.Now,
	}
}

// Dispatch records ev and forwards it.
func (r *Recorder) Dispatch(ev native.Event) bool {
	r.write(record{
		Type:      ev.Type.String(),
		KeyCode:   ev.KeyCode,
		ClientX:   ev.ClientX,
		ClientY:   ev.ClientY,
		MovementX: ev.MovementX,
		MovementY: ev.MovementY,
		Buttons:   uint32(ev.Buttons),
		DeltaY:    ev.DeltaY,
	})
	return r.next.Dispatch(ev)
}

// SetPointerLock records the lock change and forwards it.
func (r *Recorder) SetPointerLock(locked bool) {
	r.write(record{Type: TypePointerLock, Locked: &locked})
	r.next.SetPointerLock(locked)
}

// SetRect records the resize and forwards it.
func (r *Recorder) SetRect(rect mouse.Rect) {
	r.write(record{
		Type:   TypeResize,
		Left:   &rect.Left,
		Top:    &rect.Top,
		Width:  &rect.Width,
		Height: &rect.Height,
	})
	r.next.SetRect(rect)
}

// Poll records a poll marker.
func (r *Recorder) Poll() {
	r.write(record{Type: TypePoll})
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) write(rec record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	rec.T = r.now().Sub(r.start).Milliseconds()
	r.err = r.enc.Encode(&rec)
}

var _ memhost.Surface = (*Recorder)(nil)
