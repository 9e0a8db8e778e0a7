package native

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// maxIntervalSamples is the size of the poll interval ring.
const maxIntervalSamples = 1000

// Metrics tracks the events a device receives and how often it is polled.
// A nil *Metrics records nothing.
type Metrics struct {
	keyEvents     atomic.Uint64
	pointerEvents atomic.Uint64
	wheelEvents   atomic.Uint64
	droppedEvents atomic.Uint64
	polls         atomic.Uint64

	mu          sync.Mutex
	intervals   []time.Duration
	intervalIdx int
	lastPoll    time.Time
	peak        time.Duration
	startTime   time.Time

	now func() time.Time
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		intervals: make([]time.Duration, maxIntervalSamples),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// WithMetrics records the device's events and polls in m.
func WithMetrics(m *Metrics) Option {
	return func(d *Device) {
		d.metrics = m
	}
}

func (m *Metrics) recordEvent(t EventType) {
	if m == nil {
		return
	}
	switch {
	case t.IsKey():
		m.keyEvents.Add(1)
	case t == EventWheel:
		m.wheelEvents.Add(1)
	default:
		m.pointerEvents.Add(1)
	}
}

// recordDropped counts an event that arrived after Unbind.
func (m *Metrics) recordDropped() {
	if m == nil {
		return
	}
	m.droppedEvents.Add(1)
}

func (m *Metrics) recordPoll() {
	if m == nil {
		return
	}
	m.polls.Add(1)

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.lastPoll.IsZero() {
		d := now.Sub(m.lastPoll)
		m.intervals[m.intervalIdx] = d
		m.intervalIdx = (m.intervalIdx + 1) % maxIntervalSamples
		if d > m.peak {
			m.peak = d
		}
	}
	m.lastPoll = now
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	KeyEvents     uint64
	PointerEvents uint64
	WheelEvents   uint64
	DroppedEvents uint64
	Polls         uint64

	// Poll interval statistics over the most recent polls.
	AvgInterval  time.Duration
	MaxInterval  time.Duration
	P99Interval  time.Duration
	PeakInterval time.Duration

	PollsPerSecond float64
	Uptime         time.Duration
}

// String renders the snapshot as a one-line summary.
func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("%d key, %d pointer, %d wheel events (%d dropped); %d polls, %.1f/s, avg interval %v, p99 %v",
		s.KeyEvents, s.PointerEvents, s.WheelEvents, s.DroppedEvents,
		s.Polls, s.PollsPerSecond, s.AvgInterval, s.P99Interval)
}

// Snapshot returns the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}

	m.mu.Lock()
	intervals := slices.Clone(m.intervals)
	peak := m.peak
	start := m.startTime
	m.mu.Unlock()

	snap := MetricsSnapshot{
		KeyEvents:     m.keyEvents.Load(),
		PointerEvents: m.pointerEvents.Load(),
		WheelEvents:   m.wheelEvents.Load(),
		DroppedEvents: m.droppedEvents.Load(),
		Polls:         m.polls.Load(),
		PeakInterval:  peak,
		Uptime:        m.now().Sub(start),
	}
	if snap.Uptime > 0 {
		snap.PollsPerSecond = float64(snap.Polls) / snap.Uptime.Seconds()
	}
	snap.AvgInterval, snap.MaxInterval, snap.P99Interval = intervalStats(intervals)
	return snap
}

// intervalStats computes average, max and p99 over the non-zero samples.
func intervalStats(samples []time.Duration) (avg, maxD, p99 time.Duration) {
	valid := make([]time.Duration, 0, len(samples))
	for _, d := range samples {
		if d > 0 {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, d := range valid {
		sum += d
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxD = valid[len(valid)-1]
	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	return avg, maxD, valid[idx]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.keyEvents.Store(0)
	m.pointerEvents.Store(0)
	m.wheelEvents.Store(0)
	m.droppedEvents.Store(0)
	m.polls.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.intervals = make([]time.Duration, maxIntervalSamples)
	m.intervalIdx = 0
	m.lastPoll = time.Time{}
	m.peak = 0
	m.startTime = m.now()
}

// HealthStatus reports whether input delivery looks healthy.
type HealthStatus struct {
	Healthy           bool
	DroppedEvents     uint64
	PeakInterval      time.Duration
	IntervalThreshold time.Duration
	Message           string
}

// HealthCheck reports unhealthy when events were dropped or polls were
// further apart than threshold.
func (m *Metrics) HealthCheck(threshold time.Duration) HealthStatus {
	snap := m.Snapshot()
	status := HealthStatus{
		Healthy:           true,
		DroppedEvents:     snap.DroppedEvents,
		PeakInterval:      snap.PeakInterval,
		IntervalThreshold: threshold,
		Message:           "healthy",
	}

	switch {
	case status.DroppedEvents > 0:
		status.Healthy = false
		status.Message = "events arrived after unbind"
	case threshold > 0 && status.PeakInterval > threshold:
		status.Healthy = false
		status.Message = "poll interval threshold exceeded"
	}
	return status
}
