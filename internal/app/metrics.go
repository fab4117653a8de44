package app

import (
	"sync"
	"time"
)

// Metrics counts script runs. It is safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	runs     uint64
	failures uint64
	total    time.Duration
	min      time.Duration
	max      time.Duration
	last     time.Duration
	lastErr  error

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Runs      uint64
	Failures  uint64
	Total     time.Duration
	Min       time.Duration
	Max       time.Duration
	Last      time.Duration
	LastError error
	Uptime    time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordRun records one run and its outcome.
func (m *Metrics) RecordRun(d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runs == 0 || d < m.min {
		m.min = d
	}
	m.max = max(m.max, d)
	m.runs++
	m.total += d
	m.last = d
	m.lastErr = err
	if err != nil {
		m.failures++
	}
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MetricsSnapshot{
		Runs:      m.runs,
		Failures:  m.failures,
		Total:     m.total,
		Min:       m.min,
		Max:       m.max,
		Last:      m.last,
		LastError: m.lastErr,
		Uptime:    time.Since(m.startTime),
	}
}

// Reset clears every counter.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs, m.failures = 0, 0
	m.total, m.min, m.max, m.last = 0, 0, 0, 0
	m.lastErr = nil
	m.startTime = time.Now()
}

// Avg returns the mean run duration.
func (s MetricsSnapshot) Avg() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Runs)
}

// Succeeded returns the number of runs that completed.
func (s MetricsSnapshot) Succeeded() uint64 {
	return s.Runs - s.Failures
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}
