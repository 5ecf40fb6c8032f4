package metrics

import (
	"sync"
	"time"
)

type backendStats struct {
	ops         int
	errors      int
	loads       int
	loadErrors  int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about backend operations.
// It is intentionally simple so it can be swapped for a real backend later.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*backendStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*backendStats),
		otel:  otel,
	}
}

// RecordBackendOp increments counters for a backend write and stores the last
// observed latency.
func (r *Recorder) RecordBackendOp(backend, operation string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(backend)
	stats.ops++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordBackendOp(backend, operation, duration, err)
	}
}

// RecordLoad tracks a full snapshot load from a backend.
func (r *Recorder) RecordLoad(backend string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(backend)
	stats.loads++
	if err != nil {
		stats.loadErrors++
	}
	if r.otel != nil {
		r.otel.recordLoad(backend, duration, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// BackendOps returns the total writes recorded for a backend.
func (r *Recorder) BackendOps(backend string) int {
	return r.Snapshot(backend).Ops
}

// BackendErrors returns the total failed writes recorded for a backend.
func (r *Recorder) BackendErrors(backend string) int {
	return r.Snapshot(backend).Errors
}

// Loads returns the total snapshot loads recorded for a backend.
func (r *Recorder) Loads(backend string) int {
	return r.Snapshot(backend).Loads
}

// LastLatency returns the last recorded latency for a backend write.
func (r *Recorder) LastLatency(backend string) time.Duration {
	return r.Snapshot(backend).LastLatency
}

// Snapshot is a copy of the current stats for a backend.
type Snapshot struct {
	Ops         int
	Errors      int
	Loads       int
	LoadErrors  int
	LastLatency time.Duration
}

func (r *Recorder) Snapshot(backend string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(backend)
	return Snapshot{
		Ops:         stats.ops,
		Errors:      stats.errors,
		Loads:       stats.loads,
		LoadErrors:  stats.loadErrors,
		LastLatency: stats.lastLatency,
	}
}

func (r *Recorder) ensureStats(backend string) *backendStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[backend]
	if !ok {
		stats = &backendStats{}
		r.stats[backend] = stats
	}
	return stats
}

func (r *Recorder) snapshot(backend string) backendStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[backend]; ok && stats != nil {
		return *stats
	}
	return backendStats{}
}
