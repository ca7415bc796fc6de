package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for remote calls and tool invocations.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	totalDuration map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		totalDuration: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for a completed call.
func (m *Metrics) RecordRequest(op, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := opKey(op, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalDuration[op] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(op, method, code string) {
	if m == nil {
		return
	}
	key := op + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests   map[string]int64 `json:"requests"`
	Errors     map[string]int64 `json:"errors"`
	DurationMS map[string]int64 `json:"duration_ms"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Requests:   map[string]int64{},
		Errors:     map[string]int64{},
		DurationMS: map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.totalDuration {
		snap.DurationMS[k] = v.Milliseconds()
	}
	return snap
}

func opKey(op, method string, status int) string {
	return op + "|" + method + "|" + strconv.Itoa(status)
}
