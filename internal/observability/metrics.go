package observability

import (
	"sync"
	"time"
)

type requestKey struct {
	path   string
	method string
	status int
}

type errorKey struct {
	path   string
	method string
	code   string
}

// Metrics keeps in-process counters for request traffic and domain
// activity. A nil *Metrics is a no-op so tests and tools can skip the
// wiring.
type Metrics struct {
	mu                   sync.Mutex
	requests             map[requestKey]int64
	errors               map[errorKey]int64
	events               map[string]int64
	notificationsCreated int64
	totalLatency         time.Duration
}

// NewMetrics initializes counter storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[requestKey]int64),
		errors:   make(map[errorKey]int64),
		events:   make(map[string]int64),
	}
}

// RecordRequest counts a completed request and accumulates latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[requestKey{path: path, method: method, status: status}]++
	m.totalLatency += duration
}

// RecordError counts an error response by domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[errorKey{path: path, method: method, code: code}]++
}

// RecordEvent counts a dispatched domain event by type.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventType]++
}

// RecordNotifications counts persisted notification rows.
func (m *Metrics) RecordNotifications(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsCreated += int64(count)
}

// RequestCount returns the counter for one path/method/status triple.
func (m *Metrics) RequestCount(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[requestKey{path: path, method: method, status: status}]
}

// ErrorCount returns the counter for one path/method/code triple.
func (m *Metrics) ErrorCount(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorKey{path: path, method: method, code: code}]
}

// EventCount returns how many events of the given type were recorded.
func (m *Metrics) EventCount(eventType string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[eventType]
}

// TotalLatency returns the accumulated request handling time.
func (m *Metrics) TotalLatency() time.Duration {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalLatency
}

// NotificationsCreated returns the total persisted notification rows.
func (m *Metrics) NotificationsCreated() int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsCreated
}
