package rest

import (
	"sync"
	"time"
)

// Metrics tracks aggregate statistics for upstream API calls.
type Metrics interface {
	// RecordRequest records an API request
	RecordRequest(source, operation string)

	// RecordDuration records request duration
	RecordDuration(source, operation string, duration time.Duration)

	// RecordError records an error
	RecordError(source, operation string, errType ErrorType)

	// GetStats returns current statistics
	GetStats() Stats
}

// Stats contains aggregate statistics.
type Stats struct {
	TotalRequests int
	TotalDuration time.Duration
	ErrorCount    int
	ByOperation   map[string]OperationStats
}

// OperationStats contains per-operation statistics.
type OperationStats struct {
	Requests int
	Duration time.Duration
	Errors   int
}

// DefaultMetrics provides in-memory metrics tracking.
type DefaultMetrics struct {
	mu    sync.RWMutex
	stats Stats
}

// NewDefaultMetrics creates a metrics tracker.
func NewDefaultMetrics() *DefaultMetrics {
	return &DefaultMetrics{
		stats: Stats{
			ByOperation: make(map[string]OperationStats),
		},
	}
}

// RecordRequest increments request counters.
func (m *DefaultMetrics) RecordRequest(source, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.TotalRequests++

	os := m.stats.ByOperation[operation]
	os.Requests++
	m.stats.ByOperation[operation] = os
}

// RecordDuration records call duration.
func (m *DefaultMetrics) RecordDuration(source, operation string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.TotalDuration += duration

	os := m.stats.ByOperation[operation]
	os.Duration += duration
	m.stats.ByOperation[operation] = os
}

// RecordError records an error.
func (m *DefaultMetrics) RecordError(source, operation string, errType ErrorType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.ErrorCount++

	os := m.stats.ByOperation[operation]
	os.Errors++
	m.stats.ByOperation[operation] = os
}

// GetStats returns a copy of the current statistics.
func (m *DefaultMetrics) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.stats
	out.ByOperation = make(map[string]OperationStats, len(m.stats.ByOperation))
	for k, v := range m.stats.ByOperation {
		out.ByOperation[k] = v
	}
	return out
}
