package qsteg

import (
	"sync"
	"time"
)

// Metrics tracks how the simulation backend behaved during a run.
type Metrics struct {
	mu                sync.RWMutex
	Simulations       int64
	Failures          int64
	TotalSimulateTime time.Duration
	Durations         map[string]time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		Durations: make(map[string]time.Duration),
	}
}

func (m *Metrics) recordSimulation(label string, startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Simulations++
	if !success {
		m.Failures++
	}

	m.TotalSimulateTime += duration
	m.Durations[label] = duration
}

// Snapshot returns a copy that is safe to hand to report writers.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	durations := make(map[string]float64, len(m.Durations))
	for label, d := range m.Durations {
		durations[label] = float64(d.Microseconds()) / 1000
	}

	return MetricsSnapshot{
		Simulations: m.Simulations,
		Failures:    m.Failures,
		TotalMillis: float64(m.TotalSimulateTime.Microseconds()) / 1000,
		Durations:   durations,
	}
}

type MetricsSnapshot struct {
	Simulations int64              `json:"simulations" yaml:"simulations"`
	Failures    int64              `json:"failures" yaml:"failures"`
	TotalMillis float64            `json:"total_ms" yaml:"total_ms"`
	Durations   map[string]float64 `json:"durations_ms" yaml:"durations_ms"`
}
