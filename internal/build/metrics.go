// Package build runs the bundling pipeline: graph construction,
// linearization, emission, and output writing, with caching, metrics,
// and rebuild coalescing for watch mode.
package build

import (
	"sync"
	"time"
)

// Metrics tracks pipeline performance
type Metrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	CacheHits        int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	mutex            sync.RWMutex
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record records a build result in the metrics
func (m *Metrics) Record(result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds++
	m.TotalDuration += result.Duration

	if result.CacheHit {
		m.CacheHits++
	}

	if result.Error != nil {
		m.FailedBuilds++
	} else {
		m.SuccessfulBuilds++
	}

	if m.TotalBuilds > 0 {
		m.AverageDuration = m.TotalDuration / time.Duration(m.TotalBuilds)
	}
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	// Copy without the mutex to avoid lock copying
	return Metrics{
		TotalBuilds:      m.TotalBuilds,
		SuccessfulBuilds: m.SuccessfulBuilds,
		FailedBuilds:     m.FailedBuilds,
		CacheHits:        m.CacheHits,
		AverageDuration:  m.AverageDuration,
		TotalDuration:    m.TotalDuration,
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds = 0
	m.SuccessfulBuilds = 0
	m.FailedBuilds = 0
	m.CacheHits = 0
	m.AverageDuration = 0
	m.TotalDuration = 0
}

// CacheHitRate returns the cache hit rate as a percentage
func (m *Metrics) CacheHitRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalBuilds == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalBuilds) * 100.0
}

// SuccessRate returns the success rate as a percentage
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalBuilds == 0 {
		return 0.0
	}
	return float64(m.SuccessfulBuilds) / float64(m.TotalBuilds) * 100.0
}
