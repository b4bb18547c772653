package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects and aggregates counters for memory engine operations.
type Metrics struct {
	mu sync.Mutex

	// Counters
	turnsProcessed  atomic.Int64
	episodesCreated atomic.Int64
	compressions    atomic.Int64
	retrievals      atomic.Int64
	storeWrites     atomic.Int64
	storeErrors     atomic.Int64

	// Retrieval duration samples (FIFO window)
	durations    []time.Duration
	maxDurations int
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordTurn records a processed conversation turn.
func (m *Metrics) RecordTurn() {
	m.turnsProcessed.Add(1)
}

// RecordEpisode records a created episode.
func (m *Metrics) RecordEpisode() {
	m.episodesCreated.Add(1)
}

// RecordCompression records a completed compression pass.
func (m *Metrics) RecordCompression() {
	m.compressions.Add(1)
}

// RecordRetrieval records a served retrieval and its duration.
func (m *Metrics) RecordRetrieval(duration time.Duration) {
	m.retrievals.Add(1)

	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()
}

// RecordStoreWrite records a durable store write.
func (m *Metrics) RecordStoreWrite() {
	m.storeWrites.Add(1)
}

// RecordStoreError records a durable store failure.
func (m *Metrics) RecordStoreError() {
	m.storeErrors.Add(1)
}

// GetTurnsProcessed returns the total number of processed turns.
func (m *Metrics) GetTurnsProcessed() int64 {
	return m.turnsProcessed.Load()
}

// GetEpisodesCreated returns the total number of created episodes.
func (m *Metrics) GetEpisodesCreated() int64 {
	return m.episodesCreated.Load()
}

// GetCompressions returns the total number of compression passes.
func (m *Metrics) GetCompressions() int64 {
	return m.compressions.Load()
}

// GetRetrievals returns the total number of served retrievals.
func (m *Metrics) GetRetrievals() int64 {
	return m.retrievals.Load()
}

// GetStoreWrites returns the total number of durable writes.
func (m *Metrics) GetStoreWrites() int64 {
	return m.storeWrites.Load()
}

// GetStoreErrors returns the total number of durable store failures.
func (m *Metrics) GetStoreErrors() int64 {
	return m.storeErrors.Load()
}

// AverageRetrievalDuration returns the mean of the sampled retrieval durations.
func (m *Metrics) AverageRetrievalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range m.durations {
		total += d
	}
	return total / time.Duration(len(m.durations))
}
