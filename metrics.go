package fire

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    saveCounter   prometheus.Counter
//	    loadHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSave(duration time.Duration, err error) {
//	    p.saveCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSave is called after an entry was saved by a write File.
	RecordSave(duration time.Duration, err error)

	// RecordLoad is called after an entry was loaded by a read File.
	RecordLoad(duration time.Duration, err error)

	// RecordFlush is called when a write File commits; bytes is the
	// size of the committed file.
	RecordFlush(bytes uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSave(time.Duration, error)          {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)          {}
func (NoopMetricsCollector) RecordFlush(uint64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadTotalNanos atomic.Int64
	FlushCount     atomic.Int64
	FlushErrors    atomic.Int64
	FlushBytes     atomic.Int64
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(bytes uint64, _ time.Duration, err error) {
	b.FlushCount.Add(1)
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushBytes.Add(int64(bytes)) //nolint:gosec
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SaveCount:    b.SaveCount.Load(),
		SaveErrors:   b.SaveErrors.Load(),
		SaveAvgNanos: avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LoadCount:    b.LoadCount.Load(),
		LoadErrors:   b.LoadErrors.Load(),
		LoadAvgNanos: avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		FlushCount:   b.FlushCount.Load(),
		FlushErrors:  b.FlushErrors.Load(),
		FlushBytes:   b.FlushBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SaveCount    int64
	SaveErrors   int64
	SaveAvgNanos int64
	LoadCount    int64
	LoadErrors   int64
	LoadAvgNanos int64
	FlushCount   int64
	FlushErrors  int64
	FlushBytes   int64
}
