package seqgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordInsert is called after each insert. width is the width of the
	// resulting vertex (0 on error).
	RecordInsert(width int, duration time.Duration, err error)

	// RecordRead is called after each ReadSequence with the number of input
	// tokens.
	RecordRead(tokens int, duration time.Duration, err error)

	// RecordSearch is called after each search. op is "find_ancestor" or
	// "find_parent".
	RecordSearch(op string, queryLen int, duration time.Duration, err error)

	// RecordSplit is called after each SplitAt, Prefix or Postfix.
	RecordSplit(duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save ("save") or restore
	// ("restore"). bytes is the size of the snapshot blob.
	RecordSnapshot(op string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordRead(int, time.Duration, error)               {}
func (NoopMetricsCollector) RecordSearch(string, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordSplit(time.Duration, error)                   {}
func (NoopMetricsCollector) RecordSnapshot(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	ReadCount        atomic.Int64
	ReadErrors       atomic.Int64
	ReadTokens       atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	SplitCount       atomic.Int64
	SplitErrors      atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
	SnapshotBytes    atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(_ int, duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(tokens int, _ time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTokens.Add(int64(tokens))
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector. A search ending without a match
// is not counted as an error.
func (b *BasicMetricsCollector) RecordSearch(_ string, _ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil && !isSearchMiss(err) {
		b.SearchErrors.Add(1)
	}
}

// RecordSplit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSplit(_ time.Duration, err error) {
	b.SplitCount.Add(1)
	if err != nil {
		b.SplitErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(_ string, bytes int64, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotBytes.Add(bytes)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		ReadCount:      b.ReadCount.Load(),
		ReadErrors:     b.ReadErrors.Load(),
		ReadTokens:     b.ReadTokens.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		SplitCount:     b.SplitCount.Load(),
		SplitErrors:    b.SplitErrors.Load(),
		SnapshotCount:  b.SnapshotCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
		SnapshotBytes:  b.SnapshotBytes.Load(),
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
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64
	ReadCount      int64
	ReadErrors     int64
	ReadTokens     int64
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	SplitCount     int64
	SplitErrors    int64
	SnapshotCount  int64
	SnapshotErrors int64
	SnapshotBytes  int64
}
