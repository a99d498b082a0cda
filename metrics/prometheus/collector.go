// Package prometheus exports seqgraph operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	g, _ := seqgraph.New(seqgraph.WithMetricsCollector(promcollector.New(reg, "app")))
package prometheus

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/seqgraph"
)

// Collector implements seqgraph.MetricsCollector.
type Collector struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	vertexWidth   prometheus.Histogram
	readTokens    prometheus.Histogram
	snapshotBytes *prometheus.HistogramVec
}

var _ seqgraph.MetricsCollector = (*Collector)(nil)

// New registers the seqgraph metrics with reg under namespace. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seqgraph",
			Name:      "operations_total",
			Help:      "Total number of graph operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "seqgraph",
			Name:      "operation_duration_seconds",
			Help:      "Duration of graph operations.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
		vertexWidth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "seqgraph",
			Name:      "inserted_vertex_width",
			Help:      "Width of vertices returned by inserts.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		readTokens: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "seqgraph",
			Name:      "read_tokens",
			Help:      "Number of tokens per read.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		snapshotBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "seqgraph",
			Name:      "snapshot_bytes",
			Help:      "Size of saved and restored snapshot blobs.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"op"}),
	}
}

// outcome labels search misses separately from failures.
func outcome(err error) string {
	var si *seqgraph.ErrSingleIndex
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, seqgraph.ErrNoMatchingParent), errors.Is(err, seqgraph.ErrMismatch), errors.As(err, &si):
		return "miss"
	default:
		return "error"
	}
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.operations.WithLabelValues(op, outcome(err)).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordInsert implements seqgraph.MetricsCollector.
func (c *Collector) RecordInsert(width int, d time.Duration, err error) {
	c.observe("insert", d, err)
	if err == nil {
		c.vertexWidth.Observe(float64(width))
	}
}

// RecordRead implements seqgraph.MetricsCollector.
func (c *Collector) RecordRead(tokens int, d time.Duration, err error) {
	c.observe("read", d, err)
	c.readTokens.Observe(float64(tokens))
}

// RecordSearch implements seqgraph.MetricsCollector.
func (c *Collector) RecordSearch(op string, _ int, d time.Duration, err error) {
	c.observe(op, d, err)
}

// RecordSplit implements seqgraph.MetricsCollector.
func (c *Collector) RecordSplit(d time.Duration, err error) {
	c.observe("split", d, err)
}

// RecordSnapshot implements seqgraph.MetricsCollector.
func (c *Collector) RecordSnapshot(op string, bytes int64, d time.Duration, err error) {
	c.observe("snapshot_"+op, d, err)
	if err == nil {
		c.snapshotBytes.WithLabelValues(op).Observe(float64(bytes))
	}
}
