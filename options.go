package seqgraph

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/internal/resource"
	"github.com/hupe1980/seqgraph/persistence"
)

// ResourceConfig limits concurrent searches, snapshot memory and snapshot
// IO bandwidth.
type ResourceConfig = resource.Config

// Compression selects how snapshots are compressed.
type Compression = persistence.Compression

const (
	CompressionNone = persistence.CompressionNone
	CompressionLZ4  = persistence.CompressionLZ4
	CompressionZSTD = persistence.CompressionZSTD
	CompressionXZ   = persistence.CompressionXZ
)

type options struct {
	codec            codec.Codec
	compression      Compression
	metricsCollector MetricsCollector
	logger           *Logger
	resource         ResourceConfig
	tracerProvider   trace.TracerProvider
	meterProvider    metric.MeterProvider
	validate         bool
}

// Option configures a Graph.
type Option func(*options)

// WithCodec configures the codec used for snapshot manifests.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the compression of new snapshots. Default is
// CompressionLZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &seqgraph.BasicMetricsCollector{}
//	g, _ := seqgraph.New(seqgraph.WithMetricsCollector(metrics))
//	// ... use g ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := seqgraph.NewJSONLogger(slog.LevelInfo)
//	g, _ := seqgraph.New(seqgraph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceConfig limits parallel searches in FindAll and the memory
// and IO used by snapshots.
func WithResourceConfig(cfg ResourceConfig) Option {
	return func(o *options) {
		o.resource = cfg
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Default is the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider. Default is the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithValidation validates the whole store after every mutation. Expensive;
// meant for tests and debugging.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      CompressionLZ4,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
