// Package metrics holds the otel counters for value-level conditions that
// are reported in aggregate rather than failing a batch: per-field decode
// errors, unmatched segment discriminators and dropped records. Wiring a
// MeterProvider is the caller's concern; without one these are no-ops.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scope = "github.com/bearlytools/copybook"

var (
	meter = otel.Meter(scope)

	// DecodeErrors counts per-field decode failures.
	DecodeErrors metric.Int64Counter
	// SegmentMismatches counts records whose discriminator matched no level.
	SegmentMismatches metric.Int64Counter
	// DroppedRecords counts records dropped by configuration.
	DroppedRecords metric.Int64Counter
	// Records counts decoded physical records.
	Records metric.Int64Counter
)

func init() {
	DecodeErrors = mustCounter("copybook.decode.errors", "Per-field decode failures recorded during record decoding.")
	SegmentMismatches = mustCounter("copybook.segment.mismatches", "Records whose discriminator value matched no configured segment level.")
	DroppedRecords = mustCounter("copybook.segment.dropped", "Records dropped instead of failing the stream.")
	Records = mustCounter("copybook.records", "Physical records decoded.")
}

func mustCounter(name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		// The otel API only errors on invalid instrument names, which would
		// be a bug here, not a runtime condition.
		panic(err)
	}
	return c
}

// Add is a nil-safe convenience for incrementing a counter.
func Add(ctx context.Context, c metric.Int64Counter, n int64) {
	if c != nil {
		c.Add(ctx, n)
	}
}
