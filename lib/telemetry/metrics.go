package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var runMeter = otel.Meter("counciltax.pipeline")

var (
	RequestCounter, _       = runMeter.Int64Counter("counciltax.requests", metric.WithDescription("outbound http requests"))
	RowsWrittenCounter, _   = runMeter.Int64Counter("counciltax.rows_written", metric.WithDescription("csv rows written"))
	EntityFailureCounter, _ = runMeter.Int64Counter("counciltax.entity_failures", metric.WithDescription("entities skipped without a row"))
	BandFailureCounter, _   = runMeter.Int64Counter("counciltax.band_failures", metric.WithDescription("band cells left empty"))
)
