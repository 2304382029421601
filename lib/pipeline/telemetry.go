package pipeline

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("counciltax.lib.pipeline")
