package archive

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("counciltax.lib.recordio.archive")
