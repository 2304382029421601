package directory

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("counciltax.lib.scrapers.directory")
