package calculator

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("counciltax.lib.scrapers.calculator")
