package core

import (
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("counciltax.lib.scrapers.core")
