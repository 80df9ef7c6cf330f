package generation

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("pictures2pages/generation")
