package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"mercator-hq/routemetrics/pkg/config"
)

// createSampler creates a sampler for strategy. Every sampler is wrapped in
// ParentBased, so a sampled caller keeps its routing spans and an unsampled
// one drops them.
//
//	tracing:
//	  sampler: ratio
//	  sample_ratio: 0.1  # keep 10% of root traces
func createSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	var base sdktrace.Sampler

	switch strategy {
	case config.SamplerAlways:
		base = sdktrace.AlwaysSample()

	case config.SamplerNever:
		base = sdktrace.NeverSample()

	case config.SamplerRatio:
		if ratio < 0.0 || ratio > 1.0 {
			return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		// Consistent per trace ID across services.
		base = sdktrace.TraceIDRatioBased(ratio)

	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", strategy)
	}

	return sdktrace.ParentBased(base), nil
}
