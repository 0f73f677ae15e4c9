// Package tracing provides OpenTelemetry spans for routing decisions and
// metrics scrapes.
//
// # Overview
//
// A Tracer wraps an OpenTelemetry SDK provider exporting over OTLP gRPC,
// or a noop provider when tracing is disabled. Routing decisions observed
// through routing.Instrument become "routing.decide" spans, and the export
// server opens a server span for every request it handles.
//
// # Trace Context Propagation
//
// Incoming requests are joined to their caller's trace through W3C Trace
// Context headers:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling Strategies
//
//   - always: Sample all traces
//   - never: Sample no traces
//   - ratio: Sample a fraction of root traces by trace ID
//
// All strategies defer to a sampled parent.
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanRoutingDecision)
//	defer span.End()
package tracing
