package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRoutingDecision = "routing.decide"
	EventRuleEvaluated  = "routing.rule_evaluated"
)

// Attribute keys. HTTP keys follow OpenTelemetry semantic conventions;
// the rest use the "routemetrics.*" namespace.
const (
	AttrLatencyMs    = "routemetrics.latency_ms"
	AttrMatched      = "routemetrics.route.matched"
	AttrRequestID    = "routemetrics.request_id"
	AttrErrorType    = "routemetrics.error.type"
	AttrErrorMessage = "error.message"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
)

// SetLatency records a successful decision's latency in milliseconds.
func SetLatency(span trace.Span, ms float64) {
	span.SetAttributes(attribute.Float64(AttrLatencyMs, ms))
}

// AddRuleEvaluated adds a rule evaluation event to span.
func AddRuleEvaluated(span trace.Span, matched bool) {
	span.AddEvent(EventRuleEvaluated, trace.WithAttributes(attribute.Bool(AttrMatched, matched)))
}

// SetRequestID tags span with the request ID, if any.
func SetRequestID(span trace.Span, requestID string) {
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
}

// HTTPServerAttributes returns the attributes for an incoming request.
func HTTPServerAttributes(method, route string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
	}
}

// SetHTTPStatus records the response status code.
func SetHTTPStatus(span trace.Span, status int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
}
