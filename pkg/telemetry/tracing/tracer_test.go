package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/routemetrics/pkg/config"
)

func testConfig(sampler string, ratio float64) config.TracingConfig {
	cfg := config.DefaultConfig().Tracing
	cfg.Enabled = true
	cfg.Sampler = sampler
	cfg.SampleRatio = ratio
	cfg.ServiceName = "test-service"
	return cfg
}

func newRecordingTracer(t *testing.T, sampler string, ratio float64) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tracer, err := NewWithProcessor(testConfig(sampler, ratio), "1.2.3", recorder)
	if err != nil {
		t.Fatalf("NewWithProcessor failed: %v", err)
	}
	t.Cleanup(func() { tracer.Shutdown(context.Background()) })

	return tracer, recorder
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *config.TracingConfig)
		wantErr     bool
		wantEnabled bool
	}{
		{
			name:   "disabled",
			mutate: func(cfg *config.TracingConfig) { cfg.Enabled = false },
		},
		{
			name:        "otlp with ratio sampler",
			mutate:      func(cfg *config.TracingConfig) {},
			wantEnabled: true,
		},
		{
			name:    "unsupported exporter",
			mutate:  func(cfg *config.TracingConfig) { cfg.Exporter = "zipkin" },
			wantErr: true,
		},
		{
			name:    "invalid sampler",
			mutate:  func(cfg *config.TracingConfig) { cfg.Sampler = "sometimes" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(config.SamplerRatio, 0.5)
			tt.mutate(&cfg)

			tracer, err := New(cfg, "1.2.3")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("expected enabled=%t, got %t", tt.wantEnabled, tracer.Enabled())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := tracer.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown failed: %v", err)
			}
		})
	}
}

func TestNoop(t *testing.T) {
	tracer := Noop()

	ctx, span := tracer.Start(context.Background(), SpanRoutingDecision)
	span.End()

	if span.IsRecording() {
		t.Error("noop span should not record")
	}
	if TraceID(ctx) != "" {
		t.Errorf("expected no trace ID, got %q", TraceID(ctx))
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestTracer_Samplers(t *testing.T) {
	tests := []struct {
		sampler string
		ratio   float64
		want    int
	}{
		{config.SamplerAlways, 0, 1},
		{config.SamplerNever, 1, 0},
		{config.SamplerRatio, 1, 1},
		{config.SamplerRatio, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.sampler, func(t *testing.T) {
			tracer, recorder := newRecordingTracer(t, tt.sampler, tt.ratio)

			_, span := tracer.Start(context.Background(), SpanRoutingDecision)
			span.End()

			if got := len(recorder.Ended()); got != tt.want {
				t.Errorf("expected %d recorded spans, got %d", tt.want, got)
			}
		})
	}
}

func TestTracer_ResourceAttributes(t *testing.T) {
	tracer, recorder := newRecordingTracer(t, config.SamplerAlways, 1)

	_, span := tracer.Start(context.Background(), SpanRoutingDecision)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}

	found := map[string]string{}
	for _, kv := range ended[0].Resource().Attributes() {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["service.name"] != "test-service" {
		t.Errorf("expected service.name test-service, got %q", found["service.name"])
	}
	if found["service.version"] != "1.2.3" {
		t.Errorf("expected service.version 1.2.3, got %q", found["service.version"])
	}
}

func TestTracer_Propagation(t *testing.T) {
	tracer, recorder := newRecordingTracer(t, config.SamplerAlways, 1)

	ctx, parent := tracer.Start(context.Background(), "caller")
	headers := http.Header{}
	tracer.Inject(ctx, headers)
	parent.End()

	if headers.Get("traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	remote := tracer.Extract(context.Background(), headers)
	childCtx, child := tracer.Start(remote, SpanRoutingDecision)
	child.End()

	if TraceID(childCtx) != parent.SpanContext().TraceID().String() {
		t.Errorf("expected child in trace %s, got %s", parent.SpanContext().TraceID(), TraceID(childCtx))
	}

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	if ended[1].Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("expected child parented to the injected span")
	}
}

func TestTracer_ExtractWithoutHeaders(t *testing.T) {
	tracer := Noop()

	ctx := tracer.Extract(context.Background(), http.Header{})
	if TraceID(ctx) != "" {
		t.Error("expected no trace context")
	}
}

func TestSetStatusAndError(t *testing.T) {
	tracer, recorder := newRecordingTracer(t, config.SamplerAlways, 1)

	_, ok := tracer.Start(context.Background(), "ok")
	SetStatus(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	SetError(failed, errors.New("deadline"), "timeout")
	failed.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}

	if ended[0].Status().Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", ended[0].Status().Code)
	}

	if ended[1].Status().Code != codes.Error {
		t.Errorf("expected Error status, got %v", ended[1].Status().Code)
	}
	if v, ok := attrValue(ended[1], AttrErrorType); !ok || v.AsString() != "timeout" {
		t.Errorf("expected error type timeout, got %v", v)
	}
	if len(ended[1].Events()) != 1 || ended[1].Events()[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", ended[1].Events())
	}
}

func TestSetError_Nil(t *testing.T) {
	tracer, recorder := newRecordingTracer(t, config.SamplerAlways, 1)

	_, span := tracer.Start(context.Background(), "noop")
	SetError(span, nil, "timeout")
	span.End()

	if recorder.Ended()[0].Status().Code != codes.Unset {
		t.Error("expected status untouched for nil error")
	}
}

func TestAttributes(t *testing.T) {
	tracer, recorder := newRecordingTracer(t, config.SamplerAlways, 1)

	_, span := tracer.Start(context.Background(), SpanRoutingDecision)
	SetLatency(span, 12.5)
	SetRequestID(span, "req-1")
	SetRequestID(span, "")
	AddRuleEvaluated(span, true)
	span.SetAttributes(HTTPServerAttributes("GET", "/metrics")...)
	SetHTTPStatus(span, 200)
	span.End()

	got := recorder.Ended()[0]
	if v, _ := attrValue(got, AttrLatencyMs); v.AsFloat64() != 12.5 {
		t.Errorf("expected latency 12.5, got %v", v.AsFloat64())
	}
	if v, _ := attrValue(got, AttrRequestID); v.AsString() != "req-1" {
		t.Errorf("expected request id req-1, got %q", v.AsString())
	}
	if v, _ := attrValue(got, AttrHTTPRoute); v.AsString() != "/metrics" {
		t.Errorf("expected route /metrics, got %q", v.AsString())
	}
	if v, _ := attrValue(got, AttrHTTPStatus); v.AsInt64() != 200 {
		t.Errorf("expected status 200, got %d", v.AsInt64())
	}

	events := got.Events()
	if len(events) != 1 || events[0].Name != EventRuleEvaluated {
		t.Fatalf("expected one rule event, got %v", events)
	}
	if len(events[0].Attributes) != 1 || !events[0].Attributes[0].Value.AsBool() {
		t.Errorf("expected matched=true, got %v", events[0].Attributes)
	}
}

func TestCreateSampler_InvalidRatio(t *testing.T) {
	if _, err := createSampler(config.SamplerRatio, 1.5); err == nil {
		t.Error("expected error for ratio above 1")
	}
}
