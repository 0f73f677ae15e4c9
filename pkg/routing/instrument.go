package routing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/routemetrics/pkg/telemetry/logging"
	"mercator-hq/routemetrics/pkg/telemetry/tracing"
)

// Recorder receives routing outcomes. *metrics.Collector satisfies it.
type Recorder interface {
	RecordLatency(ms float64)
	RecordError(errorType string)
	RecordMatchEvaluation(matched bool)
}

// Instrument times routing decisions and forwards their outcome to a
// Recorder: successes as latency samples, failures as error types.
type Instrument struct {
	recorder Recorder
	tracer   *tracing.Tracer
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Instrument.
type Option func(*Instrument)

// WithTracer opens a span for every decision started with a context.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(i *Instrument) {
		i.tracer = tracer
	}
}

// NewInstrument creates an Instrument that records into recorder.
func NewInstrument(recorder Recorder, logger *slog.Logger, opts ...Option) *Instrument {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Instrument{
		recorder: recorder,
		now:      time.Now,
		logger:   logger.With("component", "routing.instrument"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Observe runs decide and records its outcome. The error returned by decide
// is passed through unchanged.
//
// Example:
//
//	err := inst.Observe(ctx, func(ctx context.Context) error {
//		return router.Route(ctx, req)
//	})
func (i *Instrument) Observe(ctx context.Context, decide func(ctx context.Context) error) error {
	ctx, tracker := i.StartContext(ctx)
	err := decide(ctx)
	tracker.Done(err)
	return err
}

// ObserveMatch records the outcome of one rule evaluation.
func (i *Instrument) ObserveMatch(matched bool) {
	i.recorder.RecordMatchEvaluation(matched)
}

// Start begins timing a routing decision. Call Done on the returned
// Tracker when the decision completes.
func (i *Instrument) Start() *Tracker {
	return &Tracker{inst: i, start: i.now()}
}

// StartContext is Start with a "routing.decide" span opened under ctx when
// the Instrument has a tracer. The returned context carries the span.
func (i *Instrument) StartContext(ctx context.Context) (context.Context, *Tracker) {
	tracker := i.Start()
	if i.tracer != nil {
		ctx, tracker.span = i.tracer.Start(ctx, tracing.SpanRoutingDecision)
		tracing.SetRequestID(tracker.span, logging.GetRequestID(ctx))
	}
	return ctx, tracker
}

// Tracker times a single routing decision.
type Tracker struct {
	inst  *Instrument
	start time.Time
	span  trace.Span
	once  sync.Once
}

// ObserveMatch records a rule evaluation made during the decision.
func (t *Tracker) ObserveMatch(matched bool) {
	t.inst.recorder.RecordMatchEvaluation(matched)
	if t.span != nil {
		tracing.AddRuleEvaluated(t.span, matched)
	}
}

// Done records the decision. A nil err records the elapsed time in
// milliseconds; a non-nil err records its ErrorType. Only the first call
// has an effect.
func (t *Tracker) Done(err error) {
	t.once.Do(func() {
		if t.span != nil {
			defer t.span.End()
		}

		if err != nil {
			errorType := ErrorType(err)
			t.inst.logger.Debug("routing decision failed", "error_type", errorType, "error", err)
			t.inst.recorder.RecordError(errorType)
			if t.span != nil {
				tracing.SetError(t.span, err, errorType)
			}
			return
		}

		elapsed := t.inst.now().Sub(t.start)
		ms := float64(elapsed) / float64(time.Millisecond)
		t.inst.recorder.RecordLatency(ms)
		if t.span != nil {
			tracing.SetLatency(t.span, ms)
			tracing.SetStatus(t.span, nil)
		}
	})
}
