// Package routing connects a routing engine to the metrics collector.
//
// An Instrument wraps each routing decision, recording its latency when it
// succeeds and its error type when it fails:
//
//	collector := metrics.NewCollector(metrics.DefaultConfig())
//	inst := routing.NewInstrument(collector, logger)
//
//	err := inst.Observe(ctx, func(ctx context.Context) error {
//		return engine.Route(ctx, req)
//	})
//
// Rule evaluations are reported separately with ObserveMatch.
//
// With WithTracer, every decision started through Observe or StartContext
// also becomes a "routing.decide" span. Rule evaluations reported on the
// Tracker are added to that span as events.
//
// ErrorType maps errors to the short labels exported as error_type. The
// routing sentinels (ErrNoRouteMatched, ErrNoHealthyProviders,
// ErrProviderNotFound, ErrAllProvidersFailed) each have a label; context
// deadlines map to "timeout" and network failures to "connection_error".
// Errors can name their own label by implementing Classifier.
package routing
