// Package health runs named component checks and aggregates them into a
// single healthy/unhealthy report.
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("collector", func(ctx context.Context) error {
//	    if !collector.IsEnabled() {
//	        return errors.New("metrics collection disabled")
//	    }
//	    return nil
//	})
//
//	report := checker.Check(ctx)
//	if !report.Healthy() {
//	    // report.Checks names the failing components
//	}
//
// Checks run concurrently, each bounded by the checker timeout. A check that
// does not return in time is reported unhealthy with the message
// "health check timeout". With no checks registered the report is healthy.
//
// The export server uses a Checker to decide the status field of /health.
package health
