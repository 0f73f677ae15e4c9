// Package export serves routing metrics over HTTP for Prometheus scrapers.
//
// # Routes
//
//	GET {metricsPath}   Prometheus text exposition (default /metrics)
//	GET /health         {"status":"healthy","uptime_seconds":...,"timestamp":...}
//	GET /               discovery document listing the endpoints
//
// Any other method on a known route gets 405 with "Allow: GET". Unknown paths
// get 404. Rendering failures get a plain-text 500. Handler panics are
// recovered and never leak stack traces to the client.
//
// Every scrape takes a fresh snapshot from the collector; nothing is cached,
// so concurrent scrapes may observe slightly different data.
//
// # Lifecycle
//
//	server := export.NewServer(export.DefaultConfig(), collector, formatter, logger)
//	if err := server.Start(); err != nil {
//	    return err // already running, or the address could not be bound
//	}
//	defer server.Stop()
//
// Start binds synchronously and serves in the background. Stop releases the
// listening socket before returning and never fails; shutdown errors are
// logged. A disabled server's Start is a logged no-op.
package export
