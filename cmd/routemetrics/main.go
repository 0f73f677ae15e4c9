// Routemetrics collects routing performance metrics and serves them to
// Prometheus.
//
// It records request latency, throughput, errors, memory usage and route
// match rates, and exposes them in the Prometheus text exposition format.
//
// Usage:
//
//	# Serve metrics with the default configuration
//	routemetrics serve
//
//	# Serve with a configuration file and reload it on change
//	routemetrics serve --config routemetrics.yaml --watch
//
//	# Print one snapshot and exit
//	routemetrics snapshot --format text
//
//	# Check a configuration file
//	routemetrics validate --config routemetrics.yaml
//
//	# Show version information
//	routemetrics version
package main

import "os"

func main() {
	os.Exit(Execute())
}
