package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/routemetrics/pkg/cli"
	"mercator-hq/routemetrics/pkg/config"
	"mercator-hq/routemetrics/pkg/telemetry/exposition"
	"mercator-hq/routemetrics/pkg/telemetry/metrics"
)

var snapshotFlags struct {
	format string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print a single metrics snapshot",
	Long: `Take one memory reading and print the resulting snapshot.

The snapshot is rendered with the same settings the server uses, so it is a
quick way to preview the exposition output of a configuration.

Examples:
  # Prometheus text exposition
  routemetrics snapshot

  # Human-readable summary
  routemetrics snapshot --format text

  # JSON, e.g. for jq
  routemetrics snapshot --format json`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotFlags.format, "format", "f", "prometheus", "output format: prometheus, json, text")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(snapshotFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	collector := metrics.NewCollector(collectorConfig(cfg.Collector, logger))
	collector.RecordMemoryUsage()

	if err := writeSnapshot(cmd.OutOrStdout(), collector, format, cfg.Format); err != nil {
		return cli.NewCommandError("snapshot", err)
	}
	return nil
}

// writeSnapshot renders the current snapshot of source in format.
func writeSnapshot(w io.Writer, source exposition.SnapshotSource, format cli.OutputFormat, opts config.FormatConfig) error {
	switch format {
	case cli.FormatJSON:
		return cli.WriteJSON(w, source.GetMetrics())
	case cli.FormatText:
		return cli.WriteSections(w, snapshotSections(source.GetMetrics()))
	}

	handler, err := renderer(opts, source)
	if err != nil {
		return err
	}

	var out string
	if handler != nil {
		out, err = handler(context.Background())
	} else {
		snapshot := source.GetMetrics()
		out, err = exposition.NewFormatter(formatterOptions(opts)).Format(&snapshot)
	}
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)
	return err
}

func snapshotSections(s metrics.Snapshot) []cli.Section {
	errorFields := []cli.Field{
		{Name: "total", Value: strconv.FormatInt(s.Errors.TotalErrors, 10)},
		{Name: "rate", Value: formatFloat(s.Errors.Rate)},
	}
	types := make([]string, 0, len(s.Errors.ByType))
	for t := range s.Errors.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		errorFields = append(errorFields, cli.Field{
			Name:  fmt.Sprintf("by_type[%s]", t),
			Value: strconv.FormatInt(s.Errors.ByType[t], 10),
		})
	}

	return []cli.Section{
		{
			Title: fmt.Sprintf("Latency (ms, last %ds)", s.CollectionWindowSeconds),
			Fields: []cli.Field{
				{Name: "min", Value: formatFloat(s.Latency.Min)},
				{Name: "avg", Value: formatFloat(s.Latency.Avg)},
				{Name: "p50", Value: formatFloat(s.Latency.P50)},
				{Name: "p95", Value: formatFloat(s.Latency.P95)},
				{Name: "p99", Value: formatFloat(s.Latency.P99)},
				{Name: "max", Value: formatFloat(s.Latency.Max)},
				{Name: "samples", Value: strconv.FormatInt(s.Latency.TotalSamples, 10)},
			},
		},
		{
			Title: "Throughput",
			Fields: []cli.Field{
				{Name: "per_second", Value: formatFloat(s.Throughput.PerSecond)},
				{Name: "per_minute", Value: formatFloat(s.Throughput.PerMinute)},
				{Name: "per_hour", Value: formatFloat(s.Throughput.PerHour)},
				{Name: "total_requests", Value: strconv.FormatInt(s.Throughput.TotalRequests, 10)},
			},
		},
		{
			Title:  "Errors",
			Fields: errorFields,
		},
		{
			Title: "Memory (bytes)",
			Fields: []cli.Field{
				{Name: "current", Value: formatFloat(s.Memory.Current)},
				{Name: "peak", Value: formatFloat(s.Memory.Peak)},
				{Name: "heap", Value: formatOptional(s.Memory.Heap)},
				{Name: "external", Value: formatOptional(s.Memory.External)},
				{Name: "array_buffers", Value: formatOptional(s.Memory.ArrayBuffers)},
				{Name: "leak_detected", Value: strconv.FormatBool(s.Memory.LeakDetected)},
				{Name: "leak_trend", Value: string(s.Memory.LeakTrend)},
			},
		},
		{
			Title: "Route matching",
			Fields: []cli.Field{
				{Name: "evaluations", Value: strconv.FormatInt(s.MatchRates.TotalEvaluations, 10)},
				{Name: "matched", Value: strconv.FormatInt(s.MatchRates.SuccessfulMatches, 10)},
				{Name: "unmatched", Value: strconv.FormatInt(s.MatchRates.Unmatched, 10)},
				{Name: "rate", Value: formatFloat(s.MatchRates.Rate)},
			},
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v metrics.OptionalBytes) string {
	if !v.Valid {
		return "n/a"
	}
	return formatFloat(v.Value)
}
