package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/routemetrics/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file, apply ROUTEMETRICS_* environment overrides and
report every validation problem found.

Examples:
  routemetrics validate --config routemetrics.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), cfgFile, cfg)
	return nil
}

func printSummary(w io.Writer, path string, cfg *config.Config) {
	source := path
	if source == "" {
		source = "built-in defaults"
	}

	fmt.Fprintf(w, "✓ Configuration valid (%s)\n", source)
	fmt.Fprintf(w, "  collector: enabled=%t window=%ds history=%d schedule=%q\n",
		cfg.Collector.Enabled, cfg.Collector.WindowSeconds, cfg.Collector.HistoryCapacity, cfg.Collector.MemorySampleSchedule)
	fmt.Fprintf(w, "  exporter:  enabled=%t address=%s:%d path=%s\n",
		cfg.Exporter.Enabled, cfg.Exporter.Hostname, cfg.Exporter.Port, cfg.Exporter.MetricsPath)
	fmt.Fprintf(w, "  format:    engine=%s prefix=%s help=%t type=%t timestamps=%t\n",
		cfg.Format.Engine, cfg.Format.MetricPrefix, cfg.Format.IncludeHelp, cfg.Format.IncludeType, cfg.Format.IncludeTimestamp)
	if cfg.Tracing.Enabled {
		fmt.Fprintf(w, "  tracing:   endpoint=%s sampler=%s ratio=%g\n",
			cfg.Tracing.Endpoint, cfg.Tracing.Sampler, cfg.Tracing.SampleRatio)
	} else {
		fmt.Fprintln(w, "  tracing:   disabled")
	}
}
