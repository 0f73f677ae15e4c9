package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/routemetrics/pkg/cli"
	"mercator-hq/routemetrics/pkg/config"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "routemetrics",
	Short: "Routing performance metrics for Prometheus",
	Long: `Routemetrics collects performance metrics from a request routing engine
and exposes them to Prometheus.

It tracks:
  - Request latency percentiles over a rolling window
  - Throughput per second, minute and hour
  - Errors by type and the overall error rate
  - Process memory with leak detection
  - Route match rates

Configuration is read from a YAML file (--config) and ROUTEMETRICS_*
environment variables. Without a file the built-in defaults are used.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults when empty)")
}

// loadConfig loads path with environment overrides applied.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}
