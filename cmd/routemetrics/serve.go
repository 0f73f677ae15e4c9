package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/routemetrics/pkg/cli"
	"mercator-hq/routemetrics/pkg/config"
	"mercator-hq/routemetrics/pkg/telemetry/export"
)

var serveFlags struct {
	listenPort int
	logLevel   string
	watch      bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metrics export server",
	Long: `Start collecting routing metrics and serve them over HTTP.

The server exposes:
  /metrics   Prometheus text exposition (path configurable)
  /health    JSON health report
  /          discovery document listing the endpoints

Process memory is sampled on the configured schedule so leak detection has
a steady stream of readings.

Examples:
  # Start with defaults (127.0.0.1:9090)
  routemetrics serve

  # Start with a config file and reload it when it changes
  routemetrics serve --config routemetrics.yaml --watch

  # Override the listen port
  routemetrics serve --listen-port 9191`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&serveFlags.listenPort, "listen-port", config.DefaultPort, "override exporter port (0 picks a free port)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload the config file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if cmd.Flags().Changed("listen-port") {
		cfg.Exporter.Port = serveFlags.listenPort
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}
	if serveFlags.watch {
		cfg.Watch = true
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	return serve(ctx, cfg, cfgFile, logger, cmd.OutOrStdout())
}

// serve runs the service until ctx is cancelled. When cfg.Watch is set and
// path names a file, the file is watched and changes are applied live.
func serve(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger, out io.Writer) error {
	svc, err := newService(cfg, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	if err := svc.start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer svc.stop()

	if cfg.Watch {
		if path == "" {
			logger.Warn("watch requested without a config file, ignoring")
		} else {
			watcher, err := config.NewWatcher(path, 0, logger)
			if err != nil {
				return cli.NewCommandError("serve", err)
			}
			defer watcher.Stop()

			go func() {
				if err := watcher.Watch(ctx, svc.apply); err != nil && ctx.Err() == nil {
					logger.Error("configuration watcher failed", "error", err)
				}
			}()
		}
	}

	if url := svc.url(); url != "" {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s%s\n", url, cfg.Exporter.MetricsPath)
		fmt.Fprintf(out, "✓ Health endpoint: %s%s\n", url, export.HealthPath)
	} else {
		fmt.Fprintln(out, "✓ Metrics export disabled, collecting only")
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "Shutting down...")
	return nil
}
