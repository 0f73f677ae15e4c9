// Package logging builds the structured slog logger used across routemetrics.
//
// Components accept an optional *slog.Logger and fall back to slog.Default()
// tagged with a "component" attribute. The CLI builds the process logger
// once from configuration and installs it with slog.SetDefault:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// Request-scoped loggers carry the request ID set by the export server's
// middleware:
//
//	logging.FromContext(r.Context(), logger).Info("scrape served")
package logging
