package export

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"mercator-hq/routemetrics/pkg/telemetry/logging"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// DiscoveryDocument is the body of GET /.
type DiscoveryDocument struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Endpoints      map[string]string `json:"endpoints"`
	Status         string            `json:"status"`
	ScrapeInterval string            `json:"scrape_interval"`
}

// Handler returns the server's routes wrapped in its middleware chain. It is
// usable on its own, e.g. with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if err := checkMetricsPath(s.config.MetricsPath); err != nil {
		s.logger.Error("metrics route not registered", "error", err)
	} else {
		mux.HandleFunc(s.config.MetricsPath, s.handleMetrics)
	}
	mux.HandleFunc(HealthPath, s.handleHealth)
	mux.HandleFunc(RootPath, s.handleRoot)

	var handler http.Handler = mux

	if s.config.EnableCORS {
		handler = corsMiddleware(handler)
	}
	handler = loggingMiddleware(s.logger)(handler)
	if s.config.Tracer != nil {
		handler = tracingMiddleware(s.config.Tracer, s.routeOf)(handler)
	}
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}

// routeOf names the route serving path; unknown paths fall to the root.
func (s *Server) routeOf(path string) string {
	switch path {
	case s.config.MetricsPath, HealthPath:
		return path
	}
	return RootPath
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}

	body, err := s.renderMetrics(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("failed to render metrics", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *Server) renderMetrics(ctx context.Context) (string, error) {
	if s.config.Handler != nil {
		return s.config.Handler(ctx)
	}

	snapshot := s.source.GetMetrics()
	return s.formatter.Format(&snapshot)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}

	report := s.checker.Check(r.Context())

	writeJSON(w, HealthResponse{
		Status:        report.Status,
		UptimeSeconds: s.uptime().Seconds(),
		Timestamp:     time.Now().UTC(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != RootPath {
		http.NotFound(w, r)
		return
	}
	if !requireGET(w, r) {
		return
	}

	report := s.checker.Check(r.Context())

	writeJSON(w, DiscoveryDocument{
		Name:    s.config.Name,
		Version: s.config.Version,
		Endpoints: map[string]string{
			"metrics": s.config.MetricsPath,
			"health":  HealthPath,
			"root":    RootPath,
		},
		Status:         report.Status,
		ScrapeInterval: s.config.ScrapeInterval.String(),
	})
}

// requireGET answers 405 with an Allow header for anything but GET.
func requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
