package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/routemetrics/pkg/telemetry/exposition"
	"mercator-hq/routemetrics/pkg/telemetry/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Port = 0
	return cfg
}

func newTestServer(cfg Config) (*Server, *metrics.Collector) {
	collector := metrics.NewCollector(metrics.DefaultConfig())
	formatter := exposition.NewFormatter(exposition.DefaultOptions())
	return NewServer(cfg, collector, formatter, testLogger()), collector
}

// noKeepAliveClient opens a new connection per request so requests after
// Stop reach the closed listener.
func noKeepAliveClient() *http.Client {
	return &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

// TestNewServer tests configuration defaults.
func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(Config{Enabled: true})
	cfg := srv.Config()

	if cfg.Hostname != DefaultHostname {
		t.Errorf("expected hostname %q, got %q", DefaultHostname, cfg.Hostname)
	}
	if cfg.Port != 0 {
		t.Errorf("expected port 0 kept, got %d", cfg.Port)
	}
	if cfg.MetricsPath != DefaultMetricsPath {
		t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.MetricsPath)
	}
	if srv.IsRunning() {
		t.Error("expected new server stopped")
	}
	if srv.Addr() != "" || srv.URL() != "" {
		t.Error("expected no address before Start")
	}
	if names := srv.Checker().ListChecks(); len(names) != 1 || names[0] != "collector" {
		t.Errorf("expected collector health check, got %v", names)
	}
}

// TestDefaultConfig tests the default listen address.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled || cfg.Hostname != "127.0.0.1" || cfg.Port != 9090 || cfg.MetricsPath != "/metrics" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

// TestHandler_Routes tests status codes for every route.
func TestHandler_Routes(t *testing.T) {
	srv, collector := newTestServer(testConfig())
	collector.RecordLatency(12)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedType   string
		expectedAllow  string
	}{
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, ContentType, ""},
		{"health", http.MethodGet, "/health", http.StatusOK, "application/json", ""},
		{"root", http.MethodGet, "/", http.StatusOK, "application/json", ""},
		{"unknown path", http.MethodGet, "/unknown", http.StatusNotFound, "", ""},
		{"post metrics", http.MethodPost, "/metrics", http.StatusMethodNotAllowed, "", http.MethodGet},
		{"delete health", http.MethodDelete, "/health", http.StatusMethodNotAllowed, "", http.MethodGet},
		{"put root", http.MethodPut, "/", http.StatusMethodNotAllowed, "", http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("failed to build request: %v", err)
			}

			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
			if tt.expectedType != "" && resp.Header.Get("Content-Type") != tt.expectedType {
				t.Errorf("expected content type %q, got %q", tt.expectedType, resp.Header.Get("Content-Type"))
			}
			if tt.expectedAllow != "" && resp.Header.Get("Allow") != tt.expectedAllow {
				t.Errorf("expected Allow %q, got %q", tt.expectedAllow, resp.Header.Get("Allow"))
			}
			if resp.Header.Get(RequestIDHeader) == "" {
				t.Error("expected request ID header")
			}
		})
	}
}

// TestHandler_MetricsBody tests that /metrics renders the live collector.
func TestHandler_MetricsBody(t *testing.T) {
	srv, collector := newTestServer(testConfig())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	scrape := func() string {
		resp, err := ts.Client().Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("scrape failed: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	if body := scrape(); !strings.Contains(body, "routing_requests_total 0e+00\n") {
		t.Errorf("expected zero requests, got:\n%s", body)
	}

	collector.RecordLatency(10)
	collector.RecordLatency(20)
	collector.RecordError("timeout")

	body := scrape()
	for _, want := range []string{
		"# TYPE routing_requests_total counter\n",
		"routing_requests_total 2e+00\n",
		`routing_errors_by_type_total{error_type="timeout"} 1e+00`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body:\n%s", want, body)
		}
	}
}

// TestHandler_CustomMetricsPath tests a non-default metrics path.
func TestHandler_CustomMetricsPath(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsPath = "/custom/metrics"
	srv, _ := newTestServer(cfg)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/custom/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 on custom path, got %d", resp.StatusCode)
	}

	resp, err = ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on default path, got %d", resp.StatusCode)
	}
}

// TestHandler_CustomHandler tests the Handler override and its error path.
func TestHandler_CustomHandler(t *testing.T) {
	tests := []struct {
		name           string
		handler        MetricsHandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "custom body",
			handler: func(ctx context.Context) (string, error) {
				return "custom_metric 1\n", nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "custom_metric 1\n",
		},
		{
			name: "handler error",
			handler: func(ctx context.Context) (string, error) {
				return "", errors.New("registry unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Handler = tt.handler
			srv, _ := newTestServer(cfg)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if rec.Body.String() != tt.expectedBody {
				t.Errorf("expected body %q, got %q", tt.expectedBody, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "registry unavailable") {
				t.Error("expected internal error detail hidden from client")
			}
		})
	}
}

type failingFormatter struct{}

func (failingFormatter) Format(*metrics.Snapshot) (string, error) {
	return "", &exposition.FormatError{Err: exposition.ErrInvalidSnapshot}
}

type panickingFormatter struct{}

func (panickingFormatter) Format(*metrics.Snapshot) (string, error) {
	panic("formatter exploded")
}

// TestHandler_RenderFailures tests formatter errors and panics.
func TestHandler_RenderFailures(t *testing.T) {
	tests := []struct {
		name      string
		formatter SnapshotFormatter
	}{
		{"format error", failingFormatter{}},
		{"format panic", panickingFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := metrics.NewCollector(metrics.DefaultConfig())
			srv := NewServer(testConfig(), collector, tt.formatter, testLogger())

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected 500, got %d", rec.Code)
			}
			if strings.Contains(rec.Body.String(), "goroutine") || strings.Contains(rec.Body.String(), "exploded") {
				t.Errorf("expected no internals in body, got %q", rec.Body.String())
			}
		})
	}
}

// TestHandler_Health tests the health status against the collector state.
func TestHandler_Health(t *testing.T) {
	srv, collector := newTestServer(testConfig())
	handler := srv.Handler()

	get := func() HealthResponse {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		return resp
	}

	resp := get()
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if resp.UptimeSeconds != 0 {
		t.Errorf("expected zero uptime when not started, got %v", resp.UptimeSeconds)
	}

	collector.Disable()
	if resp := get(); resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy with collector disabled, got %q", resp.Status)
	}
}

// TestHandler_Root tests the discovery document.
func TestHandler_Root(t *testing.T) {
	cfg := testConfig()
	cfg.Name = "router-a"
	cfg.Version = "1.2.3"
	srv, _ := newTestServer(cfg)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var doc DiscoveryDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if doc.Name != "router-a" || doc.Version != "1.2.3" {
		t.Errorf("unexpected identity %q %q", doc.Name, doc.Version)
	}
	if doc.Endpoints["metrics"] != "/metrics" || doc.Endpoints["health"] != "/health" {
		t.Errorf("unexpected endpoints %v", doc.Endpoints)
	}
	if doc.Status != "healthy" {
		t.Errorf("expected healthy, got %q", doc.Status)
	}
	if doc.ScrapeInterval != "15s" {
		t.Errorf("expected scrape interval 15s, got %q", doc.ScrapeInterval)
	}
}

// TestHandler_RequestID tests that a client request ID is echoed back.
func TestHandler_RequestID(t *testing.T) {
	srv, _ := newTestServer(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "scrape-42")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "scrape-42" {
		t.Errorf("expected request ID echoed, got %q", got)
	}
}

// TestHandler_CORS tests CORS headers and preflight handling.
func TestHandler_CORS(t *testing.T) {
	tests := []struct {
		name           string
		enableCORS     bool
		method         string
		expectedStatus int
		expectedOrigin string
	}{
		{"disabled", false, http.MethodGet, http.StatusOK, ""},
		{"enabled get", true, http.MethodGet, http.StatusOK, "*"},
		{"enabled preflight", true, http.MethodOptions, http.StatusNoContent, "*"},
		{"disabled preflight", false, http.MethodOptions, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.EnableCORS = tt.enableCORS
			srv, _ := newTestServer(cfg)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, "/metrics", nil))

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.expectedOrigin {
				t.Errorf("expected origin %q, got %q", tt.expectedOrigin, got)
			}
		})
	}
}

// TestServer_Lifecycle tests start, scrape, stop against a real listener.
func TestServer_Lifecycle(t *testing.T) {
	srv, _ := newTestServer(testConfig())
	client := noKeepAliveClient()

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !srv.IsRunning() {
		t.Fatal("expected server running")
	}
	if srv.Addr() == "" || !strings.HasPrefix(srv.URL(), "http://127.0.0.1:") {
		t.Fatalf("unexpected address %q", srv.URL())
	}

	url := srv.URL()

	resp, err := client.Get(url + "/metrics")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = client.Get(url + "/health")
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	var health HealthResponse
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %q", health.Status)
	}

	srv.Stop()

	if srv.IsRunning() {
		t.Error("expected server stopped")
	}
	if srv.Addr() != "" {
		t.Errorf("expected no address after Stop, got %q", srv.Addr())
	}
	if _, err := client.Get(url + "/metrics"); err == nil {
		t.Error("expected connection failure after Stop")
	}

	// Stop is idempotent.
	srv.Stop()
}

// TestServer_DoubleStart tests that starting twice fails.
func TestServer_DoubleStart(t *testing.T) {
	srv, _ := newTestServer(testConfig())

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	err := srv.Start()
	if err == nil {
		t.Fatal("expected error on second Start")
	}
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	var lifecycleErr *LifecycleError
	if !errors.As(err, &lifecycleErr) || lifecycleErr.Op != "start" {
		t.Errorf("expected start LifecycleError, got %v", err)
	}
}

// TestServer_BindFailure tests that an occupied port fails Start.
func TestServer_BindFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer listener.Close()

	cfg := testConfig()
	cfg.Port = listener.Addr().(*net.TCPAddr).Port
	srv, _ := newTestServer(cfg)

	err = srv.Start()
	if err == nil {
		srv.Stop()
		t.Fatal("expected bind failure")
	}

	var lifecycleErr *LifecycleError
	if !errors.As(err, &lifecycleErr) {
		t.Fatalf("expected LifecycleError, got %T", err)
	}
	if !strings.Contains(err.Error(), strconv.Itoa(cfg.Port)) {
		t.Errorf("expected port in error, got %q", err.Error())
	}
	if srv.IsRunning() {
		t.Error("expected server not running after bind failure")
	}
}

// TestServer_InvalidMetricsPath tests that unroutable metrics paths fail
// Start with an error instead of a mux panic.
func TestServer_InvalidMetricsPath(t *testing.T) {
	for _, path := range []string{"/health", "/", "metrics", "/metrics/{name}"} {
		t.Run(path, func(t *testing.T) {
			cfg := testConfig()
			cfg.MetricsPath = path
			srv, _ := newTestServer(cfg)

			err := srv.Start()
			if err == nil {
				srv.Stop()
				t.Fatal("expected error for invalid metrics path")
			}

			var lifecycleErr *LifecycleError
			if !errors.As(err, &lifecycleErr) {
				t.Fatalf("expected LifecycleError, got %T", err)
			}
			if !errors.Is(err, ErrInvalidMetricsPath) {
				t.Errorf("expected ErrInvalidMetricsPath, got %v", err)
			}
			if srv.IsRunning() {
				t.Error("expected server not running")
			}

			// Handler alone still serves the fixed routes.
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("expected /health 200, got %d", rec.Code)
			}
		})
	}
}

// TestServer_Disabled tests that a disabled server does not bind.
func TestServer_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	srv, _ := newTestServer(cfg)

	if srv.IsEnabled() {
		t.Fatal("expected server disabled")
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if srv.IsRunning() {
		t.Error("expected disabled server not running")
	}

	srv.Enable()
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	if !srv.IsRunning() {
		t.Error("expected enabled server running")
	}
}

// TestServer_Restart tests that Restart rebinds a running server.
func TestServer_Restart(t *testing.T) {
	srv, _ := newTestServer(testConfig())

	// Restart of a stopped server does nothing.
	if err := srv.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if srv.IsRunning() {
		t.Fatal("expected stopped server to stay stopped")
	}

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	if err := srv.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if !srv.IsRunning() {
		t.Fatal("expected server running after Restart")
	}

	resp, err := noKeepAliveClient().Get(srv.URL() + "/health")
	if err != nil {
		t.Fatalf("request after Restart failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

// TestServer_ConcurrentScrapes tests many parallel scrapes while recording.
func TestServer_ConcurrentScrapes(t *testing.T) {
	srv, collector := newTestServer(testConfig())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				collector.RecordLatency(5)
			}
		}
	}()
	defer close(stop)

	var failures atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			resp, err := noKeepAliveClient().Get(srv.URL() + "/metrics")
			if err != nil {
				failures.Add(1)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				failures.Add(1)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if n := failures.Load(); n != 0 {
		t.Errorf("expected all scrapes to succeed, %d failed", n)
	}
}
