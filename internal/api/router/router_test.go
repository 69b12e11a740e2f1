package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/internal/catalog"
	"github.com/wolfman30/clinic-secretary/internal/clinic"
	"github.com/wolfman30/clinic-secretary/internal/observability/metrics"
	"github.com/wolfman30/clinic-secretary/internal/secretary"
	"github.com/wolfman30/clinic-secretary/internal/validation"
	"github.com/wolfman30/clinic-secretary/internal/webchat"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.New("error")
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	now := func() time.Time { return time.Date(2025, 12, 8, 9, 0, 0, 0, loc) }

	cat := catalog.Default()
	repo := booking.NewInMemoryRepository()
	opts := validation.Options{Now: now}
	cfgSource := validation.StaticConfig(nil)
	validator := validation.NewValidator(cat,
		validation.NewChecker(cfgSource, repo, opts),
		validation.NewSlotFinder(cfgSource, repo, opts),
	)
	bookings := booking.NewService(repo, validator, booking.Options{Now: now, Logger: logger})
	sec := secretary.New(validator, bookings, nil, secretary.Options{Now: now, Logger: logger})

	reg := prometheus.NewRegistry()
	cfg := &Config{
		Logger:             logger,
		HTTPObserver:       metrics.NewSecretaryMetrics(reg),
		CatalogHandler:     catalog.NewHandler(cat, logger),
		BookingHandler:     booking.NewHandler(bookings, logger),
		SecretaryHandler:   secretary.NewHandler(sec, logger),
		WebChat:            webchat.NewHandler(sec, logger),
		ClinicHandler:      clinic.NewHandler(clinic.NewStore(nil, nil), logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://clinic.example"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, cfg)
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := serve(router, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("expected request id header")
	}
}

func TestRouterCatalogEndpoints(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := serve(router, http.MethodGet, "/api/services", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Детский массаж") {
		t.Fatalf("expected services in body: %s", rr.Body.String())
	}

	rr = serve(router, http.MethodGet, "/api/specialists", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Авраам") {
		t.Fatalf("unexpected specialists response %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterChatEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := serve(router, http.MethodPost, "/api/chat", `{"message": "Хочу детский массаж"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp secretary.Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	if resp.SessionID == "" || resp.Intent != secretary.IntentCollectName {
		t.Fatalf("unexpected chat response %+v", resp)
	}

	rr = serve(router, http.MethodGet, "/api/chat/history?session="+resp.SessionID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected history 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Хочу детский массаж") {
		t.Fatalf("expected history to contain message: %s", rr.Body.String())
	}
}

func TestRouterSlotsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	q := url.Values{}
	q.Set("specialist", "Авраам")
	q.Set("date", "09.12.2025")
	q.Set("service", "Детский массаж")
	rr := serve(router, http.MethodGet, "/api/slots?"+q.Encode(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "10:00") {
		t.Fatalf("expected first slot in body: %s", rr.Body.String())
	}
}

func TestRouterClinicConfig(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := serve(router, http.MethodGet, "/api/clinic", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"country":"IL"`) {
		t.Fatalf("expected default clinic config: %s", rr.Body.String())
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	serve(router, http.MethodGet, "/health", "")
	rr := serve(router, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "clinic_http_request_duration_seconds") {
		t.Fatalf("expected http latency histogram to be exported")
	}
}

func TestRouterChatRateLimit(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.ChatRateLimitPerSec = 0.001
		cfg.ChatRateLimitBurst = 1
	})

	rr := serve(router, http.MethodPost, "/api/chat", `{"message": "Привет"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}
	rr = serve(router, http.MethodPost, "/api/chat", `{"message": "Привет"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}

	rr = serve(router, http.MethodGet, "/api/services", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("catalog must not be rate limited, got %d", rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://clinic.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestRouterOmitsUnconfiguredRoutes(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.BookingHandler = nil
		cfg.MetricsHandler = nil
	})

	if rr := serve(router, http.MethodGet, "/api/appointments?phone=0501234567", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without booking handler, got %d", rr.Code)
	}
	if rr := serve(router, http.MethodGet, "/metrics", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rr.Code)
	}
}
