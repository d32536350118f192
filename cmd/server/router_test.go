package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   8080,
			LogLevel:               "debug",
			ShutdownTimeoutSeconds: 5,
			MetricsEnabled:         true,
		},
		Database: config.DatabaseConfig{
			Driver: config.DriverMemory,
		},
		Auth: config.AuthConfig{
			TokenLength:      20,
			MaxTokenAttempts: 10,
			BcryptCost:       4,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	log, _ := logger.NewTestLogger(t)

	app, err := newApplication(context.Background(), cfg, log)
	require.NoError(t, err)

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		srv.Close()
		app.cleanup()
	})
	return srv
}

func send(t *testing.T, method, url, token, body string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func register(t *testing.T, baseURL, email string) (id, token string) {
	t.Helper()

	resp, body := send(t, http.MethodPost, baseURL+"/users", "",
		`{"user":{"email":"`+email+`","password":"12345678","password_confirmation":"12345678"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var doc struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				AuthToken string `json:"auth-token"`
			} `json:"attributes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	return doc.Data.ID, doc.Data.Attributes.AuthToken
}

func TestRouterEndToEnd(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, body := send(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	_, token := register(t, srv.URL, "router@example.com")

	resp, body = send(t, http.MethodPost, srv.URL+"/tasks", token, `{"task":{"title":"Buy a new notebook"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	resp, _ = send(t, http.MethodGet, srv.URL+"/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = send(t, http.MethodGet, srv.URL+"/tasks/not-a-uuid", token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "trace_id")

	resp, body = send(t, http.MethodGet, srv.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `taskmanager_http_requests_total{method="POST",route="/tasks",status_code="201"} 1`)
	assert.Contains(t, body, `route="/tasks/{id}"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRouterWithoutMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MetricsEnabled = false
	srv := newTestServer(t, cfg)

	resp, _ := send(t, http.MethodGet, srv.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	srv := newTestServer(t, cfg)

	_, token := register(t, srv.URL, "busy@example.com")
	_, other := register(t, srv.URL, "calm@example.com")

	for i := 0; i < 2; i++ {
		resp, _ := send(t, http.MethodGet, srv.URL+"/tasks", token, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ := send(t, http.MethodGet, srv.URL+"/tasks", token, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	resp, _ = send(t, http.MethodGet, srv.URL+"/tasks", other, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Public routes are never throttled.
	resp, _ = send(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := send(t, http.MethodGet, srv.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "taskmanager_rate_limited_requests_total 1")
}

func TestNewApplicationRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "sqlite"
	log, _ := logger.NewTestLogger(t)

	_, err := newApplication(context.Background(), cfg, log)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestHandleMigrationsRequiresPostgres(t *testing.T) {
	log, _ := logger.NewTestLogger(t)

	err := handleMigrations(context.Background(), testConfig(), "up", log)
	assert.ErrorContains(t, err, "migrations require")
}
