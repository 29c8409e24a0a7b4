package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/gotit/internal/config"
	"github.com/gokatarajesh/gotit/internal/handoff"
	"github.com/gokatarajesh/gotit/internal/metrics"
	"github.com/gokatarajesh/gotit/internal/notify"
	"github.com/gokatarajesh/gotit/internal/session"
)

func testConfig() *config.App {
	return &config.App{
		HTTPAddr: "127.0.0.1:0",
		CORS: config.CORS{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		},
	}
}

func TestHealthAndPing(t *testing.T) {
	srv := NewHTTPServer(testConfig(), zerolog.Nop(), nil, Handlers{})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong":true}`, rec.Body.String())
}

func TestPingFailure(t *testing.T) {
	down := func(context.Context) error { return errors.New("redis down") }
	srv := NewHTTPServer(testConfig(), zerolog.Nop(), nil, Handlers{}, down)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream_error")
}

func TestCORS(t *testing.T) {
	srv := NewHTTPServer(testConfig(), zerolog.Nop(), nil, Handlers{})

	preflight := httptest.NewRequest(http.MethodOptions, "/v1/quizzes", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	denied := httptest.NewRequest(http.MethodOptions, "/v1/quizzes", nil)
	denied.Header.Set("Origin", "http://localhost:3000")
	denied.Header.Set("Access-Control-Request-Method", "DELETE")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, denied)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	foreign := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	foreign.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, foreign)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	handoffs := handoff.NewService(handoff.NewMemoryStore(time.Hour), handoff.NewSigner(handoff.TokenConfig{Secret: []byte("k")}), zerolog.Nop())
	controller := session.NewController(notify.NewService(notify.NewLogSender(zerolog.Nop()), notify.Config{}, m, zerolog.Nop()), m, zerolog.Nop())
	sessions := session.NewService(handoffs, session.NewMemoryStore(time.Hour), controller, m, zerolog.Nop())

	srv := NewHTTPServer(testConfig(), zerolog.Nop(), m, Handlers{
		Sessions: session.NewHTTPHandlers(sessions, zerolog.Nop()),
	})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"handoffToken":"bad"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	count, err := testutil.GatherAndCount(reg, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
