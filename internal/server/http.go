package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/config"
	"github.com/gokatarajesh/gotit/internal/logging"
	"github.com/gokatarajesh/gotit/internal/metrics"
	"github.com/gokatarajesh/gotit/internal/notify"
	"github.com/gokatarajesh/gotit/internal/session"
	"github.com/gokatarajesh/gotit/internal/submission"
	httperrors "github.com/gokatarajesh/gotit/pkg/http/errors"
)

// PingFunc checks a backing dependency.
type PingFunc func(ctx context.Context) error

// Handlers groups the API handlers mounted on the server.
type Handlers struct {
	Submission    *submission.HTTPHandlers
	Sessions      *session.HTTPHandlers
	Notifications *notify.HTTPHandlers
}

// NewHTTPServer wires the API routes plus health and metrics endpoints.
// pings may be empty when every store is in memory.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, m *metrics.Metrics, h Handlers, pings ...PingFunc) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pings); err != nil {
			l := logging.FromContext(r.Context())
			l.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondBadGateway(w, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if h.Submission != nil {
		mux.HandleFunc("POST /v1/quizzes", h.Submission.Create)
	}

	if h.Sessions != nil {
		mux.HandleFunc("POST /v1/sessions", h.Sessions.Start)
		mux.HandleFunc("GET /v1/sessions/{id}", h.Sessions.Get)
		mux.HandleFunc("POST /v1/sessions/{id}/answer", h.Sessions.Answer)
		mux.HandleFunc("POST /v1/sessions/{id}/advance", h.Sessions.Advance)
		mux.HandleFunc("POST /v1/sessions/{id}/retreat", h.Sessions.Retreat)
		mux.HandleFunc("POST /v1/sessions/{id}/results/{index}/toggle", h.Sessions.ToggleRow)
		mux.HandleFunc("POST /v1/sessions/{id}/reset", h.Sessions.Reset)
	}

	if h.Notifications != nil {
		mux.HandleFunc("POST /v1/notifications", h.Notifications.Send)
	}

	var handler http.Handler = mux
	handler = m.Middleware(handler)
	handler = corsMiddleware(cfg.CORS, handler)
	handler = logging.Middleware(logger)(handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func pingDependencies(ctx context.Context, pings []PingFunc) error {
	for _, ping := range pings {
		if err := ping(ctx); err != nil {
			return err
		}
	}
	return nil
}
