package server

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/gokatarajesh/gotit/internal/config"
)

// corsMiddleware answers preflight requests and decorates responses for
// allowed origins. Requests from other origins pass through undecorated.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}).Handler(next)
}
