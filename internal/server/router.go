package server

import (
	"net/http"

	"esports-scoreboard/internal/middleware"
	"esports-scoreboard/internal/rpc"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// NewRouter mounts the connect service and the plain HTTP routes behind
// CORS and the request id middleware.
func NewRouter(scoreboard *ScoreboardServer, httpServer *HTTPServer, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	path, handler := rpc.NewScoreboardServiceHandler(scoreboard)
	r.PathPrefix(path).Handler(handler)
	httpServer.Register(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader, rpc.ErrorCodeHeader, "Content-Disposition"},
		AllowCredentials: true,
	})

	return middleware.RequestID(logger)(c.Handler(r))
}
