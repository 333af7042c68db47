package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"esports-scoreboard/internal/api"
	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/notify"
	"esports-scoreboard/internal/repository"
	"esports-scoreboard/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// HTTPServer serves the plain HTTP routes: health and export downloads.
// events and webhook may be nil when the archive or relay is not wired.
type HTTPServer struct {
	tournament *service.TournamentService
	exports    *service.ExportService
	hub        *notify.Hub
	events     *repository.EventRepository
	webhook    *api.WebhookClient
	logger     zerolog.Logger
}

func NewHTTPServer(
	tournament *service.TournamentService,
	exports *service.ExportService,
	hub *notify.Hub,
	events *repository.EventRepository,
	webhook *api.WebhookClient,
	logger zerolog.Logger,
) *HTTPServer {
	return &HTTPServer{
		tournament: tournament,
		exports:    exports,
		hub:        hub,
		events:     events,
		webhook:    webhook,
		logger:     logger,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

type health struct {
	Status         string                       `json:"status"`
	Timestamp      time.Time                    `json:"timestamp"`
	MatchState     domain.MatchState            `json:"matchState"`
	Teams          int                          `json:"teams"`
	Subscribers    int                          `json:"subscribers"`
	Delivered      uint64                       `json:"deliveredEvents"`
	Dropped        uint64                       `json:"droppedEvents"`
	Pending        int                          `json:"pendingEvents"`
	ArchivedEvents int                          `json:"archivedEvents"`
	Webhooks       map[string]api.DeliveryStats `json:"webhooks,omitempty"`
}

func (s *HTTPServer) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/export/data", s.exportData).Methods(http.MethodGet)
	api.HandleFunc("/export/json", s.exportJSON).Methods(http.MethodGet)
	api.HandleFunc("/export/excel", s.exportExcel).Methods(http.MethodGet)
	api.HandleFunc("/export/files", s.exportFiles).Methods(http.MethodGet)

	r.HandleFunc("/exports/{filename}", s.download).Methods(http.MethodGet)
}

// health reports "degraded" with a 503 when the event archive cannot be
// read; the scoreboard itself keeps serving.
func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	snap := s.tournament.Snapshot()
	h := health{
		Status:      "ok",
		Timestamp:   snap.TakenAt,
		MatchState:  snap.MatchState,
		Teams:       len(snap.Leaderboard),
		Subscribers: s.hub.SubscriberCount(),
		Delivered:   s.hub.Delivered(),
		Dropped:     s.hub.Dropped(),
		Pending:     s.hub.Pending(),
	}
	if s.webhook != nil && s.webhook.Enabled() {
		h.Webhooks = s.webhook.Stats()
	}

	status := http.StatusOK
	if s.events != nil {
		ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
		defer cancel()
		n, err := s.events.Count(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("health check could not read event archive")
			h.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		h.ArchivedEvents = n
	}
	writeJSON(w, status, h)
}

func (s *HTTPServer) exportData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: s.exports.Document()})
}

func (s *HTTPServer) exportJSON(w http.ResponseWriter, r *http.Request) {
	file, err := s.exports.SaveJSON(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveFile(w, r, file, "application/json")
}

func (s *HTTPServer) exportExcel(w http.ResponseWriter, r *http.Request) {
	file, err := s.exports.SaveExcel(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveFile(w, r, file, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (s *HTTPServer) exportFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.exports.ListFiles(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count := len(files)
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: files})
}

func (s *HTTPServer) download(w http.ResponseWriter, r *http.Request) {
	file, err := s.exports.Open(r.Context(), mux.Vars(r)["filename"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	contentType := "application/json"
	if file.Format == domain.ExportExcel {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	s.serveFile(w, r, file, contentType)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request, file domain.ExportFile, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	http.ServeFile(w, r, file.Path)
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		status = http.StatusNotFound
	}

	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}
	logger.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeJSON(w, status, envelope{Success: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
