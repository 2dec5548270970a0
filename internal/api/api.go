// Package api serves the current display rows over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matrixise/balance-board/internal/board"
	"github.com/matrixise/balance-board/internal/display"
	"github.com/matrixise/balance-board/internal/wallet"
)

// ViewSource exposes the latest published view
type ViewSource interface {
	Current() (*board.View, error)
}

// Server holds the HTTP handlers
type Server struct {
	views      ViewSource
	priorities wallet.PriorityTable
	health     http.HandlerFunc
	logger     *slog.Logger
}

// NewServer creates a server. health may be nil.
func NewServer(views ViewSource, priorities wallet.PriorityTable, health http.HandlerFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{views: views, priorities: priorities, health: health, logger: logger}
}

// Router builds the chi router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/rows", s.handleRows)
	r.Get("/rows/table", s.handleTable)
	r.Get("/priorities", s.handlePriorities)
	if s.health != nil {
		r.Get("/health", s.health)
	}
	return r
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	view, ok := s.current(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, display.NewDocument(view.GeneratedAt, view.Result, view.Skipped))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	view, ok := s.current(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(display.Table(view.Result.Rows) + "\n"))
}

type priorityEntry struct {
	Chain    string `json:"chain"`
	Priority int    `json:"priority"`
}

func (s *Server) handlePriorities(w http.ResponseWriter, _ *http.Request) {
	chains := s.priorities.Chains()
	out := make([]priorityEntry, 0, len(chains))
	for _, c := range chains {
		out = append(out, priorityEntry{Chain: c, Priority: s.priorities.PriorityOf(c)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) (*board.View, bool) {
	view, err := s.views.Current()
	if err == nil {
		return view, true
	}
	status := http.StatusInternalServerError
	if errors.Is(err, board.ErrNotReady) {
		status = http.StatusServiceUnavailable
	}
	s.logger.Warn("Rows unavailable", "error", err, "request_id", middleware.GetReqID(r.Context()))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
	return nil, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
