// Package server exposes the router over HTTP: POST /ask answers a
// question, GET /prompts lists the prompt bank, GET /health reports
// liveness.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/promptbank"
	"github.com/aide-analytics/aide-cli/internal/router"
	"github.com/aide-analytics/aide-cli/internal/store"
)

// Server holds the routing pipeline plus the loaded datasets; the
// frames are read-only for the process lifetime, so handlers share
// them without locking.
type Server struct {
	router  *router.Router
	bank    *promptbank.Bank
	history store.Store // nil disables persistence
	pnl     *dataset.Frame
	ut      *dataset.Frame
	log     *zap.Logger
}

// New builds a server. history and ut may be nil.
func New(r *router.Router, bank *promptbank.Bank, history store.Store, pnl, ut *dataset.Frame) *Server {
	return &Server{
		router:  r,
		bank:    bank,
		history: history,
		pnl:     pnl,
		ut:      ut,
		log:     zap.L().Named("server"),
	}
}

// Handler assembles the chi route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/prompts", s.handlePrompts)
	r.Post("/ask", s.handleAsk)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"pnl_rows":  s.pnl.Len(),
		"ut_loaded": s.ut != nil,
	})
}

func (s *Server) handlePrompts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bank.Entries())
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	res := s.router.Route(r.Context(), req.Question, s.pnl, s.ut)

	if s.history != nil {
		rec := model.AskRecord{
			Question: req.Question,
			Mode:     res.Mode,
			QID:      res.QID,
			Score:    res.Score,
		}
		if err := s.history.SaveAsk(r.Context(), rec); err != nil {
			s.log.Warn("save ask failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response failed", zap.Error(err))
	}
}
