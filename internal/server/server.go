// Package server exposes explanations over HTTP. It is the repo's
// presentation adapter: it serves narratives as JSON and renders nothing
// itself.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/engine"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/store"
)

// Config holds server dependencies.
type Config struct {
	Log         zerolog.Logger
	Engine      *engine.Engine
	Store       store.Store
	Port        int
	DefaultMode model.Mode
}

// Server is the HTTP front end.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	engine      *engine.Engine
	store       store.Store
	defaultMode model.Mode
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log,
		engine:      cfg.Engine,
		store:       cfg.Store,
		defaultMode: cfg.DefaultMode,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/tickers", s.handleTickers)
	s.router.Get("/api/tickers/{ticker}/explanation", s.handleExplanation)
	s.router.Post("/api/explain", s.handleExplainAdhoc)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTickers(w http.ResponseWriter, _ *http.Request) {
	tickers, err := s.store.Tickers()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tickers": tickers})
}

// explanationResponse pairs the signal and decision explanations for one
// snapshot.
type explanationResponse struct {
	Ticker   string             `json:"ticker"`
	Mode     model.Mode         `json:"mode"`
	Signal   engine.Explanation `json:"signal"`
	Decision engine.Explanation `json:"decision"`
}

func (s *Server) handleExplanation(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	snap, err := s.store.Snapshot(ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("no snapshot for %s", ticker))
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if modeParam := r.URL.Query().Get("mode"); modeParam != "" {
		snap.Mode = model.ParseMode(modeParam)
	} else if snap.Mode == "" {
		snap.Mode = s.defaultMode
	}

	resp := s.explain(snap)
	s.audit(resp)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExplainAdhoc(w http.ResponseWriter, r *http.Request) {
	var snap model.IndicatorSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode snapshot: %w", err))
		return
	}
	if snap.Mode == "" {
		snap.Mode = s.defaultMode
	}
	s.writeJSON(w, http.StatusOK, s.explain(&snap))
}

func (s *Server) explain(snap *model.IndicatorSnapshot) explanationResponse {
	sig := s.engine.ExplainSignal(snap)
	dec := s.engine.ExplainDecision(snap, sig.Label)
	return explanationResponse{Ticker: snap.Ticker, Mode: snap.Mode, Signal: sig, Decision: dec}
}

// audit appends explanation rows; failures are logged, never surfaced.
func (s *Server) audit(resp explanationResponse) {
	records := []store.ExplanationRecord{
		{Ticker: resp.Ticker, Classifier: "SIGNAL", Mode: string(resp.Signal.Mode),
			Label: resp.Signal.Label, Resolved: resp.Signal.Resolved, Narrative: resp.Signal.Narrative},
		{Ticker: resp.Ticker, Classifier: "DECISION", Mode: string(resp.Decision.Mode),
			Label: resp.Decision.Label, Resolved: resp.Decision.Resolved, Narrative: resp.Decision.Narrative},
	}
	for i := range records {
		if err := s.store.RecordExplanation(&records[i]); err != nil {
			s.log.Error().Err(err).Str("ticker", resp.Ticker).Msg("record explanation")
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
