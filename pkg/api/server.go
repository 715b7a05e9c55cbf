// Package api exposes the traversal engine over HTTP: graph edits,
// run control, the event log, Prometheus metrics, and a WebSocket
// state stream.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmax-ai/wavefront/pkg/narrator"
	"github.com/rmax-ai/wavefront/pkg/store"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

// EventReader is the slice of the store the server reads from.
type EventReader interface {
	ReadRecentEvents(ctx context.Context, limit int) ([]*store.Event, error)
	Sessions(ctx context.Context) ([]string, error)
}

// Server encapsulates the HTTP API server.
type Server struct {
	run      *traversal.Run
	ticker   *traversal.Ticker
	recorder *store.Recorder
	events   EventReader
	narrator *narrator.Narrator
	hub      *hub
	server   *http.Server

	// Root context for ticker and narration work started by handlers.
	baseCtx context.Context
}

// NewServer wires the engine and its collaborators into an HTTP
// server on addr. recorder, events, and narr may be nil; the matching
// surfaces degrade gracefully.
func NewServer(ctx context.Context, run *traversal.Run, stepInterval time.Duration, recorder *store.Recorder, events EventReader, narr *narrator.Narrator, addr string) *Server {
	s := &Server{
		run:      run,
		recorder: recorder,
		events:   events,
		narrator: narr,
		hub:      newHub(),
		baseCtx:  ctx,
	}
	s.ticker = traversal.NewTicker(run, stepInterval, s.onStep)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/sessions", s.handleSessions)
	mux.HandleFunc("/v1/nodes", s.handleAddNode)
	mux.HandleFunc("/v1/edges", s.handleConnect)
	mux.HandleFunc("/v1/start", s.handleStart)
	mux.HandleFunc("/v1/step", s.handleStep)
	mux.HandleFunc("/v1/toggle", s.handleToggle)
	mux.HandleFunc("/v1/reset", s.handleReset)
	mux.HandleFunc("/v1/narration", s.handleNarration)
	mux.HandleFunc("/v1/stream", s.handleStream)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      withLogging(withRecovery(mux)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server (blocking).
func (s *Server) Start() error {
	slog.Info("api server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("api server stopping")
	s.hub.closeAll()
	return s.server.Shutdown(ctx)
}

// onStep is the ticker callback: record, narrate, broadcast.
func (s *Server) onStep(snap traversal.Snapshot) {
	if s.recorder != nil {
		s.recorder.StepCommitted(s.baseCtx, snap, "")
	}
	s.requestNarration(snap)
	s.hub.broadcast(snap)
}

func (s *Server) requestNarration(snap traversal.Snapshot) {
	if s.narrator == nil {
		return
	}
	s.narrator.Request(s.baseCtx, snap, func(u narrator.Update) {
		if !s.run.SetNarration(u.Text, u.Version) {
			return
		}
		if s.recorder != nil {
			s.recorder.NarrationSet(s.baseCtx, u.Version, u.Text)
		}
		s.hub.broadcast(s.run.Snapshot())
	})
}

// afterChange pushes the new state to stream subscribers.
func (s *Server) afterChange() {
	s.hub.broadcast(s.run.Snapshot())
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	snap := s.run.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": snap.Nodes,
		"edges": snap.Edges,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.run.Snapshot())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if s.events == nil {
		writeJSON(w, http.StatusOK, []*store.Event{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}

	events, err := s.events.ReadRecentEvents(r.Context(), limit)
	if err != nil {
		slog.Error("failed to read events", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error")
		return
	}
	if events == nil {
		events = []*store.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if s.events == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	sessions, err := s.events.Sessions(r.Context())
	if err != nil {
		slog.Error("failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error")
		return
	}
	if sessions == nil {
		sessions = []string{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	var req AddNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json_body")
		return
	}

	node, ok := s.run.AddNodeAt(req.X, req.Y)
	if !ok {
		writeError(w, http.StatusConflict, "not_editing")
		return
	}
	if s.recorder != nil {
		s.recorder.NodeAdded(r.Context(), s.run.Version(), node)
	}
	s.afterChange()
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json_body")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	edge, ok := s.run.Connect(req.From, req.To)
	if !ok {
		writeError(w, http.StatusConflict, "edge_rejected")
		return
	}
	if s.recorder != nil {
		s.recorder.EdgeAdded(r.Context(), s.run.Version(), edge)
	}
	s.afterChange()
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json_body")
		return
	}
	if req.NodeID == "" {
		writeError(w, http.StatusBadRequest, "missing_required_fields")
		return
	}

	if !s.run.SetStart(req.NodeID) {
		writeError(w, http.StatusConflict, "start_rejected")
		return
	}
	snap := s.run.Snapshot()
	if s.recorder != nil {
		s.recorder.StartChosen(r.Context(), snap.Version, req.NodeID)
	}
	s.requestNarration(snap)
	s.ticker.Kick(s.baseCtx)
	s.afterChange()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if !s.run.Step() {
		writeError(w, http.StatusConflict, "nothing_to_step")
		return
	}
	snap := s.run.Snapshot()
	if s.recorder != nil {
		s.recorder.StepCommitted(r.Context(), snap, "")
	}
	s.requestNarration(snap)
	s.afterChange()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if !s.run.Toggle() {
		writeError(w, http.StatusConflict, "toggle_rejected")
		return
	}
	snap := s.run.Snapshot()
	if s.recorder != nil {
		switch snap.Mode {
		case traversal.ModePaused:
			s.recorder.RunPaused(r.Context(), snap.Version)
		case traversal.ModeRunning:
			s.recorder.RunResumed(r.Context(), snap.Version)
		}
	}
	s.ticker.Kick(s.baseCtx)
	s.afterChange()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	s.run.Reset()
	if s.recorder != nil {
		s.recorder.RunReset(r.Context(), s.run.Version())
	}
	s.afterChange()
	writeJSON(w, http.StatusOK, s.run.Snapshot())
}

func (s *Server) handleNarration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	snap := s.run.Snapshot()
	writeJSON(w, http.StatusOK, NarrationResponse{
		Text:    snap.Narration,
		Version: snap.Version,
	})
}

// --- Helpers / middleware ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorResponse{Error: code})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panicked", "panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal_error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request handled", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
