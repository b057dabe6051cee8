// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server is the thin HTTP shim over the agent core: one turn
// endpoint, a health probe, and optional prometheus exposition.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kadirpekel/sitesmith/pkg/agents"
	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/observability"
)

// TurnRequest is the wire shape of one inbound turn. Context and Code are
// optional: when omitted, the server falls back to whatever it holds for
// the conversation id; when present, they win, so stateless clients can
// carry their own continuity.
type TurnRequest struct {
	ConversationID string                     `json:"conversation_id"`
	Prompt         string                     `json:"prompt"`
	Context        *convo.ConversationContext `json:"context,omitempty"`
	Code           *convo.GeneratedCode       `json:"code,omitempty"`
}

// TurnResponse wraps the agent response with the conversation id.
type TurnResponse struct {
	ConversationID string `json:"conversation_id"`
	*convo.AgentResponse
}

// Server hosts the turn endpoint.
type Server struct {
	core    *agents.Core
	cfg     *config.ServerConfig
	store   *store
	metrics *observability.Metrics
	http    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts /metrics backed by the given instrument set.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates the HTTP shim around an agent core.
func New(core *agents.Core, cfg *config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		core:  core,
		cfg:   cfg,
		store: newStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/v1/turn", s.handleTurn)
	r.Delete("/v1/conversations/{id}", s.handleDeleteConversation)

	if s.metrics != nil && s.cfg.MetricsEnabled() {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

// ListenAndServe blocks until the context is canceled, then drains with a
// graceful shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down HTTP server")
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	// Request-supplied state wins over the server-held copy.
	conversationCtx := req.Context
	code := req.Code
	if held, ok := s.store.get(req.ConversationID); ok {
		if conversationCtx == nil {
			conversationCtx = held.Context
		}
		if code == nil {
			code = held.Code
		}
	}

	slog.Info("Turn received",
		"conversation_id", req.ConversationID,
		"request_id", middleware.GetReqID(r.Context()),
		"prompt_length", len(req.Prompt),
	)

	resp := s.core.HandleTurn(r.Context(), req.Prompt, conversationCtx, code)

	// Persist the returned context and any fresh artifact for the next turn.
	held := &conversation{Context: resp.Context, Code: code}
	if resp.Action != nil && resp.Action.Code != nil {
		held.Code = resp.Action.Code
	}
	s.store.put(req.ConversationID, held)

	writeJSON(w, http.StatusOK, TurnResponse{
		ConversationID: req.ConversationID,
		AgentResponse:  resp,
	})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
