// Package web serves the BotFusion HTTP API: the chat completion
// endpoint the conversation controller talks to, and the session
// history endpoints the sidebar reads.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/RaoAkif/BotFusion/internal/chat"
	"github.com/RaoAkif/BotFusion/internal/gateway"
	"github.com/RaoAkif/BotFusion/internal/history"
	"github.com/RaoAkif/BotFusion/internal/store"
)

// writeJSON writes v as JSON, logging encode failures at debug.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Completer issues upstream completions for flattened transcript
// queries. [gateway.Gateway] is the production implementation.
type Completer interface {
	Complete(ctx context.Context, query, model string) (string, error)
}

// Server is the HTTP API server.
type Server struct {
	address   string
	port      int
	completer Completer
	limiter   *gateway.Limiter
	sessions  store.Store
	logger    *slog.Logger
	server    *http.Server
}

// NewServer creates an API server. The limiter may be nil to disable
// rate limiting; the session store may be nil when history endpoints
// are not wanted.
func NewServer(address string, port int, completer Completer, limiter *gateway.Limiter, sessions store.Store, logger *slog.Logger) *Server {
	return &Server{
		address:   address,
		port:      port,
		completer: completer,
		limiter:   limiter,
		sessions:  sessions,
		logger:    logger,
	}
}

// Handler builds the route table. Exposed separately so tests can drive
// the mux through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)

	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/history/{timestamp}", s.handleHistoryGet)
	mux.HandleFunc("GET /history/{timestamp}", s.handleHistoryPage)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Upstream completions can be slow
	}

	addr := s.address
	if addr == "" {
		addr = "0.0.0.0"
	}
	s.logger.Info("starting API server", "address", addr, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID,
			"duration", time.Since(start),
		)
	})
}

// chatRequest mirrors the client's completion request body.
type chatRequest struct {
	Query string `json:"query"`
	Model string `json:"model"`
}

// handleChat serves the completion contract: 200 {data} on success,
// 429 {remainingTime} when the client exhausted its window, plain
// failure status otherwise.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.errorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	if s.limiter != nil {
		ok, remaining := s.limiter.Allow(clientKey(r))
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			writeJSON(w, map[string]int{"remainingTime": remaining}, s.logger)
			return
		}
	}

	text, err := s.completer.Complete(r.Context(), req.Query, req.Model)
	if err != nil {
		s.logger.Error("completion failed", "model", req.Model, "error", err)
		s.errorResponse(w, http.StatusBadGateway, "completion failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"data": text}, s.logger)
}

// handleHistory returns all stored sessions grouped into recency
// buckets, newest first within each bucket.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "session store not configured")
		return
	}

	records, err := s.sessions.LoadAll()
	if err != nil {
		s.logger.Error("history load failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "history load failed")
		return
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, history.Categorize(records, time.Now()), s.logger)
}

// handleHistoryGet returns one stored session record by timestamp.
func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	rec := s.loadRecord(w, r)
	if rec == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, rec, s.logger)
}

// handleHistoryPage renders one stored session as an HTML transcript.
func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	rec := s.loadRecord(w, r)
	if rec == nil {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderTranscript(w, rec); err != nil {
		s.logger.Error("transcript render failed", "timestamp", rec.Timestamp, "error", err)
	}
}

// loadRecord resolves the {timestamp} path value to a stored record,
// writing the error response itself when there is nothing to render.
func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) *chat.Record {
	if s.sessions == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "session store not configured")
		return nil
	}

	timestamp := r.PathValue("timestamp")
	rec, err := s.sessions.LoadOne(timestamp)
	if err != nil {
		s.logger.Error("session load failed", "timestamp", timestamp, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "session load failed")
		return nil
	}
	if rec == nil {
		s.errorResponse(w, http.StatusNotFound, "session not found")
		return nil
	}
	return rec
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"name":   "BotFusion",
		"status": "ok",
	}, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "healthy"}, s.logger)
}

func (s *Server) errorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    code,
		},
	}, s.logger)
}

// clientKey identifies a client for rate limiting by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
