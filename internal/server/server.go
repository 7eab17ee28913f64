// Package server exposes the command agent over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-command-agent/internal/agent/processor"
	apperrors "ai-command-agent/internal/common/errors"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/models"
)

const defaultHistoryLimit = 50

type Server struct {
	processor  *processor.Processor
	logger     logger.Logger
	httpServer *http.Server
}

func New(proc *processor.Processor, addr string, log logger.Logger) *Server {
	s := &Server{
		processor: proc,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/parse", s.handleParse)
	mux.HandleFunc("/api/v1/batch", s.handleBatch)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/history", s.handleHistory)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, &apperrors.StandardError{
			Code:    "NOT_FOUND",
			Message: "Unknown endpoint",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "ai-command-agent",
		"version":   s.processor.Version(),
		"status":    "running",
		"providers": s.processor.Providers(),
		"endpoints": map[string]string{
			"parse":   "/api/v1/parse",
			"batch":   "/api/v1/batch",
			"stats":   "/api/v1/stats",
			"history": "/api/v1/history",
			"health":  "/health",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.processor.Health(r.Context())
	code := http.StatusOK
	if health.Status != models.HealthHealthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, health)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	var req models.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewRequestValidationError("malformed JSON body"))
		return
	}

	resp, err := s.processor.Parse(r.Context(), req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	var reqs []models.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewRequestValidationError("malformed JSON body, expected an array of commands"))
		return
	}

	resp, err := s.processor.Batch(r.Context(), reqs)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	s.writeJSON(w, http.StatusOK, s.processor.Stats())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, apperrors.NewRequestValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := s.processor.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   len(records),
	})
}

func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeRequestValidationFailed, apperrors.ErrCodeBatchSizeExceeded:
		return http.StatusBadRequest
	case apperrors.ErrCodeNoProvidersConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.writeError(w, http.StatusMethodNotAllowed, &apperrors.StandardError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "Method not allowed",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	body := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(apperrors.CodeOf(err)),
			"message": err.Error(),
		},
	}
	if se, ok := err.(*apperrors.StandardError); ok {
		body["error"].(map[string]interface{})["message"] = se.Message
		if se.Details != "" {
			body["error"].(map[string]interface{})["details"] = se.Details
		}
	}
	s.writeJSON(w, code, body)
}
