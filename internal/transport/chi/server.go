package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/domain"
	"github.com/askledger/askledger/internal/usecase/ask"
	"github.com/askledger/askledger/internal/version"
)

// Asker answers natural-language questions.
type Asker interface {
	Ask(ctx context.Context, question string) (ask.Answer, error)
}

// DatasetReader exposes read-only dataset aggregates.
type DatasetReader interface {
	SummaryStats() domain.SummaryStats
	Len() int
}

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type askRequest struct {
	Question string `json:"question"`
}

// Server exposes the question-answering API.
type Server struct {
	asker   Asker
	dataset DatasetReader
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(asker Asker, dataset DatasetReader, logger *zap.Logger) *Server {
	return &Server{asker: asker, dataset: dataset, logger: logger}
}

// Register mounts the API routes on r. Middleware is the caller's
// concern; only the route handlers live here.
func (s *Server) Register(r chi.Router) {
	r.Post("/ask", s.handleAsk)
	r.Get("/summary", s.handleSummary)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleAsk answers one question per request.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleSummary returns the dataset aggregates directly, bypassing the
// parsers.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dataset.SummaryStats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"invoices": s.dataset.Len(),
		"version":  version.Version,
	})
}

// handleDomainError maps sentinel errors to HTTP statuses without
// exposing internals for anything unexpected.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrClassifierUnavailable), errors.Is(err, domain.ErrClassifierFailure):
		writeError(w, http.StatusBadGateway, codeInternalError, "classifier unavailable")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
