// Package chi implements the HTTP API: a thin layer of decoding, validation
// and error mapping in front of the use case services.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	chirouter "github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
	"github.com/community-brain/braintrust/internal/metrics"
	answeruc "github.com/community-brain/braintrust/internal/usecase/answer"
	expertsuc "github.com/community-brain/braintrust/internal/usecase/experts"
	healthuc "github.com/community-brain/braintrust/internal/usecase/health"
	searchuc "github.com/community-brain/braintrust/internal/usecase/search"
	summarizeuc "github.com/community-brain/braintrust/internal/usecase/summarize"
)

// Request validation bounds.
const (
	MinQuestionLen = 5
	MaxQuestionLen = 1000
	MinQueryLen    = 5
)

// Error codes returned in the JSON error envelope.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeThreadNotFound   = "thread_not_found"
	CodeInternalError    = "internal_error"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server hosts the assistant HTTP API.
type Server struct {
	answer    *answeruc.Service
	search    *searchuc.Service
	summarize *summarizeuc.Service
	experts   *expertsuc.Service
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	answer *answeruc.Service,
	search *searchuc.Service,
	summarize *summarizeuc.Service,
	experts *expertsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		answer:    answer,
		search:    search,
		summarize: summarize,
		experts:   experts,
		health:    health,
		logger:    logger,
	}
}

// Router builds the chi router with middleware and all routes mounted.
// extra middleware runs after request ID assignment and before auth.
func (s *Server) Router(apiKeys []string, extra ...func(http.Handler) http.Handler) http.Handler {
	r := chirouter.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverer)
	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/assistant", func(r chirouter.Router) {
		r.Post("/ask", s.Ask)
		r.Post("/similar", s.Similar)
		r.Post("/summarize", s.Summarize)
		r.Post("/experts", s.Experts)
	})

	return r
}

type askRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k"`
}

type sourceThreadDTO struct {
	ThreadID       string  `json:"thread_id"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
	Excerpt        string  `json:"excerpt"`
}

type askResponse struct {
	Answer     string            `json:"answer"`
	Sources    []sourceThreadDTO `json:"sources"`
	Confidence float64           `json:"confidence"`
}

// Ask handles POST /api/assistant/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if n := utf8.RuneCountInString(req.Question); n < MinQuestionLen || n > MaxQuestionLen {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("question must be between %d and %d characters", MinQuestionLen, MaxQuestionLen))
		return
	}

	topK, ok := resolveTopK(req.TopK, answeruc.DefaultTopK, answeruc.MaxTopK)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("top_k must be between 1 and %d", answeruc.MaxTopK))
		return
	}

	result, err := s.answer.Ask(r.Context(), req.Question, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sources := make([]sourceThreadDTO, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, sourceThreadDTO{
			ThreadID:       src.ThreadID,
			Title:          src.Title,
			RelevanceScore: src.RelevanceScore,
			Excerpt:        src.Excerpt,
		})
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:     result.Answer,
		Sources:    sources,
		Confidence: result.Confidence,
	})
}

type similarRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k"`
}

type similarThreadDTO struct {
	ThreadID        string   `json:"thread_id"`
	Title           string   `json:"title"`
	SimilarityScore float64  `json:"similarity_score"`
	Tags            []string `json:"tags,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// Similar handles POST /api/assistant/similar.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if utf8.RuneCountInString(req.Query) < MinQueryLen {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("query must be at least %d characters", MinQueryLen))
		return
	}

	topK, ok := resolveTopK(req.TopK, searchuc.DefaultTopK, searchuc.MaxTopK)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("top_k must be between 1 and %d", searchuc.MaxTopK))
		return
	}

	threads, err := s.search.FindSimilar(r.Context(), req.Query, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]similarThreadDTO, 0, len(threads))
	for _, t := range threads {
		items = append(items, similarThreadDTO{
			ThreadID:        t.ThreadID,
			Title:           t.Title,
			SimilarityScore: t.SimilarityScore,
			Tags:            t.Tags,
			CreatedAt:       t.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"threads": items})
}

type summarizeRequest struct {
	ThreadID string `json:"thread_id"`
}

type summaryResponse struct {
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	Consensus     *string  `json:"consensus"`
	OpenQuestions []string `json:"open_questions"`
}

// Summarize handles POST /api/assistant/summarize.
func (s *Server) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.ThreadID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "thread_id is required")
		return
	}

	summary, err := s.summarize.SummarizeThread(r.Context(), req.ThreadID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:       summary.Summary,
		KeyPoints:     summary.KeyPoints,
		Consensus:     summary.Consensus,
		OpenQuestions: summary.OpenQuestions,
	})
}

type expertsRequest struct {
	Tags []string `json:"tags"`
	TopK *int     `json:"top_k"`
}

type expertDTO struct {
	UserID                string  `json:"user_id"`
	Username              string  `json:"username"`
	ExpertiseScore        float64 `json:"expertise_score"`
	RelevantContributions int     `json:"relevant_contributions"`
}

// Experts handles POST /api/assistant/experts.
func (s *Server) Experts(w http.ResponseWriter, r *http.Request) {
	var req expertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Tags) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "tags must be a non-empty list")
		return
	}

	topK, ok := resolveTopK(req.TopK, expertsuc.DefaultLimit, expertsuc.MaxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("top_k must be between 1 and %d", expertsuc.MaxLimit))
		return
	}

	experts, err := s.experts.Recommend(r.Context(), req.Tags, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]expertDTO, 0, len(experts))
	for _, e := range experts {
		items = append(items, expertDTO{
			UserID:                e.UserID,
			Username:              e.Username,
			ExpertiseScore:        e.ExpertiseScore,
			RelevantContributions: e.RelevantContributions,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"experts": items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// resolveTopK validates an explicitly provided top_k and applies the default
// for absent ones. ok is false when the provided value is out of range.
func resolveTopK(p *int, def, max int) (topK int, ok bool) {
	if p == nil {
		return def, true
	}
	if *p < 1 || *p > max {
		return 0, false
	}
	return *p, true
}

// handleDomainError maps sentinel errors to status codes. Everything that is
// not the caller's fault, provider and index failures included, is a 500 with
// an opaque internal_error code; the log carries the cause.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, CodeValidationFailed, domain.ErrInvalidRequest.Error())
	case errors.Is(err, domain.ErrThreadNotFound):
		writeError(w, http.StatusNotFound, CodeThreadNotFound, domain.ErrThreadNotFound.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

// recoverer converts handler panics into JSON 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
