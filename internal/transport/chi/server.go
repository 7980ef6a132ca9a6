// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/run"
	healthuc "github.com/talentdex/talentdex/internal/usecase/health"
	pageuc "github.com/talentdex/talentdex/internal/usecase/page"
)

// noResultsMessage is shown when a search legitimately matched nothing.
const noResultsMessage = "No candidates matched your search. Try broadening the requirements or removing a constraint."

// SearchService is the consumer interface for run and page resolution (ISP).
type SearchService interface {
	CreateRun(ctx context.Context, userID, rawQuery string) (run.Run, error)
	GetRun(ctx context.Context, id string) (run.Run, error)
	GetPage(ctx context.Context, runID string, pageIndex int) (pageuc.Result, error)
}

// ExplanationReader is the consumer interface for explanation reads (ISP).
type ExplanationReader interface {
	Get(ctx context.Context, runID, candidateID string) (string, error)
}

// HealthService is the consumer interface for health checks (ISP).
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        SearchService
	explanations  ExplanationReader
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, explanations ExplanationReader, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		search:       search,
		explanations: explanations,
		health:       health,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRunNotFound, http.StatusNotFound, codeRunNotFound),
		sentinelHandler(domain.ErrExplanationNotFound, http.StatusNotFound, codeExplanationNotFound),
		sentinelHandler(domain.ErrInvalidCriteria, http.StatusUnprocessableEntity, codeCompilationFailed),
		sentinelHandler(domain.ErrInvalidPredicate, http.StatusUnprocessableEntity, codeCompilationFailed),
		sentinelHandler(domain.ErrMalformedCompilerOutput, http.StatusUnprocessableEntity, codeCompilationFailed),
		sentinelHandler(domain.ErrInferenceProvider, http.StatusBadGateway, codeInferenceProviderError),
		sentinelHandler(domain.ErrExecutionTimeout, http.StatusGatewayTimeout, codeExecutionTimeout),
		sentinelHandler(domain.ErrExecutionFailed, http.StatusBadGateway, codeExecutionFailed),
	}
	return s
}

// Routes mounts all API routes.
func (s *Server) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chirouter.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	for _, m := range mw {
		r.Use(m)
	}

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/runs", s.CreateRun)
		r.Get("/runs/{runID}", s.GetRun)
		r.Post("/runs/{runID}/pages/{pageIndex}", s.GetPage)
		r.Get("/runs/{runID}/candidates/{candidateID}/explanation", s.GetExplanation)
	})

	return r
}

type createRunRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

type runResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Status    string    `json:"status"`
	Criteria  []string  `json:"criteria,omitempty"`
	Retries   int       `json:"retries,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRun handles POST /api/v1/runs.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}
	if len(req.Query) > run.MaxQueryLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"query must be at most "+strconv.Itoa(run.MaxQueryLen)+" bytes")
		return
	}

	created, err := s.search.CreateRun(r.Context(), req.UserID, req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+created.ID())
	writeJSON(w, http.StatusCreated, runToResponse(created))
}

// GetRun handles GET /api/v1/runs/{runID}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	got, err := s.search.GetRun(r.Context(), chirouter.URLParam(r, "runID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(got))
}

type pageEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type pageResponse struct {
	NextPageIndex int         `json:"next_page_index"`
	Results       []pageEntry `json:"results"`
	IsNewSearch   bool        `json:"is_new_search"`
	Message       string      `json:"message,omitempty"`
}

// GetPage handles POST /api/v1/runs/{runID}/pages/{pageIndex}. POST because
// resolving a page may trigger compilation and datastore work; it is not a
// safe read.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	pageIndex, err := strconv.Atoi(chirouter.URLParam(r, "pageIndex"))
	if err != nil || pageIndex < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "page index must be a non-negative integer")
		return
	}

	result, err := s.search.GetPage(r.Context(), chirouter.URLParam(r, "runID"), pageIndex)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := pageResponse{
		NextPageIndex: result.NextPageIndex,
		Results:       entriesToResponse(result.Results),
		IsNewSearch:   result.IsNewSearch,
	}
	if result.NoResults {
		resp.Message = noResultsMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

type explanationResponse struct {
	RunID       string `json:"run_id"`
	CandidateID string `json:"candidate_id"`
	Explanation string `json:"explanation"`
}

// GetExplanation handles GET /api/v1/runs/{runID}/candidates/{candidateID}/explanation.
func (s *Server) GetExplanation(w http.ResponseWriter, r *http.Request) {
	runID := chirouter.URLParam(r, "runID")
	candidateID := chirouter.URLParam(r, "candidateID")

	text, err := s.explanations.Get(r.Context(), runID, candidateID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, explanationResponse{
		RunID:       runID,
		CandidateID: candidateID,
		Explanation: text,
	})
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

func runToResponse(r run.Run) runResponse {
	resp := runResponse{
		ID:        r.ID(),
		UserID:    r.UserID(),
		Query:     r.RawQuery(),
		Status:    r.Status(),
		Retries:   r.Retries(),
		CreatedAt: time.UnixMilli(r.CreatedAt()).UTC(),
	}
	if !r.Criteria().IsZero() {
		resp.Criteria = r.Criteria().Items()
	}
	return resp
}

func entriesToResponse(items []candidate.Scored) []pageEntry {
	out := make([]pageEntry, len(items))
	for i, s := range items {
		out[i] = pageEntry{ID: s.ID(), Score: s.Score()}
	}
	return out
}

type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeValidationFailed       errorCode = "validation_failed"
	codeRunNotFound            errorCode = "run_not_found"
	codeExplanationNotFound    errorCode = "explanation_not_found"
	codeCompilationFailed      errorCode = "compilation_failed"
	codeInferenceProviderError errorCode = "inference_provider_error"
	codeExecutionFailed        errorCode = "execution_failed"
	codeExecutionTimeout       errorCode = "execution_timeout"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRunNotFound,
		domain.ErrPageNotFound,
		domain.ErrExplanationNotFound,
		domain.ErrInvalidCriteria,
		domain.ErrInvalidPredicate,
		domain.ErrMalformedCompilerOutput,
		domain.ErrInferenceProvider,
		domain.ErrExecutionTimeout,
		domain.ErrExecutionFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
