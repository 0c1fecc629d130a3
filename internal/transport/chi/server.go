// Package chi serves the relevancy HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	"github.com/kailas-cloud/relevancy/internal/logger"
	healthuc "github.com/kailas-cloud/relevancy/internal/usecase/health"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 8 << 20

// scorer runs a scoring invocation.
type scorer interface {
	Process(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error)
}

// reranker scores the stored sets of a search.
type reranker interface {
	Rerank(ctx context.Context, searchID, rawQuery string) (relevancyuc.Outcome, error)
}

// resultStore persists result sets.
type resultStore interface {
	Save(ctx context.Context, set domrs.Set) error
	Get(ctx context.Context, searchID, provider string) (domrs.Set, error)
	List(ctx context.Context, searchID string) ([]domrs.Set, error)
	Delete(ctx context.Context, searchID string) error
}

// healthChecker reports component health.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the HTTP API.
type Server struct {
	rerank        reranker
	inline        scorer
	results       resultStore
	health        healthChecker
	logger        *zap.Logger
	maxBodyBytes  int64
	newID         func() string
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. rerank scores stored searches,
// inline scores request-supplied sets without persisting them.
func NewServer(
	rerank reranker,
	inline scorer,
	results resultStore,
	health healthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		rerank:       rerank,
		inline:       inline,
		results:      results,
		health:       health,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
		newID:        uuid.NewString,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrAllStopwords, http.StatusUnprocessableEntity, ErrorCodeAllStopwords),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusUnprocessableEntity, ErrorCodeEmptyQuery),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeSearchNotFound),
		sentinelHandler(domain.ErrInvalidRank, http.StatusBadRequest, ErrorCodeInvalidRank),
		sentinelHandler(domain.ErrInvalidResultSet, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingError),
		contextHandler,
	}
	return s
}

// WithMaxBodyBytes overrides the request body cap.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Post("/rerank", s.InlineRerank)
	r.Post("/searches", s.CreateSearch)
	r.Route("/searches/{search_id}", func(r chi.Router) {
		r.Get("/results", s.ListResultSets)
		r.Delete("/", s.DeleteSearch)
		r.Post("/rerank", s.RerankSearch)
		r.Get("/providers/{provider}", s.GetResultSet)
		r.Put("/providers/{provider}", s.PutResultSet)
	})
}

// CreateSearch handles POST /searches.
func (s *Server) CreateSearch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, CreateSearchResponse{SearchID: s.newID()})
}

// PutResultSet handles PUT /searches/{search_id}/providers/{provider}.
func (s *Server) PutResultSet(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.pathParam(w, r, "search_id")
	if !ok {
		return
	}
	provider, ok := s.pathParam(w, r, "provider")
	if !ok {
		return
	}

	var req PutResultSetRequest
	if !s.decode(w, r, &req) {
		return
	}

	set := domrs.Set{SearchID: searchID, Provider: provider, Rank: req.Rank, Results: req.Results}
	if set.Results == nil {
		set.Results = []domrs.Result{}
	}
	if err := set.Validate(); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.results.Save(r.Context(), set); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PutResultSetResponse{
		SearchID: searchID,
		Provider: provider,
		Results:  len(set.Results),
	})
}

// GetResultSet handles GET /searches/{search_id}/providers/{provider}.
func (s *Server) GetResultSet(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.pathParam(w, r, "search_id")
	if !ok {
		return
	}
	provider, ok := s.pathParam(w, r, "provider")
	if !ok {
		return
	}
	withExplain, ok := s.explainParam(w, r)
	if !ok {
		return
	}

	set, err := s.results.Get(r.Context(), searchID, provider)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	sets := []domrs.Set{set}
	if !withExplain {
		stripExplain(sets)
	}
	writeJSON(w, http.StatusOK, sets[0])
}

// ListResultSets handles GET /searches/{search_id}/results.
func (s *Server) ListResultSets(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.pathParam(w, r, "search_id")
	if !ok {
		return
	}
	withExplain, ok := s.explainParam(w, r)
	if !ok {
		return
	}

	sets, err := s.results.List(r.Context(), searchID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(sets) == 0 {
		s.handleDomainError(w, r, fmt.Errorf("search %q: %w", searchID, domain.ErrNotFound))
		return
	}
	if !withExplain {
		stripExplain(sets)
	}
	writeJSON(w, http.StatusOK, ResultSetsResponse{SearchID: searchID, ResultSets: sets})
}

// DeleteSearch handles DELETE /searches/{search_id}.
func (s *Server) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.pathParam(w, r, "search_id")
	if !ok {
		return
	}
	if err := s.results.Delete(r.Context(), searchID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RerankSearch handles POST /searches/{search_id}/rerank.
func (s *Server) RerankSearch(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.pathParam(w, r, "search_id")
	if !ok {
		return
	}
	withExplain, ok := s.explainParam(w, r)
	if !ok {
		return
	}
	var req RerankRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.rerank.Rerank(ctx, searchID, req.Query)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeOutcome(w, out, withExplain)
}

// InlineRerank handles POST /rerank.
func (s *Server) InlineRerank(w http.ResponseWriter, r *http.Request) {
	withExplain, ok := s.explainParam(w, r)
	if !ok {
		return
	}
	var req InlineRerankRequest
	if !s.decode(w, r, &req) {
		return
	}
	for i := range req.ResultSets {
		if err := req.ResultSets[i].Validate(); err != nil {
			s.handleDomainError(w, r, fmt.Errorf("result_sets[%d]: %w", i, err))
			return
		}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.inline.Process(ctx, req.ResultSets, req.Query)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeOutcome(w, out, withExplain)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writeOutcome(w http.ResponseWriter, out relevancyuc.Outcome, withExplain bool) {
	if !withExplain {
		stripExplain(out.Sets)
	}
	if out.Sets == nil {
		out.Sets = []domrs.Set{}
	}
	writeJSON(w, http.StatusOK, RerankResponse{
		Updated:    out.Updated,
		Excluded:   out.Excluded,
		ResultSets: out.Sets,
	})
}

func (s *Server) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || v == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter %s", name))
		return "", false
	}
	return v, true
}

// explainParam binds the optional explain query flag; explanations are included by default.
func (s *Server) explainParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var explain *bool
	if err := runtime.BindQueryParameter("form", true, false, "explain", r.URL.Query(), &explain); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter explain")
		return false, false
	}
	return explain == nil || *explain, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func stripExplain(sets []domrs.Set) {
	for i := range sets {
		for j := range sets[i].Results {
			sets[i].Results[j].Explain = nil
		}
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Requests > 0 {
		w.Header().Set("X-Embedding-Requests", strconv.Itoa(usage.Requests))
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Query and validation errors carry user input only, so their text is returned as is.
func safeDomainMessage(err error) string {
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		return qe.Error()
	}
	if errors.Is(err, domain.ErrInvalidRank) || errors.Is(err, domain.ErrInvalidResultSet) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// contextHandler maps a canceled or timed out request.
func contextHandler(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, ErrorCodeInternalError, "request timed out")
		return true
	case errors.Is(err, context.Canceled):
		writeError(w, 499, ErrorCodeInternalError, "request canceled")
		return true
	}
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
