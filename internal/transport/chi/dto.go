package chi

import (
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeInvalidRank      ErrorCode = "invalid_rank"
	ErrorCodeSearchNotFound   ErrorCode = "search_not_found"
	ErrorCodeAllStopwords     ErrorCode = "all_stopwords"
	ErrorCodeEmptyQuery       ErrorCode = "empty_query"
	ErrorCodeEmbeddingError   ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CreateSearchResponse is the body of POST /searches.
type CreateSearchResponse struct {
	SearchID string `json:"search_id"`
}

// PutResultSetRequest is the body of PUT /searches/{search_id}/providers/{provider}.
type PutResultSetRequest struct {
	Rank    int            `json:"rank"`
	Results []domrs.Result `json:"results"`
}

// PutResultSetResponse acknowledges a stored result set.
type PutResultSetResponse struct {
	SearchID string `json:"search_id"`
	Provider string `json:"provider"`
	Results  int    `json:"results"`
}

// RerankRequest is the body of POST /searches/{search_id}/rerank.
type RerankRequest struct {
	Query string `json:"query"`
}

// InlineRerankRequest is the body of POST /rerank: result sets travel with the query.
type InlineRerankRequest struct {
	Query      string      `json:"query"`
	ResultSets []domrs.Set `json:"result_sets"`
}

// RerankResponse carries the scored result sets.
type RerankResponse struct {
	Updated    int         `json:"updated"`
	Excluded   int         `json:"excluded"`
	ResultSets []domrs.Set `json:"result_sets"`
}

// ResultSetsResponse is the body of GET /searches/{search_id}/results.
type ResultSetsResponse struct {
	SearchID   string      `json:"search_id"`
	ResultSets []domrs.Set `json:"result_sets"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
