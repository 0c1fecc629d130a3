package relevancy

import (
	"errors"

	"github.com/kailas-cloud/relevancy/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrAllStopwords           = domain.ErrAllStopwords
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrInvalidRank            = domain.ErrInvalidRank
	ErrInvalidResultSet       = domain.ErrInvalidResultSet
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError

	// ErrNoStore is returned by persistence methods of a client created without a store option.
	ErrNoStore = errors.New("relevancy: no store configured (use WithValkey, WithRedis, WithBadger or WithInMemory)")
)

// QueryError reports the query that aborted an invocation. It unwraps to
// ErrAllStopwords or ErrEmptyQuery.
type QueryError = domain.QueryError
