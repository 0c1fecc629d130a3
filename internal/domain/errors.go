package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAllStopwords signals a query whose positive terms are all stopwords.
	ErrAllStopwords = errors.New("query is all stopwords")
	// ErrEmptyQuery signals a query that stems to nothing.
	ErrEmptyQuery = errors.New("stemmed query is empty")
	// ErrInvalidRank signals a provider rank that is not a positive integer.
	ErrInvalidRank = errors.New("provider rank must be positive")
	// ErrInvalidResultSet signals a malformed result set.
	ErrInvalidResultSet = errors.New("invalid result set")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// QueryError reports a query-level failure that aborts a scoring invocation.
// It unwraps to ErrAllStopwords or ErrEmptyQuery.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Query)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewAllStopwordsError creates a QueryError for an all-stopwords query.
func NewAllStopwordsError(query string) error {
	return &QueryError{Query: query, Err: ErrAllStopwords}
}

// NewEmptyQueryError creates a QueryError for a query with no stemmed tokens.
func NewEmptyQueryError(query string) error {
	return &QueryError{Query: query, Err: ErrEmptyQuery}
}
