// Package similarity turns text into vectors and compares them.
package similarity

import (
	"context"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
)

// DefaultCacheSize bounds the in-process vector memo.
const DefaultCacheSize = 4096

// Vector is a text embedding.
type Vector []float32

// Degenerate reports whether the vector carries no information (empty or all zero).
func (v Vector) Degenerate() bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b clamped to [0,1].
// Mismatched dimensions and zero norms yield 0.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, sim))
}

// Vectorizer embeds text through a domain.Embedder and memoizes vectors by text.
// Re-ranking embeds the same query targets and windows many times per invocation.
type Vectorizer struct {
	embedder domain.Embedder
	cache    *lru.Cache[string, Vector]
	logger   *zap.Logger
}

// NewVectorizer creates a Vectorizer. cacheSize <= 0 selects DefaultCacheSize.
func NewVectorizer(embedder domain.Embedder, cacheSize int, logger *zap.Logger) *Vectorizer {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Vector](cacheSize)
	if err != nil {
		cache, _ = lru.New[string, Vector](DefaultCacheSize)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vectorizer{embedder: embedder, cache: cache, logger: logger}
}

// Vector returns the embedding of text. Blank text has a degenerate (nil) vector.
func (v *Vectorizer) Vector(ctx context.Context, text string) (Vector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if vec, ok := v.cache.Get(text); ok {
		return vec, nil
	}

	res, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	domain.UsageFromContext(ctx).Add(res.TotalTokens)

	vec := Vector(res.Embedding)
	v.cache.Add(text, vec)
	return vec, nil
}

// Similarity embeds both texts and returns their cosine similarity.
func (v *Vectorizer) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := v.Vector(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := v.Vector(ctx, b)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb), nil
}

// Len returns the number of memoized vectors.
func (v *Vectorizer) Len() int { return v.cache.Len() }
