package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for one scoring invocation.
// The caller puts a pointer into the context, the instrumented embedder adds to it,
// and the caller reads it afterwards (HTTP response headers, CLI summary).
type EmbeddingUsage struct {
	Requests    int
	TotalTokens int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Add records one embedding request and the tokens it consumed.
func (u *EmbeddingUsage) Add(tokens int) {
	if u != nil {
		u.Requests++
		u.TotalTokens += tokens
	}
}
