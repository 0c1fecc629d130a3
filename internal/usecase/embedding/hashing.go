package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/metrics"
	"github.com/kailas-cloud/relevancy/internal/text"
)

// DefaultHashingDimensions is the vector size of the hashing embedder.
const DefaultHashingDimensions = 512

// HashingEmbedder is an offline embedder: a signed feature-hashed bag of stems.
// Texts sharing stems are similar, texts without any content token embed to the
// zero vector. It needs no network and is deterministic across processes.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a hashing embedder. dims <= 0 selects DefaultHashingDimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Embed implements domain.Embedder. Token usage is the number of tokens hashed.
func (h *HashingEmbedder) Embed(_ context.Context, s string) (domain.EmbeddingResult, error) {
	vec := make([]float32, h.dims)
	tokens := text.Tokens(text.Stem(text.Clean(s)))

	used := 0
	for _, tok := range tokens {
		if text.IsStopword(tok) {
			continue
		}
		hs := fnv.New64a()
		_, _ = hs.Write([]byte(tok))
		sum := hs.Sum64()

		idx := int(sum % uint64(h.dims))
		if sum>>63 == 1 {
			vec[idx]--
		} else {
			vec[idx]++
		}
		used++
	}
	normalize(vec)

	metrics.EmbeddingRequestsTotal.WithLabelValues("hashing", "fnv", "success").Inc()
	metrics.EmbeddingTokensTotal.WithLabelValues("hashing", "fnv", "total").Add(float64(used))

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: used,
		TotalTokens:  used,
	}, nil
}

// HealthCheck always succeeds.
func (h *HashingEmbedder) HealthCheck(context.Context) error { return nil }

func normalize(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
