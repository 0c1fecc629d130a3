package relevancy

import (
	"context"

	"github.com/kailas-cloud/relevancy/internal/domain/resultset"
	"github.com/kailas-cloud/relevancy/internal/similarity"
)

// Vectorizer embeds text. A nil or all-zero vector means the text carries no signal.
type Vectorizer interface {
	Vector(ctx context.Context, text string) (similarity.Vector, error)
}

// Repository persists scored result sets.
type Repository interface {
	Save(ctx context.Context, set resultset.Set) error
	List(ctx context.Context, searchID string) ([]resultset.Set, error)
}
