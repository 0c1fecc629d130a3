package batch

import (
	"context"

	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

// Scorer runs one scoring invocation.
type Scorer interface {
	Process(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error)
}
