package relevancy

import (
	"context"

	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	healthuc "github.com/kailas-cloud/relevancy/internal/usecase/health"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

// --- scoringUseCase mock ---

type mockScoringUC struct {
	processFn func(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error)
	rerankFn  func(ctx context.Context, searchID, rawQuery string) (relevancyuc.Outcome, error)
}

func (m *mockScoringUC) Process(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error) {
	return m.processFn(ctx, sets, rawQuery)
}

func (m *mockScoringUC) Rerank(ctx context.Context, searchID, rawQuery string) (relevancyuc.Outcome, error) {
	return m.rerankFn(ctx, searchID, rawQuery)
}

// --- resultSetRepository mock ---

type mockResultSetRepo struct {
	saveFn   func(ctx context.Context, set domrs.Set) error
	getFn    func(ctx context.Context, searchID, provider string) (domrs.Set, error)
	listFn   func(ctx context.Context, searchID string) ([]domrs.Set, error)
	deleteFn func(ctx context.Context, searchID string) error
}

func (m *mockResultSetRepo) Save(ctx context.Context, set domrs.Set) error {
	return m.saveFn(ctx, set)
}

func (m *mockResultSetRepo) Get(ctx context.Context, searchID, provider string) (domrs.Set, error) {
	return m.getFn(ctx, searchID, provider)
}

func (m *mockResultSetRepo) List(ctx context.Context, searchID string) ([]domrs.Set, error) {
	return m.listFn(ctx, searchID)
}

func (m *mockResultSetRepo) Delete(ctx context.Context, searchID string) error {
	return m.deleteFn(ctx, searchID)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
