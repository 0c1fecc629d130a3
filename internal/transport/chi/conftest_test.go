package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	healthuc "github.com/kailas-cloud/relevancy/internal/usecase/health"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

type mockReranker struct {
	rerankFn func(ctx context.Context, searchID, rawQuery string) (relevancyuc.Outcome, error)
}

func (m *mockReranker) Rerank(ctx context.Context, searchID, rawQuery string) (relevancyuc.Outcome, error) {
	return m.rerankFn(ctx, searchID, rawQuery)
}

type mockScorer struct {
	processFn func(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error)
}

func (m *mockScorer) Process(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error) {
	return m.processFn(ctx, sets, rawQuery)
}

type mockResultStore struct {
	saveFn   func(ctx context.Context, set domrs.Set) error
	getFn    func(ctx context.Context, searchID, provider string) (domrs.Set, error)
	listFn   func(ctx context.Context, searchID string) ([]domrs.Set, error)
	deleteFn func(ctx context.Context, searchID string) error
}

func (m *mockResultStore) Save(ctx context.Context, set domrs.Set) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, set)
	}
	return nil
}

func (m *mockResultStore) Get(ctx context.Context, searchID, provider string) (domrs.Set, error) {
	if m.getFn != nil {
		return m.getFn(ctx, searchID, provider)
	}
	return domrs.Set{}, domain.ErrNotFound
}

func (m *mockResultStore) List(ctx context.Context, searchID string) ([]domrs.Set, error) {
	if m.listFn != nil {
		return m.listFn(ctx, searchID)
	}
	return nil, nil
}

func (m *mockResultStore) Delete(ctx context.Context, searchID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, searchID)
	}
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// testServer bundles the mocks behind a mounted router.
type testServer struct {
	rerank  *mockReranker
	inline  *mockScorer
	results *mockResultStore
	health  *mockHealth
	server  *Server
	router  chi.Router
}

func newTestServer() *testServer {
	ts := &testServer{
		rerank:  &mockReranker{},
		inline:  &mockScorer{},
		results: &mockResultStore{},
		health:  &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
	ts.server = NewServer(ts.rerank, ts.inline, ts.results, ts.health, nil)
	ts.router = chi.NewRouter()
	ts.server.Register(ts.router)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}
