package relevancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/relevancy/internal/db"
	dbBadger "github.com/kailas-cloud/relevancy/internal/db/badger"
	dbRedis "github.com/kailas-cloud/relevancy/internal/db/redis"
	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	resultsetrepo "github.com/kailas-cloud/relevancy/internal/repository/resultset"
	"github.com/kailas-cloud/relevancy/internal/similarity"
	embeddinguc "github.com/kailas-cloud/relevancy/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/relevancy/internal/usecase/health"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type scoringUseCase interface {
	Process(ctx context.Context, sets []domrs.Set, rawQuery string) (relevancyuc.Outcome, error)
	Rerank(ctx context.Context, searchID, rawQuery string) (relevancyuc.Outcome, error)
}

type resultSetRepository interface {
	Save(ctx context.Context, set domrs.Set) error
	Get(ctx context.Context, searchID, provider string) (domrs.Set, error)
	List(ctx context.Context, searchID string) ([]domrs.Set, error)
	Delete(ctx context.Context, searchID string) error
}

// Client is the relevancy entry point.
type Client struct {
	store     db.Store
	scorer    scoringUseCase
	results   resultSetRepository
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. With a store option it connects and waits for the
// store; the provided context bounds that readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	rcfg, err := relevancyConfig(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.driver != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("relevancy: store not ready: %w", err)
		}
	}

	return wireClient(store, cfg, rcfg, obs), nil
}

func relevancyConfig(cfg *clientConfig) (domain.RelevancyConfig, error) {
	rcfg := domain.DefaultRelevancyConfig()
	if len(cfg.fields) > 0 {
		rcfg.Fields = toDomainFields(cfg.fields)
	}
	if cfg.minSimilarity != nil {
		rcfg.MinSimilarity = *cfg.minSimilarity
	}
	if cfg.maxMatches != 0 {
		rcfg.MaxMatches = cfg.maxMatches
	}
	if err := rcfg.Validate(); err != nil {
		return domain.RelevancyConfig{}, fmt.Errorf("relevancy: %w", err)
	}
	return rcfg, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("relevancy: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "badger":
		if cfg.badgerPath == "" && !cfg.inMemory {
			return nil, errors.New("relevancy: badger path is required")
		}
		s, err := dbBadger.Open(dbBadger.Config{
			Path:     cfg.badgerPath,
			InMemory: cfg.inMemory,
			Logger:   cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("relevancy: open badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("relevancy: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, rcfg domain.RelevancyConfig, obs *observer) *Client {
	var (
		domEmb   domain.Embedder
		provider string
	)
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
		provider = "custom"
	} else {
		domEmb = embeddinguc.NewHashingEmbedder(0)
		provider = "hashing"
	}
	instrumented := embeddinguc.NewInstrumentedEmbedder(domEmb, provider, "", cfg.logger)
	vec := similarity.NewVectorizer(instrumented, cfg.cacheSize, cfg.logger)

	c := &Client{store: store, obs: obs}
	if store != nil {
		repo := resultsetrepo.New(store, cfg.resultTTL)
		c.results = repo
		c.scorer = relevancyuc.New(rcfg, vec, repo, cfg.logger)
		c.healthSvc = healthuc.New(store, instrumented, cfg.logger)
	} else {
		c.scorer = relevancyuc.New(rcfg, vec, nil, cfg.logger)
		c.healthSvc = healthuc.New(nil, instrumented, cfg.logger)
	}
	return c
}

// Process scores sets against query and returns them with scores,
// explanations and highlighted fields. With a store the scored sets are
// persisted under their SearchID. The input is not modified. When the query
// aborts the invocation the sets come back unscored alongside the error.
func (c *Client) Process(ctx context.Context, sets []ResultSet, query string) (Outcome, error) {
	start := time.Now()
	ctx, usage := domain.NewContextWithUsage(ctx)
	out, err := c.scorer.Process(ctx, toDomainSets(sets), query)
	c.obs.observe("process", start, err)
	if err != nil {
		return Outcome{ResultSets: sets}, fmt.Errorf("relevancy: process: %w", err)
	}
	return fromDomainOutcome(out, usage), nil
}

// Save stores an unscored provider result set for a later Rerank.
func (c *Client) Save(ctx context.Context, set ResultSet) error {
	if c.results == nil {
		return ErrNoStore
	}
	start := time.Now()
	ds := toDomainSet(&set)
	err := ds.Validate()
	if err == nil {
		err = c.results.Save(ctx, ds)
	}
	c.obs.observe("save", start, err)
	if err != nil {
		return fmt.Errorf("relevancy: save: %w", err)
	}
	return nil
}

// Get returns one provider's stored result set.
func (c *Client) Get(ctx context.Context, searchID, provider string) (ResultSet, error) {
	if c.results == nil {
		return ResultSet{}, ErrNoStore
	}
	start := time.Now()
	set, err := c.results.Get(ctx, searchID, provider)
	c.obs.observe("get", start, err)
	if err != nil {
		return ResultSet{}, fmt.Errorf("relevancy: get: %w", err)
	}
	return fromDomainSet(&set), nil
}

// List returns every stored result set of a search, ordered by provider rank.
func (c *Client) List(ctx context.Context, searchID string) ([]ResultSet, error) {
	if c.results == nil {
		return nil, ErrNoStore
	}
	start := time.Now()
	sets, err := c.results.List(ctx, searchID)
	c.obs.observe("list", start, err)
	if err != nil {
		return nil, fmt.Errorf("relevancy: list: %w", err)
	}
	return fromDomainSets(sets), nil
}

// Rerank scores the stored result sets of a search against query and
// persists the scored sets.
func (c *Client) Rerank(ctx context.Context, searchID, query string) (Outcome, error) {
	if c.results == nil {
		return Outcome{}, ErrNoStore
	}
	start := time.Now()
	ctx, usage := domain.NewContextWithUsage(ctx)
	out, err := c.scorer.Rerank(ctx, searchID, query)
	c.obs.observe("rerank", start, err)
	if err != nil {
		return Outcome{}, fmt.Errorf("relevancy: rerank: %w", err)
	}
	return fromDomainOutcome(out, usage), nil
}

// Delete removes every stored result set of a search.
func (c *Client) Delete(ctx context.Context, searchID string) error {
	if c.results == nil {
		return ErrNoStore
	}
	start := time.Now()
	err := c.results.Delete(ctx, searchID)
	c.obs.observe("delete", start, err)
	if err != nil {
		return fmt.Errorf("relevancy: delete: %w", err)
	}
	return nil
}

// Close releases the store connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}
