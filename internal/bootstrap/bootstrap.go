// Package bootstrap assembles stores, embedder chains and the scoring service from config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/config"
	"github.com/kailas-cloud/relevancy/internal/db"
	dbBadger "github.com/kailas-cloud/relevancy/internal/db/badger"
	dbRedis "github.com/kailas-cloud/relevancy/internal/db/redis"
	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/metrics"
	"github.com/kailas-cloud/relevancy/internal/repository/embcache"
	resultsetrepo "github.com/kailas-cloud/relevancy/internal/repository/resultset"
	"github.com/kailas-cloud/relevancy/internal/similarity"
	openaiEmb "github.com/kailas-cloud/relevancy/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/relevancy/internal/usecase/embedding"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

// OpenStore creates the configured store and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverBadger:
		store, err = dbBadger.Open(dbBadger.Config{
			Path:     cfg.Path,
			InMemory: cfg.InMemory,
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

// BuildEmbedder assembles the decorator chain of the active vectorizer:
// provider -> Cached -> Instrumented -> Instruction. store may be nil.
func BuildEmbedder(cfg *config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	vecCfg, provCfg := cfg.ActiveVectorizer()
	provName := vecCfg.Provider

	var embedder domain.Embedder
	switch provCfg.Kind {
	case config.ProviderHashing:
		embedder = embeddinguc.NewHashingEmbedder(vecCfg.Dimensions)
	default:
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:        provCfg.APIKey,
			BaseURL:       provCfg.BaseURL,
			Model:         vecCfg.Model,
			Dimensions:    vecCfg.Dimensions,
			Provider:      provName,
			MaxInputRunes: vecCfg.MaxInputRunes,
			Logger:        logger,
		})
		embedder = base
		if store != nil && cfg.Embedding.Cache.Store {
			embedder = embcache.New(base, store, embcache.Options{
				Namespace:  provName + "/" + vecCfg.Model,
				TTL:        time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second,
				CacheTotal: metrics.EmbeddingCacheTotal,
			}, logger)
		}
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provName, vecCfg.Model, logger)

	// Instruction prefix (outermost, so the cache key includes it)
	if vecCfg.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, vecCfg.Instruction)
	}
	return embedder
}

// NewRelevancy wires the scoring service over an embedder. store may be nil,
// in which case scored sets are not persisted.
func NewRelevancy(
	cfg *config.Config, embedder domain.Embedder, store db.Store, logger *zap.Logger,
) *relevancyuc.Service {
	vec := similarity.NewVectorizer(embedder, cfg.Embedding.Cache.LRUSize, logger)

	var repo relevancyuc.Repository
	if store != nil {
		repo = resultsetrepo.New(store, cfg.Storage.ResultTTL())
	}
	return relevancyuc.New(cfg.Relevancy.Domain(), vec, repo, logger)
}
