package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/bootstrap"
	"github.com/kailas-cloud/relevancy/internal/db"
	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
)

// rerankOutput is what the rerank command prints.
type rerankOutput struct {
	Query           string      `json:"query"`
	Updated         int         `json:"updated"`
	Excluded        int         `json:"excluded"`
	EmbeddingTokens int         `json:"embedding_tokens"`
	ResultSets      []domrs.Set `json:"result_sets"`
}

func rerankCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var sets []domrs.Set
	if err := readJSON(c.String("input"), &sets); err != nil {
		return err
	}
	for i := range sets {
		if err := sets[i].Validate(); err != nil {
			return fmt.Errorf("result set %d: %w", i, err)
		}
	}

	var store db.Store
	if c.Bool("persist") {
		store, err = bootstrap.OpenStore(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
	}

	svc := bootstrap.NewRelevancy(&cfg, bootstrap.BuildEmbedder(&cfg, store, logger), store, logger)

	ctx, usage := domain.NewContextWithUsage(ctx)
	out, err := svc.Process(ctx, sets, c.String("query"))
	if err != nil {
		return fmt.Errorf("rerank: %w", err)
	}
	if c.Bool("no-explain") {
		stripExplain(out.Sets)
	}

	logger.Info("reranked",
		zap.Int("sets", len(out.Sets)),
		zap.Int("updated", out.Updated),
		zap.Int("excluded", out.Excluded),
		zap.Int("embedding_requests", usage.Requests),
	)
	return writeJSON(c, c.String("output"), rerankOutput{
		Query:           c.String("query"),
		Updated:         out.Updated,
		Excluded:        out.Excluded,
		EmbeddingTokens: usage.TotalTokens,
		ResultSets:      out.Sets,
	})
}
