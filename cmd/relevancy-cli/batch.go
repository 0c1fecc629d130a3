package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/bootstrap"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	batchuc "github.com/kailas-cloud/relevancy/internal/usecase/batch"
)

// batchItem is one line of the batch command output.
type batchItem struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Error      string      `json:"error,omitempty"`
	Updated    int         `json:"updated"`
	Excluded   int         `json:"excluded"`
	ResultSets []domrs.Set `json:"result_sets,omitempty"`
}

func batchCommand(c *cli.Context) error {
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

	var jobs []batchuc.Job
	if err := readJSON(c.String("jobs"), &jobs); err != nil {
		return err
	}

	// One scorer shared by all workers: the vector memo is safe for concurrent use.
	scorer := bootstrap.NewRelevancy(&cfg, bootstrap.BuildEmbedder(&cfg, nil, logger), nil, logger)
	svc := batchuc.New(scorer, c.Int("workers"), logger).WithMaxBatchSize(c.Int("max-jobs"))

	results, err := svc.Run(ctx, jobs)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	items := make([]batchItem, len(results))
	failed := 0
	for i, r := range results {
		items[i] = batchItem{ID: r.ID, Status: string(r.Status)}
		if r.Err != nil {
			failed++
			items[i].Error = r.Err.Error()
			continue
		}
		if c.Bool("no-explain") {
			stripExplain(r.Outcome.Sets)
		}
		items[i].Updated = r.Outcome.Updated
		items[i].Excluded = r.Outcome.Excluded
		items[i].ResultSets = r.Outcome.Sets
	}

	logger.Info("batch complete", zap.Int("jobs", len(jobs)), zap.Int("failed", failed))
	return writeJSON(c, c.String("output"), items)
}
