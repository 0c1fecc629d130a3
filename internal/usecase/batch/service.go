// Package batch runs independent scoring invocations concurrently with per-item error reporting.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

// MaxBatchSize is the default maximum number of jobs per batch.
const MaxBatchSize = 100

// ErrBatchTooLarge signals a batch above the configured job limit.
var ErrBatchTooLarge = errors.New("batch too large")

// Job is one scoring invocation: a query and the result sets it is scored against.
type Job struct {
	ID         string      `json:"id"`
	Query      string      `json:"query"`
	ResultSets []domrs.Set `json:"result_sets"`
}

// Status is the outcome of a job.
type Status string

const (
	// StatusOK marks a scored job.
	StatusOK Status = "ok"
	// StatusError marks a failed job.
	StatusError Status = "error"
)

// Result is the per-job outcome. Err is set only for StatusError.
type Result struct {
	ID      string
	Status  Status
	Outcome relevancyuc.Outcome
	Err     error
}

// Service runs jobs on a bounded worker pool. Jobs share nothing, so each
// one is scored exactly as a standalone invocation would be.
type Service struct {
	scorer       Scorer
	workers      int
	maxBatchSize int
	logger       *zap.Logger
}

// New creates a batch service. workers <= 0 selects runtime.NumCPU().
func New(scorer Scorer, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scorer: scorer, workers: workers, maxBatchSize: MaxBatchSize, logger: logger}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Run scores every job and returns results in job order.
func (s *Service) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if len(jobs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d jobs, limit %d", ErrBatchTooLarge, len(jobs), s.maxBatchSize)
	}

	pool, err := ants.NewPool(min(s.workers, max(len(jobs), 1)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]Result, len(jobs))
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		job := &jobs[i]
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = s.runOne(ctx, job)
		}); err != nil {
			wg.Done()
			results[i] = newError(job.ID, fmt.Errorf("submit: %w", err))
		}
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Status == StatusError {
			failed++
		}
	}
	s.logger.Debug("batch scored", zap.Int("jobs", len(jobs)), zap.Int("failed", failed))
	return results, nil
}

func (s *Service) runOne(ctx context.Context, job *Job) Result {
	if err := ctx.Err(); err != nil {
		return newError(job.ID, err)
	}
	for i := range job.ResultSets {
		if err := job.ResultSets[i].Validate(); err != nil {
			return newError(job.ID, fmt.Errorf("result set %d: %w", i, err))
		}
	}

	out, err := s.scorer.Process(ctx, job.ResultSets, job.Query)
	if err != nil {
		var qe *domain.QueryError
		if !errors.As(err, &qe) {
			s.logger.Warn("batch job failed", zap.String("job", job.ID), zap.Error(err))
		}
		return newError(job.ID, err)
	}
	return Result{ID: job.ID, Status: StatusOK, Outcome: out}
}

func newError(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Err: err}
}
