// Package relevancy re-ranks federated search results against the query that
// produced them.
//
// Scoring runs in two passes. Pass 1 matches the decomposed query against every
// configured field of every result: whole-field similarity, per-target positional
// matches with windowed similarity, exclusion and highlighting. Pass 2 needs the
// median field lengths across all results, so it runs once pass 1 is complete and
// folds the matches into one score per result.
package relevancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/domain/resultset"
	"github.com/kailas-cloud/relevancy/internal/logger"
	"github.com/kailas-cloud/relevancy/internal/metrics"
)

// Outcome is what one scoring invocation produced.
type Outcome struct {
	// Sets are the result sets with scores, explanations and highlighted fields.
	Sets []resultset.Set
	// Updated counts results that were scored and persisted (exclusions not included).
	Updated int
	// Excluded counts results removed by an exclusion term.
	Excluded int
}

// Service scores result sets.
type Service struct {
	cfg    domain.RelevancyConfig
	vec    Vectorizer
	repo   Repository
	logger *zap.Logger
}

// New creates a relevancy service. repo may be nil, in which case scored sets
// are returned without being persisted.
func New(cfg domain.RelevancyConfig, vec Vectorizer, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, vec: vec, repo: repo, logger: logger}
}

// Config returns the scoring configuration.
func (s *Service) Config() domain.RelevancyConfig { return s.cfg }

// Process scores every result of sets against rawQuery.
//
// A query that is all stopwords or stems to nothing aborts the invocation: the
// input sets are returned untouched with Updated == 0 and a *domain.QueryError.
// Input sets are never mutated.
func (s *Service) Process(ctx context.Context, sets []resultset.Set, rawQuery string) (Outcome, error) {
	start := time.Now()
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("query", rawQuery))

	q, err := Decompose(rawQuery, log)
	if err != nil {
		metrics.RelevancyInvocationsTotal.WithLabelValues("aborted").Inc()
		log.Warn("query rejected", zap.Error(err))
		return Outcome{Sets: sets}, err
	}

	m := &matcher{cfg: &s.cfg, vec: s.vec, logger: log, q: q}
	m.queryVec = m.vector(ctx, "query", q.Text())

	// Pass 1.
	tally := lengthTally{}
	stagedSets := make([][]staged, len(sets))
	for i := range sets {
		if err := ctx.Err(); err != nil {
			return Outcome{Sets: sets}, fmt.Errorf("match results: %w", err)
		}
		stagedSets[i] = make([]staged, len(sets[i].Results))
		for j := range sets[i].Results {
			st := m.matchResult(ctx, &sets[i].Results[j])
			tally.add(&st)
			stagedSets[i][j] = st
		}
	}

	// Pass 2.
	agg := &aggregator{cfg: &s.cfg, logger: log, q: q, medians: tally.medians()}
	out := Outcome{Sets: make([]resultset.Set, len(sets))}
	for i := range sets {
		set := sets[i].Clone()
		if set.Rank <= 0 {
			metrics.RelevancyWarningsTotal.WithLabelValues("invalid_rank").Inc()
			log.Warn("provider rank is not positive, rank boost disabled",
				zap.String("provider", set.Provider), zap.Int("rank", set.Rank))
		}

		excluded := 0
		for j := range set.Results {
			st := &stagedSets[i][j]
			sc, ex := agg.score(st, set.Rank)
			r := &set.Results[j]
			if st.exclusion == nil {
				r.Fields = st.values
			} else {
				excluded++
			}
			r.Score = &sc
			r.Explain = ex
		}
		out.Sets[i] = set
		out.Excluded += excluded

		if len(set.Results) == 0 {
			continue
		}
		scored := len(set.Results) - excluded
		if err := s.save(ctx, set); err != nil {
			metrics.RelevancyResultsTotal.WithLabelValues("unsaved").Add(float64(scored))
			log.Error("persist result set",
				zap.String("search_id", set.SearchID),
				zap.String("provider", set.Provider),
				zap.Error(err),
			)
			continue
		}
		out.Updated += scored
		metrics.RelevancyResultsTotal.WithLabelValues("scored").Add(float64(scored))
		metrics.RelevancyResultsTotal.WithLabelValues("excluded").Add(float64(excluded))
	}

	metrics.RelevancyInvocationsTotal.WithLabelValues("ok").Inc()
	metrics.RelevancyDuration.Observe(time.Since(start).Seconds())
	log.Debug("relevancy scored",
		zap.Int("sets", len(sets)),
		zap.Int("updated", out.Updated),
		zap.Int("excluded", out.Excluded),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}

// Rerank loads the stored result sets of a search and scores them again.
func (s *Service) Rerank(ctx context.Context, searchID, rawQuery string) (Outcome, error) {
	if s.repo == nil {
		return Outcome{}, errors.New("rerank requires a repository")
	}
	sets, err := s.repo.List(ctx, searchID)
	if err != nil {
		return Outcome{}, fmt.Errorf("list result sets: %w", err)
	}
	if len(sets) == 0 {
		return Outcome{}, fmt.Errorf("search %q: %w", searchID, domain.ErrNotFound)
	}
	return s.Process(ctx, sets, rawQuery)
}

func (s *Service) save(ctx context.Context, set resultset.Set) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, set); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
