package relevancy

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/domain/explain"
	"github.com/kailas-cloud/relevancy/internal/domain/query"
	"github.com/kailas-cloud/relevancy/internal/domain/score"
	"github.com/kailas-cloud/relevancy/internal/metrics"
)

// lengthTally collects the token count of every matched field, per field name.
type lengthTally map[string][]int

func (t lengthTally) add(st *staged) {
	for _, fs := range st.fields {
		t[fs.name] = append(t[fs.name], fs.length)
	}
}

// medians returns the median token count per field.
func (t lengthTally) medians() map[string]float64 {
	out := make(map[string]float64, len(t))
	for name, lengths := range t {
		if len(lengths) == 0 {
			continue
		}
		sorted := slices.Clone(lengths)
		slices.Sort(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			out[name] = float64(sorted[mid])
		} else {
			out[name] = float64(sorted[mid-1]+sorted[mid]) / 2
		}
	}
	return out
}

// aggregator runs pass 2: it turns staged matches into one score per result.
type aggregator struct {
	cfg     *domain.RelevancyConfig
	logger  *zap.Logger
	q       *query.Query
	medians map[string]float64
}

// rankAdjust boosts results from better-ranked providers. A non-positive rank
// earns no boost.
func rankAdjust(rank int) float64 {
	if rank <= 0 {
		return 1
	}
	return 1 + 1/math.Sqrt(float64(rank))
}

// score sums weighted, key-length-squared similarities over every field.
// Positional matches are further scaled by field length against the median and
// by provider rank.
func (a *aggregator) score(st *staged, rank int) (score.Score, *explain.Explain) {
	if st.exclusion != nil {
		return score.Excluded(), explain.ForExclusion(st.exclusion.Field, st.exclusion.Term)
	}

	trace := explain.NewFieldMatches()
	total := 0.0
	for _, fs := range st.fields {
		if fs.matches.Len() == 0 {
			continue
		}
		trace.Set(fs.name, fs.matches)

		weight, ok := a.cfg.Weight(fs.name)
		if !ok {
			continue
		}
		for pair := fs.matches.Oldest(); pair != nil; pair = pair.Next() {
			total += a.contribution(fs, weight, rank, pair.Key, pair.Value)
		}
	}
	return score.Scored(total), explain.ForMatches(a.q.Stems(), trace)
}

func (a *aggregator) contribution(fs fieldState, weight float64, rank int, key string, sim score.Score) float64 {
	if strings.HasPrefix(key, "_") {
		return 0
	}
	v := sim.Value()
	if v == 0 || v < a.cfg.MinSimilarity {
		return 0
	}

	keyLen := float64(utf8.RuneCountInString(key))
	c := weight * v * keyLen * keyLen
	if strings.HasSuffix(key, wholeFieldSuffix) || strings.HasSuffix(key, bestSentenceSuffix) {
		return c
	}

	median, ok := a.medians[fs.name]
	if !ok || fs.length == 0 {
		metrics.RelevancyWarningsTotal.WithLabelValues("missing_length").Inc()
		a.logger.Warn("no field length recorded, skipping positional match",
			zap.String("field", fs.name), zap.String("key", key))
		return 0
	}
	return c * (median / float64(fs.length)) * rankAdjust(rank)
}
