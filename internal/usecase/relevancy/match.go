package relevancy

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/domain/explain"
	"github.com/kailas-cloud/relevancy/internal/domain/query"
	"github.com/kailas-cloud/relevancy/internal/domain/resultset"
	"github.com/kailas-cloud/relevancy/internal/domain/score"
	"github.com/kailas-cloud/relevancy/internal/metrics"
	"github.com/kailas-cloud/relevancy/internal/similarity"
	"github.com/kailas-cloud/relevancy/internal/text"
)

const (
	wholeFieldSuffix    = "_*"
	bestSentenceSuffix  = "_s*"
	windowWidthInTokens = 2 // window reach on each side, in multiples of the target length
)

// fieldState is the pass-1 outcome for one field of one result.
type fieldState struct {
	name        string
	length      int
	matches     *explain.Matches
	highlighted string
}

// staged is a result after pass 1 and before aggregation.
type staged struct {
	fields    []fieldState
	exclusion *explain.Exclusion
	// values replaces the result's field map once the result is scored.
	values map[string]any
}

// matcher runs pass 1 for one invocation. Its inputs are read-only, so results
// can be matched independently of each other.
type matcher struct {
	cfg      *domain.RelevancyConfig
	vec      Vectorizer
	logger   *zap.Logger
	q        *query.Query
	queryVec similarity.Vector
}

// matchResult walks the configured fields in order. An exclusion stops the walk.
func (m *matcher) matchResult(ctx context.Context, r *resultset.Result) staged {
	st := staged{values: maps.Clone(r.Fields)}
	if st.values == nil {
		st.values = map[string]any{}
	}

	for _, f := range m.cfg.Fields {
		raw, ok := r.FieldText(f.Name)
		if !ok {
			continue
		}
		// List-valued fields are reduced to their first element.
		st.values[f.Name] = raw

		fs, excl := m.matchField(ctx, f.Name, raw)
		if excl != nil {
			st.exclusion = excl
			return st
		}
		if fs == nil {
			continue
		}
		st.values[f.Name] = fs.highlighted
		st.fields = append(st.fields, *fs)
	}
	return st
}

// matchField scores one field against the query. It returns a nil state for a
// field that cleans to nothing, or the exclusion that the field triggers.
func (m *matcher) matchField(ctx context.Context, name, raw string) (*fieldState, *explain.Exclusion) {
	cleaned := text.Clean(raw)
	if cleaned == "" {
		return nil, nil
	}
	tokens := text.Tokens(cleaned)
	stemmed := text.Tokens(text.Stem(cleaned))
	if len(stemmed) != len(tokens) {
		metrics.RelevancyWarningsTotal.WithLabelValues("field_token_mismatch").Inc()
		m.logger.Warn("field token count changed by stemming",
			zap.String("field", name),
			zap.Int("tokens", len(tokens)),
			zap.Int("stemmed", len(stemmed)),
		)
	}

	if term, hit := m.excludedBy(tokens); hit {
		return nil, &explain.Exclusion{Field: name, Term: term}
	}

	fs := &fieldState{
		name:    name,
		length:  len(tokens),
		matches: explain.NewMatches(),
	}

	if text.MatchAny(m.q.Stemmed, stemmed) {
		label, sim := m.wholeFieldScore(ctx, name, raw, cleaned)
		if sim.Value() >= m.cfg.MinSimilarity {
			m.record(fs.matches, m.q.Label()+label, sim)
		}
	}

	var highlights []string
	seenTargets := make(map[string]struct{}, len(m.q.Targets))
	for _, t := range m.q.Targets {
		if m.skipTarget(name, t, fs.matches, seenTargets) {
			continue
		}
		highlights = m.matchTarget(ctx, name, t, tokens, stemmed, fs.matches, highlights)
	}

	fs.highlighted = text.Rehighlight(raw, highlights)
	return fs, nil
}

// skipTarget reports whether t must not be matched in the field: either its
// original form is already a match key, or an identical target ran before.
func (m *matcher) skipTarget(name string, t query.Target, matches *explain.Matches, seen map[string]struct{}) bool {
	if _, scored := matches.Get(t.OriginalKey()); scored {
		metrics.RelevancyWarningsTotal.WithLabelValues("target_already_scored").Inc()
		m.logger.Warn("target already scored for field, skipping",
			zap.String("field", name),
			zap.String("target", t.OriginalKey()),
		)
		return true
	}
	if _, dup := seen[t.Key()]; dup {
		m.logger.Debug("duplicate target skipped", zap.String("field", name), zap.String("target", t.Key()))
		return true
	}
	seen[t.Key()] = struct{}{}
	return false
}

// excludedBy reports the first exclusion term present in tokens, case-insensitively.
func (m *matcher) excludedBy(tokens []string) (string, bool) {
	for _, term := range m.q.Exclusions {
		for _, tok := range tokens {
			if strings.EqualFold(tok, term) {
				return term, true
			}
		}
	}
	return "", false
}

// wholeFieldScore compares the query with the field, or with its best sentence
// when the field has more than one.
func (m *matcher) wholeFieldScore(ctx context.Context, name, raw, cleaned string) (string, score.Score) {
	fieldVec := m.vector(ctx, name, cleaned)
	if m.queryVec.Degenerate() || fieldVec.Degenerate() {
		return wholeFieldSuffix, score.FieldFallback()
	}

	sentences := text.SplitSentences(text.StripTags(text.StripHighlight(raw)))
	if len(sentences) <= 1 {
		return wholeFieldSuffix, score.Scored(similarity.Cosine(m.queryVec, fieldVec))
	}

	best := 0.0
	for _, sent := range sentences {
		sentVec := m.vector(ctx, name, text.Clean(sent))
		if sentVec.Degenerate() {
			continue
		}
		best = max(best, similarity.Cosine(m.queryVec, sentVec))
	}
	return bestSentenceSuffix, score.Scored(best)
}

// matchTarget records every occurrence of t in the field, up to the match cap,
// and returns highlights extended with the matched original words.
func (m *matcher) matchTarget(
	ctx context.Context, name string, t query.Target,
	tokens, stemmed []string, matches *explain.Matches, highlights []string,
) []string {
	positions := text.MatchAll(t.Stemmed, stemmed)
	if len(positions) == 0 {
		return highlights
	}
	if len(positions) > m.cfg.MaxMatches {
		metrics.RelevancyWarningsTotal.WithLabelValues("match_cap").Inc()
		m.logger.Warn("target matches exceed cap, truncating",
			zap.String("field", name),
			zap.String("target", t.Key()),
			zap.Int("matches", len(positions)),
			zap.Int("cap", m.cfg.MaxMatches),
		)
		positions = positions[:m.cfg.MaxMatches]
	}

	targetVec := m.vector(ctx, name, strings.Join(t.Original, " "))
	n := t.Len()
	for _, pos := range positions {
		if pos >= len(tokens) {
			continue
		}
		end := min(pos+n, len(tokens))
		extracted := tokens[pos:end]

		lo := max(0, pos-windowWidthInTokens*n)
		hi := min(len(tokens), pos+n+windowWidthInTokens*n)
		windowVec := m.vector(ctx, name, strings.Join(tokens[lo:hi], " "))

		sim := m.windowScore(windowVec, targetVec)
		if !sim.IsZero() {
			m.record(matches, strings.Join(extracted, "_")+"_"+strconv.Itoa(pos), sim)
		}

		for _, w := range extracted {
			if !slices.Contains(highlights, w) {
				highlights = append(highlights, w)
			}
		}
	}
	return highlights
}

// windowScore compares a target with the window around one of its occurrences.
// A degenerate target takes precedence over a degenerate window.
func (m *matcher) windowScore(windowVec, targetVec similarity.Vector) score.Score {
	switch {
	case targetVec.Degenerate():
		return score.TargetFallback()
	case windowVec.Degenerate():
		return score.WindowFallback()
	}
	if sim := similarity.Cosine(windowVec, targetVec); sim >= m.cfg.MinSimilarity {
		return score.Scored(sim)
	}
	return score.Scored(0)
}

func (m *matcher) record(matches *explain.Matches, key string, sim score.Score) {
	matches.Set(key, sim)
	metrics.RelevancyMatchesTotal.WithLabelValues(sim.Kind().String()).Inc()
}

// vector embeds text. A provider error degrades to a degenerate vector.
func (m *matcher) vector(ctx context.Context, field, s string) similarity.Vector {
	v, err := m.vec.Vector(ctx, s)
	if err != nil {
		metrics.RelevancyWarningsTotal.WithLabelValues("embedding_error").Inc()
		m.logger.Warn("embedding failed, treating text as degenerate",
			zap.String("field", field),
			zap.Error(err),
		)
		return nil
	}
	return v
}
