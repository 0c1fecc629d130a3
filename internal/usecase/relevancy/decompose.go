package relevancy

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/domain/query"
	"github.com/kailas-cloud/relevancy/internal/metrics"
	"github.com/kailas-cloud/relevancy/internal/text"
)

const (
	opAnd = "AND"
	opOr  = "OR"
	opNot = "NOT"
)

// Decompose splits a raw query into positive terms, exclusions and match targets.
//
// The first AND and the first OR are dropped. Everything after the first NOT is
// an exclusion; without NOT, tokens prefixed with '-' are exclusions. A query
// whose positive tokens are all stopwords aborts the invocation.
func Decompose(raw string, logger *zap.Logger) (*query.Query, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens := text.Tokens(text.Clean(raw))
	tokens = removeFirst(tokens, opAnd)
	tokens = removeFirst(tokens, opOr)

	var positive, exclusions []string
	if idx := slices.Index(tokens, opNot); idx >= 0 {
		positive = slices.Clone(tokens[:idx])
		exclusions = slices.Clone(tokens[idx+1:])
	} else {
		for _, tok := range tokens {
			if term, ok := strings.CutPrefix(tok, "-"); ok {
				if term != "" {
					exclusions = append(exclusions, term)
				}
				continue
			}
			positive = append(positive, tok)
		}
	}

	// Nothing positive left: score against the whole cleaned query.
	working := positive
	if len(working) == 0 {
		working = tokens
	}

	// A blank query counts as all stopwords.
	if allStopwords(working) {
		return nil, domain.NewAllStopwordsError(raw)
	}

	stemmed := text.Tokens(text.Stem(strings.Join(working, " ")))
	if len(stemmed) == 0 {
		return nil, domain.NewEmptyQueryError(raw)
	}

	targets, aligned := buildTargets(stemmed, working)
	if !aligned {
		metrics.RelevancyWarningsTotal.WithLabelValues("target_mismatch").Inc()
		logger.Warn("stemmed and original targets differ in count, truncating",
			zap.String("query", raw),
			zap.Strings("stemmed", stemmed),
			zap.Strings("original", working),
		)
	}

	return &query.Query{
		Raw:        raw,
		Positive:   working,
		Stemmed:    stemmed,
		Exclusions: exclusions,
		Targets:    targets,
	}, nil
}

func removeFirst(tokens []string, op string) []string {
	if idx := slices.Index(tokens, op); idx >= 0 {
		return slices.Delete(slices.Clone(tokens), idx, idx+1)
	}
	return tokens
}

func allStopwords(tokens []string) bool {
	for _, tok := range tokens {
		if !text.IsStopword(tok) {
			return false
		}
	}
	return true
}

// buildTargets derives match targets from the stemmed query length and pairs
// each stemmed target with its original-form twin. aligned is false when the two
// lists came out with different lengths and the longer one was truncated.
func buildTargets(stemmed, original []string) (targets []query.Target, aligned bool) {
	// Equal lengths: drop a unigram from both lists when either form is a stopword,
	// so the pairs stay index-aligned.
	lockstep := len(stemmed) == len(original)
	st := grams(stemmed, len(stemmed), func(i int) bool {
		return !text.IsStopword(stemmed[i]) && (!lockstep || !text.IsStopword(original[i]))
	})
	ot := grams(original, len(stemmed), func(i int) bool {
		return !text.IsStopword(original[i]) && (!lockstep || !text.IsStopword(stemmed[i]))
	})

	n := min(len(st), len(ot))
	targets = make([]query.Target, n)
	for i := range n {
		targets[i] = query.Target{Stemmed: st[i], Original: ot[i]}
	}
	return targets, len(st) == len(ot)
}

// grams lists the targets for a query of the given arity: the whole query, then
// for two tokens each token alone, and for longer queries every bigram followed by
// every non-stopword token.
func grams(tokens []string, arity int, keepUnigram func(i int) bool) [][]string {
	if arity == 0 || len(tokens) == 0 {
		return nil
	}
	out := [][]string{tokens}
	switch {
	case arity == 1:
	case arity == 2:
		for i := range min(2, len(tokens)) {
			out = append(out, tokens[i:i+1])
		}
	default:
		out = append(out, text.Bigrams(tokens)...)
		for i := range tokens {
			if keepUnigram(i) {
				out = append(out, tokens[i:i+1])
			}
		}
	}
	return out
}
