package relevancy

import (
	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/domain/explain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	"github.com/kailas-cloud/relevancy/internal/domain/score"
	relevancyuc "github.com/kailas-cloud/relevancy/internal/usecase/relevancy"
)

// Field is a scored result field and its weight.
type Field struct {
	Name   string
	Weight float64
}

// ResultSet is the ordered results one provider returned for a search.
// Rank is the provider's 1-based position among the search's providers.
type ResultSet struct {
	SearchID string
	Provider string
	Rank     int
	Results  []Result
}

// Result is a single retrieved item. Score and Explanation are set once the
// result has been scored.
type Result struct {
	Fields      map[string]any
	Score       *Score
	Explanation *Explanation
}

// ScoreKind tags how a score was produced.
type ScoreKind string

// Score kinds. Fallback kinds replace a similarity whose embedding was degenerate.
const (
	ScoreKindScored         ScoreKind = "scored"
	ScoreKindFieldFallback  ScoreKind = "field_fallback"
	ScoreKindWindowFallback ScoreKind = "window_fallback"
	ScoreKindTargetFallback ScoreKind = "target_fallback"
	ScoreKindExcluded       ScoreKind = "excluded"
)

// Score is a relevancy score. For fallback and excluded kinds Value holds the
// sentinel encoding used on the wire.
type Score struct {
	Kind  ScoreKind
	Value float64
}

// Excluded reports whether the score marks an excluded result.
func (s Score) Excluded() bool { return s.Kind == ScoreKindExcluded }

// Match is one entry of a field's match trace.
// Keys are "_*" (whole field), "_s*" (best sentence) or "<target>_<pos>".
type Match struct {
	Key   string
	Score Score
}

// FieldExplanation is the match trace of one field.
type FieldExplanation struct {
	Field   string
	Matches []Match
}

// Exclusion names the field and term that excluded a result.
type Exclusion struct {
	Field string
	Term  string
}

// Explanation is the audit trail of a score: either a per-field match trace
// or a single exclusion record.
type Explanation struct {
	Stems     string
	Fields    []FieldExplanation
	Exclusion *Exclusion
}

// Outcome is what one scoring call produced.
type Outcome struct {
	ResultSets []ResultSet
	// Updated counts scored results, exclusions not included. With a store it
	// counts only results that were persisted.
	Updated  int
	Excluded int
	// EmbeddingRequests and EmbeddingTokens report provider usage of the call.
	EmbeddingRequests int
	EmbeddingTokens   int
}

// --- Converters: public → domain ---

func toDomainFields(fields []Field) []domain.FieldWeight {
	out := make([]domain.FieldWeight, len(fields))
	for i, f := range fields {
		out[i] = domain.FieldWeight{Name: f.Name, Weight: f.Weight}
	}
	return out
}

func toDomainSet(s *ResultSet) domrs.Set {
	out := domrs.Set{
		SearchID: s.SearchID,
		Provider: s.Provider,
		Rank:     s.Rank,
		Results:  make([]domrs.Result, len(s.Results)),
	}
	for i, r := range s.Results {
		out.Results[i] = domrs.Result{Fields: r.Fields}
	}
	return out
}

func toDomainSets(sets []ResultSet) []domrs.Set {
	out := make([]domrs.Set, len(sets))
	for i := range sets {
		out[i] = toDomainSet(&sets[i])
	}
	return out
}

// --- Converters: domain → public ---

func fromDomainScore(s score.Score) Score {
	return Score{Kind: ScoreKind(s.Kind().String()), Value: s.Value()}
}

func fromDomainExplain(e *explain.Explain) *Explanation {
	if e == nil {
		return nil
	}
	out := &Explanation{Stems: e.Stems}
	if e.NOT != nil {
		out.Exclusion = &Exclusion{Field: e.NOT.Field, Term: e.NOT.Term}
	}
	if e.Fields != nil {
		out.Fields = make([]FieldExplanation, 0, e.Fields.Len())
		for f := e.Fields.Oldest(); f != nil; f = f.Next() {
			fe := FieldExplanation{Field: f.Key}
			if f.Value != nil {
				fe.Matches = make([]Match, 0, f.Value.Len())
				for m := f.Value.Oldest(); m != nil; m = m.Next() {
					fe.Matches = append(fe.Matches, Match{Key: m.Key, Score: fromDomainScore(m.Value)})
				}
			}
			out.Fields = append(out.Fields, fe)
		}
	}
	return out
}

func fromDomainSet(s *domrs.Set) ResultSet {
	out := ResultSet{
		SearchID: s.SearchID,
		Provider: s.Provider,
		Rank:     s.Rank,
		Results:  make([]Result, len(s.Results)),
	}
	for i, r := range s.Results {
		res := Result{Fields: r.Fields, Explanation: fromDomainExplain(r.Explain)}
		if r.Score != nil {
			sc := fromDomainScore(*r.Score)
			res.Score = &sc
		}
		out.Results[i] = res
	}
	return out
}

func fromDomainSets(sets []domrs.Set) []ResultSet {
	out := make([]ResultSet, len(sets))
	for i := range sets {
		out[i] = fromDomainSet(&sets[i])
	}
	return out
}

func fromDomainOutcome(o relevancyuc.Outcome, usage *domain.EmbeddingUsage) Outcome {
	out := Outcome{
		ResultSets: fromDomainSets(o.Sets),
		Updated:    o.Updated,
		Excluded:   o.Excluded,
	}
	if usage != nil {
		out.EmbeddingRequests = usage.Requests
		out.EmbeddingTokens = usage.TotalTokens
	}
	return out
}
