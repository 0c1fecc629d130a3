// Package resultset holds provider result sets and the results inside them.
package resultset

import (
	"fmt"
	"maps"
	"strings"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/domain/explain"
	"github.com/kailas-cloud/relevancy/internal/domain/score"
)

// Result is a single retrieved item: field name to field value, plus the
// relevancy annotations once it has been scored.
type Result struct {
	Fields  map[string]any   `json:"fields"`
	Score   *score.Score     `json:"score,omitempty"`
	Explain *explain.Explain `json:"explain,omitempty"`
}

// Set is the ordered results one provider returned for a search.
type Set struct {
	SearchID string   `json:"search_id"`
	Provider string   `json:"provider"`
	Rank     int      `json:"rank"`
	Results  []Result `json:"results"`
}

// Validate checks identity and rank.
func (s *Set) Validate() error {
	if strings.TrimSpace(s.Provider) == "" {
		return fmt.Errorf("%w: provider is required", domain.ErrInvalidResultSet)
	}
	if s.Rank <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRank, s.Rank)
	}
	return nil
}

// Clone returns a copy whose results can be replaced without touching s.
func (s *Set) Clone() Set {
	out := *s
	out.Results = make([]Result, len(s.Results))
	for i := range s.Results {
		out.Results[i] = s.Results[i].Clone()
	}
	return out
}

// Clone copies the field map. Score and explanation are shared; they are never mutated.
func (r *Result) Clone() Result {
	return Result{
		Fields:  maps.Clone(r.Fields),
		Score:   r.Score,
		Explain: r.Explain,
	}
}

// FieldText returns the text of a field. List values contribute only their first element.
func (r *Result) FieldText(name string) (string, bool) {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return "", false
	}
	return textOf(v)
}

func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return t[0], true
	case []any:
		if len(t) == 0 || t[0] == nil {
			return "", false
		}
		return textOf(t[0])
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
