// Package explain holds the audit trail attached to a scored result.
package explain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kailas-cloud/relevancy/internal/domain/score"
)

// Matches maps a match key to its similarity, in the order the matches were found.
type Matches = orderedmap.OrderedMap[string, score.Score]

// FieldMatches maps a field name to its matches, in field scan order.
type FieldMatches = orderedmap.OrderedMap[string, *Matches]

// Exclusion records the field and term that excluded a result.
type Exclusion struct {
	Field string `json:"field"`
	Term  string `json:"term"`
}

// Explain is either a per-field match trace or a single exclusion record.
type Explain struct {
	Stems  string        `json:"stems,omitempty"`
	Fields *FieldMatches `json:"fields,omitempty"`
	NOT    *Exclusion    `json:"NOT,omitempty"`
}

// NewMatches creates an empty match map.
func NewMatches() *Matches {
	return orderedmap.New[string, score.Score]()
}

// NewFieldMatches creates an empty field map.
func NewFieldMatches() *FieldMatches {
	return orderedmap.New[string, *Matches]()
}

// ForExclusion builds an explanation holding only the exclusion record.
func ForExclusion(field, term string) *Explain {
	return &Explain{NOT: &Exclusion{Field: field, Term: term}}
}

// ForMatches builds an explanation from the pass-1 match trace.
func ForMatches(stems string, fields *FieldMatches) *Explain {
	return &Explain{Stems: stems, Fields: fields}
}

// Excluded reports whether the explanation is an exclusion record.
func (e *Explain) Excluded() bool {
	return e != nil && e.NOT != nil
}

// Lookup returns the similarity recorded for field and key.
func (e *Explain) Lookup(field, key string) (score.Score, bool) {
	if e == nil || e.Fields == nil {
		return score.Score{}, false
	}
	m, ok := e.Fields.Get(field)
	if !ok || m == nil {
		return score.Score{}, false
	}
	return m.Get(key)
}
