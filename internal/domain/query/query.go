// Package query holds a decomposed relevancy query.
package query

import "strings"

// Target is a query n-gram kept in both stemmed and original surface form.
// The two slices are index-aligned so highlighting can map stems back to words.
type Target struct {
	Stemmed  []string
	Original []string
}

// Len returns the target length in tokens.
func (t Target) Len() int { return len(t.Stemmed) }

// Key joins the stemmed tokens with underscores.
func (t Target) Key() string { return strings.Join(t.Stemmed, "_") }

// OriginalKey joins the original tokens with underscores.
func (t Target) OriginalKey() string { return strings.Join(t.Original, "_") }

// Query is the result of decomposing a raw query string.
type Query struct {
	// Raw is the query as received.
	Raw string
	// Positive holds the original positive tokens after operator and exclusion removal.
	Positive []string
	// Stemmed holds the stemmed positive tokens.
	Stemmed []string
	// Exclusions holds terms that exclude a result when present in any scored field.
	Exclusions []string
	// Targets lists the n-grams matched against each field.
	Targets []Target
}

// Text returns the positive query re-joined with spaces.
func (q *Query) Text() string { return strings.Join(q.Positive, " ") }

// Stems returns the stemmed query re-joined with spaces.
func (q *Query) Stems() string { return strings.Join(q.Stemmed, " ") }

// Label returns the positive tokens joined with underscores, the prefix of whole-field match keys.
func (q *Query) Label() string { return strings.Join(q.Positive, "_") }
