// Package score holds the tagged relevancy score of a match or a result.
//
// Degenerate-embedding fallbacks and exclusion are distinct kinds rather than
// magic numbers. The numeric sentinels appear only when a Score is serialized.
package score

import (
	"encoding/json"
	"fmt"
)

// Kind tags how a score value was produced.
type Kind uint8

const (
	// KindScored is a similarity or aggregate computed from real data.
	KindScored Kind = iota
	// KindFieldFallback replaces a whole-field similarity when an embedding is degenerate.
	KindFieldFallback
	// KindWindowFallback replaces a windowed similarity when the window embedding is degenerate.
	KindWindowFallback
	// KindTargetFallback replaces a windowed similarity when the query target embedding is degenerate.
	KindTargetFallback
	// KindExcluded marks a result removed by an exclusion term.
	KindExcluded
)

// third is a variable so sentinel arithmetic is done in float64, matching
// the values clients have always received.
var third = 1.0 / 3

// Serialized sentinel values.
var (
	FieldFallbackValue  = 0.3 + third
	WindowFallbackValue = 0.31 + third
	TargetFallbackValue = 0.32 + third
	ExcludedValue       = -1.0 + third
)

func (k Kind) String() string {
	switch k {
	case KindScored:
		return "scored"
	case KindFieldFallback:
		return "field_fallback"
	case KindWindowFallback:
		return "window_fallback"
	case KindTargetFallback:
		return "target_fallback"
	case KindExcluded:
		return "excluded"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Score is a tagged score value.
type Score struct {
	kind  Kind
	value float64
}

// Scored wraps a computed value.
func Scored(v float64) Score { return Score{kind: KindScored, value: v} }

// FieldFallback is the whole-field degenerate-embedding fallback.
func FieldFallback() Score { return Score{kind: KindFieldFallback} }

// WindowFallback is the positional fallback for a degenerate window embedding.
func WindowFallback() Score { return Score{kind: KindWindowFallback} }

// TargetFallback is the positional fallback for a degenerate query target embedding.
func TargetFallback() Score { return Score{kind: KindTargetFallback} }

// Excluded marks an excluded result.
func Excluded() Score { return Score{kind: KindExcluded} }

// Kind returns the score kind.
func (s Score) Kind() Kind { return s.kind }

// IsFallback reports whether the score came from a degenerate-embedding fallback.
func (s Score) IsFallback() bool {
	switch s.kind {
	case KindFieldFallback, KindWindowFallback, KindTargetFallback:
		return true
	}
	return false
}

// IsZero reports whether the score carries no reportable similarity.
func (s Score) IsZero() bool { return s.kind == KindScored && s.value == 0 }

// Value returns the numeric encoding of the score.
func (s Score) Value() float64 {
	switch s.kind {
	case KindFieldFallback:
		return FieldFallbackValue
	case KindWindowFallback:
		return WindowFallbackValue
	case KindTargetFallback:
		return TargetFallbackValue
	case KindExcluded:
		return ExcludedValue
	default:
		return s.value
	}
}

// MarshalJSON encodes the score as its numeric value.
func (s Score) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(s.Value())
	if err != nil {
		return nil, fmt.Errorf("marshal score: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes a numeric value, recognizing the sentinel encodings.
func (s *Score) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal score: %w", err)
	}
	*s = FromValue(v)
	return nil
}

// FromValue maps a serialized value back to a tagged score.
func FromValue(v float64) Score {
	switch v {
	case FieldFallbackValue:
		return FieldFallback()
	case WindowFallbackValue:
		return WindowFallback()
	case TargetFallbackValue:
		return TargetFallback()
	case ExcludedValue:
		return Excluded()
	}
	return Scored(v)
}
