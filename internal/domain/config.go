package domain

import (
	"errors"
	"fmt"
)

// FieldWeight is the scoring weight of one result field.
type FieldWeight struct {
	Name   string
	Weight float64
}

// RelevancyConfig holds the read-only tuning of a scoring invocation.
// Field order is the scan order: it decides which exclusion is found first.
type RelevancyConfig struct {
	Fields        []FieldWeight
	MinSimilarity float64
	MaxMatches    int
}

// DefaultRelevancyConfig returns the stock field weights and thresholds.
func DefaultRelevancyConfig() RelevancyConfig {
	return RelevancyConfig{
		Fields: []FieldWeight{
			{Name: "title", Weight: 1.5},
			{Name: "body", Weight: 1.0},
			{Name: "author", Weight: 1.0},
		},
		MinSimilarity: 0.51,
		MaxMatches:    5,
	}
}

// Weight returns the configured weight of a field.
func (c *RelevancyConfig) Weight(name string) (float64, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Weight, true
		}
	}
	return 0, false
}

// Validate checks weights and thresholds.
func (c *RelevancyConfig) Validate() error {
	if len(c.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return errors.New("field name is required")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("field %q is configured twice", f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Weight < 0 {
			return fmt.Errorf("field %q: weight must be non-negative, got %v", f.Name, f.Weight)
		}
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be within [0,1], got %v", c.MinSimilarity)
	}
	if c.MaxMatches < 1 {
		return fmt.Errorf("max_matches must be at least 1, got %d", c.MaxMatches)
	}
	return nil
}
