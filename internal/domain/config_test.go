package domain

import "testing"

func TestDefaultRelevancyConfig_Valid(t *testing.T) {
	cfg := DefaultRelevancyConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if w, ok := cfg.Weight("title"); !ok || w != 1.5 {
		t.Errorf("title weight = %v, %v", w, ok)
	}
	if _, ok := cfg.Weight("url"); ok {
		t.Error("url is not configured")
	}
}

func TestRelevancyConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RelevancyConfig)
	}{
		{"no fields", func(c *RelevancyConfig) { c.Fields = nil }},
		{"negative weight", func(c *RelevancyConfig) { c.Fields[0].Weight = -1 }},
		{"duplicate field", func(c *RelevancyConfig) { c.Fields[1].Name = c.Fields[0].Name }},
		{"empty name", func(c *RelevancyConfig) { c.Fields[0].Name = "" }},
		{"similarity above one", func(c *RelevancyConfig) { c.MinSimilarity = 1.2 }},
		{"similarity below zero", func(c *RelevancyConfig) { c.MinSimilarity = -0.1 }},
		{"zero max matches", func(c *RelevancyConfig) { c.MaxMatches = 0 }},
	}
	for _, tc := range tests {
		cfg := DefaultRelevancyConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
