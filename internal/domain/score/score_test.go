package score

import (
	"encoding/json"
	"testing"
)

func TestValue_Sentinels(t *testing.T) {
	tests := []struct {
		name string
		s    Score
		want float64
	}{
		{"field fallback", FieldFallback(), 0.3 + 1.0/3},
		{"window fallback", WindowFallback(), 0.31 + 1.0/3},
		{"target fallback", TargetFallback(), 0.32 + 1.0/3},
		{"excluded", Excluded(), -1.0 + 1.0/3},
		{"scored", Scored(0.75), 0.75},
	}
	for _, tc := range tests {
		got := tc.s.Value()
		if diff := got - tc.want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("%s: Value() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	seen := map[float64]Kind{}
	for _, s := range []Score{FieldFallback(), WindowFallback(), TargetFallback(), Excluded()} {
		if k, ok := seen[s.Value()]; ok {
			t.Fatalf("%s and %s share value %v", k, s.Kind(), s.Value())
		}
		seen[s.Value()] = s.Kind()
	}
}

func TestIsFallback(t *testing.T) {
	if Scored(0.5).IsFallback() || Excluded().IsFallback() {
		t.Error("scored and excluded must not be fallbacks")
	}
	for _, s := range []Score{FieldFallback(), WindowFallback(), TargetFallback()} {
		if !s.IsFallback() {
			t.Errorf("%s should be a fallback", s.Kind())
		}
	}
}

func TestIsZero(t *testing.T) {
	if !Scored(0).IsZero() {
		t.Error("Scored(0) should be zero")
	}
	if Scored(0.1).IsZero() || WindowFallback().IsZero() {
		t.Error("non-zero scores reported as zero")
	}
}

func TestJSON_RoundTripKeepsKind(t *testing.T) {
	in := map[string]Score{"a": TargetFallback(), "b": Scored(0.42), "c": Excluded()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]Score
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["a"].Kind() != KindTargetFallback {
		t.Errorf("a: got kind %s", out["a"].Kind())
	}
	if out["b"].Kind() != KindScored || out["b"].Value() != 0.42 {
		t.Errorf("b: got %s %v", out["b"].Kind(), out["b"].Value())
	}
	if out["c"].Kind() != KindExcluded {
		t.Errorf("c: got kind %s", out["c"].Kind())
	}
}
