package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/relevancy/internal/domain"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vectors[text], TotalTokens: 3}, nil
}

func TestDegenerate(t *testing.T) {
	tests := []struct {
		v    Vector
		want bool
	}{
		{nil, true},
		{Vector{}, true},
		{Vector{0, 0, 0}, true},
		{Vector{0, 0.1, 0}, false},
	}
	for _, tc := range tests {
		if got := tc.v.Degenerate(); got != tc.want {
			t.Errorf("Degenerate(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"opposite clamps to zero", Vector{1, 0}, Vector{-1, 0}, 0},
		{"dimension mismatch", Vector{1, 0}, Vector{1, 0, 0}, 0},
		{"zero norm", Vector{0, 0}, Vector{1, 0}, 0},
		{"45 degrees", Vector{1, 0}, Vector{1, 1}, 1 / math.Sqrt2},
	}
	for _, tc := range tests {
		got := Cosine(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("%s: Cosine = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestVectorizer_MemoizesAndTracksUsage(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"red car": {1, 0}}}
	v := NewVectorizer(emb, 8, nil)
	ctx, usage := domain.NewContextWithUsage(context.Background())

	for range 3 {
		vec, err := v.Vector(ctx, "red car")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vec) != 2 {
			t.Fatalf("unexpected vector: %v", vec)
		}
	}
	if emb.calls != 1 {
		t.Errorf("expected 1 embed call, got %d", emb.calls)
	}
	if usage.Requests != 1 || usage.TotalTokens != 3 {
		t.Errorf("unexpected usage: %+v", *usage)
	}
}

func TestVectorizer_BlankTextIsDegenerate(t *testing.T) {
	emb := &fakeEmbedder{}
	v := NewVectorizer(emb, 0, nil)

	vec, err := v.Vector(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vec.Degenerate() {
		t.Error("blank text should be degenerate")
	}
	if emb.calls != 0 {
		t.Error("blank text must not reach the embedder")
	}
}

func TestVectorizer_Error(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("provider down")}
	v := NewVectorizer(emb, 0, nil)

	if _, err := v.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error")
	}
	if v.Len() != 0 {
		t.Error("failed embeddings must not be cached")
	}
}
