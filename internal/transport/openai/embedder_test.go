package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/domain"
	"github.com/kailas-cloud/relevancy/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// newServer answers every embeddings call with vec and records the request inputs.
func newServer(t *testing.T, vec []float32, tokens int, inputs *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inputs != nil {
			*inputs = append(*inputs, req.Input...)
		}

		resp := embeddingResponse{Object: "list", Model: req.Model}
		if vec != nil {
			resp.Data = []embeddingData{{Object: "embedding", Embedding: vec}}
		}
		resp.Usage.PromptTokens = tokens
		resp.Usage.TotalTokens = tokens

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestEmbedder(url string, maxRunes int) *Embedder {
	return NewEmbedder(&Config{
		APIKey:        "test-key",
		BaseURL:       url,
		Model:         "test-model",
		Provider:      "test",
		MaxInputRunes: maxRunes,
		Logger:        zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	var inputs []string
	server := newServer(t, []float32{0.1, 0.2, 0.3, 0.4}, 42, &inputs)
	defer server.Close()

	result, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "red car")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result.Embedding) != 4 {
		t.Errorf("embedding length = %d, expected 4", len(result.Embedding))
	}
	if result.PromptTokens != 42 || result.TotalTokens != 42 {
		t.Errorf("usage = %d/%d, expected 42/42", result.PromptTokens, result.TotalTokens)
	}
	if len(inputs) != 1 || inputs[0] != "red car" {
		t.Errorf("inputs = %v", inputs)
	}
}

func TestEmbedder_TruncatesLongInput(t *testing.T) {
	var inputs []string
	server := newServer(t, []float32{1}, 1, &inputs)
	defer server.Close()

	if _, err := newTestEmbedder(server.URL, 4).Embed(context.Background(), "héllo world"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(inputs) != 1 || inputs[0] != "héll" {
		t.Errorf("expected rune-truncated input, got %v", inputs)
	}
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	server := newServer(t, nil, 0, nil)
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 0).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError for 429 response, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("detail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("detail = %q", got)
	}
}
