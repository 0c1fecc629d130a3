package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
http:
  port: 8080
database:
  driver: badger
  in_memory: true
embedding:
  providers:
    local:
      kind: hashing
  vectorizers:
    default:
      provider: local
      dimensions: 128
`

const testSets = `[
  {"search_id": "s1", "provider": "web", "rank": 1, "results": [
    {"fields": {"title": "electric cars are fast", "body": "a review of electric cars"}},
    {"fields": {"title": "blue electric cars", "body": "paint options"}},
    {"fields": {"title": "gardening tips", "body": "tomatoes need sun"}}
  ]}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRerankCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", testConfig)
	input := writeFile(t, dir, "sets.json", testSets)
	output := filepath.Join(dir, "out.json")

	err := newApp().Run([]string{
		"relevancy-cli", "--config", cfgPath,
		"rerank", "--input", input, "--query", "electric cars NOT blue", "--output", output,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var out rerankOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 2, out.Updated)
	assert.Equal(t, 1, out.Excluded)
	require.Len(t, out.ResultSets, 1)

	results := out.ResultSets[0].Results
	require.Len(t, results, 3)
	assert.Greater(t, results[0].Score.Value(), results[2].Score.Value())
	assert.True(t, results[1].Explain.Excluded())
	assert.Equal(t, "*electric* *cars* are fast", results[0].Fields["title"])
}

func TestRerankCommand_AllStopwords(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", testConfig)
	input := writeFile(t, dir, "sets.json", testSets)

	err := newApp().Run([]string{
		"relevancy-cli", "--config", cfgPath,
		"rerank", "--input", input, "--query", "the of and",
		"--output", filepath.Join(dir, "out.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopwords")
}

func TestRerankCommand_RequiredFlags(t *testing.T) {
	err := newApp().Run([]string{"relevancy-cli", "rerank", "--input", "x.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", testConfig)
	jobs := writeFile(t, dir, "jobs.json", `[
  {"id": "a", "query": "electric cars", "result_sets": `+testSets+`},
  {"id": "b", "query": "the", "result_sets": `+testSets+`},
  {"id": "c", "query": "gardening", "result_sets": `+testSets+`}
]`)
	output := filepath.Join(dir, "out.json")

	err := newApp().Run([]string{
		"relevancy-cli", "--config", cfgPath,
		"batch", "--jobs", jobs, "--workers", "2", "--no-explain", "--output", output,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var items []batchItem
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 3)

	assert.Equal(t, "ok", items[0].Status)
	assert.Equal(t, 3, items[0].Updated)
	assert.Equal(t, "error", items[1].Status)
	assert.Contains(t, items[1].Error, "stopwords")
	assert.Equal(t, "ok", items[2].Status)
	assert.Nil(t, items[2].ResultSets[0].Results[0].Explain)
}

func TestBatchCommand_WorkersFlagDefault(t *testing.T) {
	app := newApp()
	for _, cmd := range app.Commands {
		if cmd.Name != "batch" {
			continue
		}
		for _, f := range cmd.Flags {
			if names := f.Names(); names[0] == "workers" {
				return
			}
		}
	}
	t.Fatal("batch command has no workers flag")
}
