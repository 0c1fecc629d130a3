package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{
			Providers: map[string]ProviderConfig{
				"local": {Kind: ProviderHashing},
			},
			Vectorizers: map[string]VectorizerConfig{
				"default": {Provider: "local", Dimensions: 256},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidProviderKind(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Providers["local"] = ProviderConfig{Kind: "bogus"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid provider kind")
	}

	expected := `embedding.providers.local.kind must be "openai" or "hashing", got "bogus"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_UnknownVectorizerProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Vectorizers["default"] = VectorizerConfig{Provider: "missing"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for undefined provider")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing valkey addrs")
	}
}

func TestValidate_Badger(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{Driver: DriverBadger}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for badger without path")
	}

	cfg.Database.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for in-memory badger: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_Relevancy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative weight", func(c *Config) { c.Relevancy.Fields.Set("title", FieldConfig{Weight: -1}) }},
		{"min similarity above one", func(c *Config) {
			v := 1.5
			c.Relevancy.MinSimilarity = &v
		}},
		{"negative max matches", func(c *Config) { c.Relevancy.MaxMatches = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.HasPrefix(err.Error(), "relevancy:") {
				t.Fatalf("expected relevancy error, got %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Cache.LRUSize != 4096 {
		t.Errorf("expected LRUSize=4096, got %d", cfg.Embedding.Cache.LRUSize)
	}

	rc := cfg.Relevancy.Domain()
	if len(rc.Fields) != 3 || rc.Fields[0].Name != "title" || rc.Fields[0].Weight != 1.5 {
		t.Errorf("unexpected default fields: %+v", rc.Fields)
	}
	if rc.MinSimilarity != 0.51 {
		t.Errorf("expected MinSimilarity=0.51, got %v", rc.MinSimilarity)
	}
	if rc.MaxMatches != 5 {
		t.Errorf("expected MaxMatches=5, got %d", rc.MaxMatches)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{Driver: DriverRedis, ReadinessTimeout: 15},
		Relevancy: RelevancyConfig{MinSimilarity: &zero, MaxMatches: 2},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if *cfg.Relevancy.MinSimilarity != 0 {
		t.Errorf("explicit zero min_similarity overridden: %v", *cfg.Relevancy.MinSimilarity)
	}
	if cfg.Relevancy.MaxMatches != 2 {
		t.Errorf("expected MaxMatches=2, got %d", cfg.Relevancy.MaxMatches)
	}
}

func TestParse_FieldOrder(t *testing.T) {
	t.Setenv("RELEVANCY_TEST_PORT", "9090")
	doc := []byte(`
http:
  port: ${RELEVANCY_TEST_PORT}
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
relevancy:
  fields:
    body:
      weight: 1
    title:
      weight: 2.5
    url:
      weight: 0.5
  min_similarity: 0.6
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.Vectorizer != "default" {
		t.Errorf("single vectorizer not selected: %q", cfg.Embedding.Vectorizer)
	}

	rc := cfg.Relevancy.Domain()
	var names []string
	for _, f := range rc.Fields {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "body,title,url" {
		t.Errorf("field order = %v, want body,title,url", names)
	}
	if w, _ := rc.Weight("title"); w != 2.5 {
		t.Errorf("title weight = %v, want 2.5", w)
	}
	if rc.MinSimilarity != 0.6 || rc.MaxMatches != 5 {
		t.Errorf("unexpected thresholds: %+v", rc)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	got := string(expandEnvVars([]byte("addr: ${RELEVANCY_UNSET_VAR:-localhost:6379}")))
	if got != "addr: localhost:6379" {
		t.Errorf("got %q", got)
	}
}
