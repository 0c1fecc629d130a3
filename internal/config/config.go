package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/relevancy/internal/domain"
)

// Config holds the relevancy service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Relevancy RelevancyConfig `yaml:"relevancy"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error (default: determined by env)
	Encoding string `yaml:"encoding"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// Database drivers.
const (
	DriverValkey = "valkey"
	DriverRedis  = "redis"
	DriverBadger = "badger"
)

// DatabaseConfig holds store settings. Addrs and Password apply to valkey and redis,
// Path and InMemory to badger.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, badger (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Path             string   `yaml:"path"`
	InMemory         bool     `yaml:"in_memory"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// ResultTTLSec expires stored result sets. 0 keeps them forever.
	ResultTTLSec int `yaml:"result_ttl_sec"`
}

// ResultTTL returns the result set TTL.
func (s StorageConfig) ResultTTL() time.Duration {
	return time.Duration(s.ResultTTLSec) * time.Second
}

// Embedding provider kinds.
const (
	ProviderOpenAI  = "openai"
	ProviderHashing = "hashing"
)

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	// Vectorizer names the entry of Vectorizers used for scoring.
	Vectorizer  string                      `yaml:"vectorizer"`
	Providers   map[string]ProviderConfig   `yaml:"providers"`
	Vectorizers map[string]VectorizerConfig `yaml:"vectorizers"`
	Cache       CacheConfig                 `yaml:"cache"`
}

// CacheConfig holds the two embedding cache tiers.
type CacheConfig struct {
	// Store enables the persistent vector cache in the database.
	Store   bool `yaml:"store"`
	TTLSec  int  `yaml:"ttl_sec"`
	LRUSize int  `yaml:"lru_size"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	Kind    string `yaml:"kind"` // openai (default), hashing
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	Instruction   string `yaml:"instruction"`
	MaxInputRunes int    `yaml:"max_input_runes"`
}

// FieldConfig is the scoring setting of one result field.
type FieldConfig struct {
	Weight float64 `yaml:"weight"`
}

// RelevancyConfig holds scoring settings. Fields keeps file order.
type RelevancyConfig struct {
	Fields        *orderedmap.OrderedMap[string, FieldConfig] `yaml:"fields"`
	MinSimilarity *float64                                    `yaml:"min_similarity"`
	MaxMatches    int                                         `yaml:"max_matches"`
}

// Domain converts the section to the scoring configuration.
func (r RelevancyConfig) Domain() domain.RelevancyConfig {
	out := domain.RelevancyConfig{MaxMatches: r.MaxMatches}
	if r.MinSimilarity != nil {
		out.MinSimilarity = *r.MinSimilarity
	}
	if r.Fields != nil {
		for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
			out.Fields = append(out.Fields, domain.FieldWeight{Name: pair.Key, Weight: pair.Value.Weight})
		}
	}
	return out
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file next to the working directory is loaded first if present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 8 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Cache.LRUSize <= 0 {
		c.Embedding.Cache.LRUSize = 4096
	}
	for name, p := range c.Embedding.Providers {
		if p.Kind == "" {
			p.Kind = ProviderOpenAI
			c.Embedding.Providers[name] = p
		}
	}
	if c.Embedding.Vectorizer == "" && len(c.Embedding.Vectorizers) == 1 {
		for name := range c.Embedding.Vectorizers {
			c.Embedding.Vectorizer = name
		}
	}

	def := domain.DefaultRelevancyConfig()
	if c.Relevancy.Fields == nil || c.Relevancy.Fields.Len() == 0 {
		c.Relevancy.Fields = orderedmap.New[string, FieldConfig]()
		for _, f := range def.Fields {
			c.Relevancy.Fields.Set(f.Name, FieldConfig{Weight: f.Weight})
		}
	}
	if c.Relevancy.MinSimilarity == nil {
		v := def.MinSimilarity
		c.Relevancy.MinSimilarity = &v
	}
	if c.Relevancy.MaxMatches == 0 {
		c.Relevancy.MaxMatches = def.MaxMatches
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverBadger:
		if c.Database.Path == "" && !c.Database.InMemory {
			return errors.New("database.path is required for driver \"badger\" unless in_memory is set")
		}
	default:
		return fmt.Errorf("database.driver must be valkey, redis or badger, got %q", c.Database.Driver)
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if c.Storage.ResultTTLSec < 0 {
		return fmt.Errorf("storage.result_ttl_sec must not be negative, got %d", c.Storage.ResultTTLSec)
	}
	rc := c.Relevancy.Domain()
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("relevancy: %w", err)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	for name, p := range c.Embedding.Providers {
		switch p.Kind {
		case "", ProviderOpenAI, ProviderHashing:
		default:
			return fmt.Errorf(
				"embedding.providers.%s.kind must be \"openai\" or \"hashing\", got %q",
				name, p.Kind,
			)
		}
	}
	if c.Embedding.Vectorizer == "" {
		return errors.New("embedding.vectorizer is required")
	}
	vc, ok := c.Embedding.Vectorizers[c.Embedding.Vectorizer]
	if !ok {
		return fmt.Errorf("embedding.vectorizer %q is not defined", c.Embedding.Vectorizer)
	}
	if _, ok := c.Embedding.Providers[vc.Provider]; !ok {
		return fmt.Errorf("embedding.vectorizers.%s.provider %q is not defined",
			c.Embedding.Vectorizer, vc.Provider)
	}
	return nil
}

// ActiveVectorizer returns the selected vectorizer and its provider.
func (c *Config) ActiveVectorizer() (VectorizerConfig, ProviderConfig) {
	vc := c.Embedding.Vectorizers[c.Embedding.Vectorizer]
	return vc, c.Embedding.Providers[vc.Provider]
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
