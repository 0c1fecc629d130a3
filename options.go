package relevancy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "valkey", "redis", "badger" or "" for no persistence
	addrs      []string
	password   string
	badgerPath string
	inMemory   bool
	resultTTL  time.Duration

	embedder  Embedder
	cacheSize int

	fields        []Field
	minSimilarity *float64
	maxMatches    int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey persists result sets in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis persists result sets in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBadger persists result sets in an embedded BadgerDB at path.
func WithBadger(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerPath = path
		c.inMemory = false
	})
}

// WithInMemory persists result sets in an in-memory BadgerDB, lost on Close.
func WithInMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerPath = ""
		c.inMemory = true
	})
}

// WithResultTTL expires stored result sets. Default: never.
func WithResultTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.resultTTL = ttl
	})
}

// WithEmbedder sets the text embedding provider.
// Default: an offline feature-hashing embedder.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorCacheSize sets how many embeddings are memoized in process.
func WithVectorCacheSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = n
	})
}

// WithFields sets the scored fields, their weights and scan order.
// Default: title 1.5, body 1.0, author 1.0.
func WithFields(fields ...Field) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = fields
	})
}

// WithMinSimilarity sets the similarity below which a match does not count.
// Default: 0.51.
func WithMinSimilarity(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.minSimilarity = &v
	})
}

// WithMaxMatches caps the positional matches recorded per target and field.
// Default: 5.
func WithMaxMatches(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxMatches = n
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
