// Package badger implements db.Store over an embedded BadgerDB, on disk or in memory.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Values carry a one-byte type tag so a hash key and a string key cannot be
// confused, as in Redis.
const (
	tagString byte = 's'
	tagHash   byte = 'h'
)

var errWrongType = errors.New("WRONGTYPE operation against a key holding the wrong kind of value")

// Config holds the database location.
type Config struct {
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Store implements db.Store via BadgerDB.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// zapAdapter adapts zap to the badger.Logger interface.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.sugar.Errorf(msg, items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.sugar.Warnf(msg, items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.sugar.Debugf(msg, items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.sugar.Debugf(msg, items...) }

// Open opens a BadgerDB database. A disk path is created if it doesn't exist.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &zapAdapter{sugar: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb, logger: logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close badger", zap.Error(err))
	}
}

// WaitForReady returns once the database answers Ping. An embedded database is
// ready as soon as it is open.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Ping(ctx)
}

// --- KV ---

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		v, err := readTagged(txn, key, tagString)
		out = v
		return err
	})
	if err != nil {
		return nil, wrap(db.OpGet, err)
	}
	return out, nil
}

// GetMulti fetches several keys in one read transaction. Missing keys yield nil entries.
func (s *Store) GetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	out := make([][]byte, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			v, err := readTagged(txn, key, tagString)
			switch {
			case errors.Is(err, db.ErrKeyNotFound), errors.Is(err, errWrongType):
				continue
			case err != nil:
				return err
			}
			out[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	return out, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value with an expiration. ttl <= 0 stores it without one.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	e := badger.NewEntry([]byte(key), tagged(tagString, value))
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	if err := s.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(e) }); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Expire sets TTL on a key by rewriting it. ttl <= 0 is a no-op.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(key), val).WithTTL(ttl))
	})
	if err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}

// --- Hash ---

// HSet merges fields into a hash, keeping its expiry.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		h, expiresAt, err := readHash(txn, key)
		if err != nil {
			return err
		}
		for k, v := range fields {
			h[k] = v
		}
		return writeHash(txn, key, h, expiresAt)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing hash is an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	var out map[string]string
	err := s.db.View(func(txn *badger.Txn) error {
		h, _, err := readHash(txn, key)
		out = h
		return err
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// HDel removes fields from a hash. An emptied hash is deleted.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpHDel, Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		h, expiresAt, err := readHash(txn, key)
		if err != nil {
			return err
		}
		for _, f := range fields {
			delete(h, f)
		}
		if len(h) == 0 {
			return txn.Delete([]byte(key))
		}
		return writeHash(txn, key, h, expiresAt)
	})
	if err != nil {
		return &db.Error{Op: db.OpHDel, Err: err}
	}
	return nil
}

// Del deletes keys of any type.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return found, nil
}

// --- encoding ---

func tagged(tag byte, value []byte) []byte {
	out := make([]byte, 0, len(value)+1)
	out = append(out, tag)
	return append(out, value...)
}

// readTagged returns the value at key if it carries tag.
func readTagged(txn *badger.Txn, key string, tag byte) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || raw[0] != tag {
		return nil, errWrongType
	}
	return raw[1:], nil
}

// readHash returns the hash at key and its expiry; a missing key is an empty hash.
func readHash(txn *badger.Txn, key string) (map[string]string, uint64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return map[string]string{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, 0, err
	}
	if len(raw) == 0 || raw[0] != tagHash {
		return nil, 0, errWrongType
	}
	h := map[string]string{}
	if err := json.Unmarshal(raw[1:], &h); err != nil {
		return nil, 0, fmt.Errorf("decode hash %s: %w", key, err)
	}
	return h, item.ExpiresAt(), nil
}

func writeHash(txn *badger.Txn, key string, h map[string]string, expiresAt uint64) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode hash %s: %w", key, err)
	}
	e := badger.NewEntry([]byte(key), tagged(tagHash, data))
	e.ExpiresAt = expiresAt
	return txn.SetEntry(e)
}

func wrap(op string, err error) error {
	if errors.Is(err, db.ErrKeyNotFound) {
		return db.ErrKeyNotFound
	}
	return &db.Error{Op: op, Err: err}
}
