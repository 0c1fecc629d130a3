// Package resultset persists scored result sets in the key-value store.
//
// Each set is one JSON value under results:<search>:<provider>. A hash under
// search:<search> maps provider to value key so a search's sets can be listed
// without scanning.
package resultset

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/kailas-cloud/relevancy/internal/db"
	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
)

// store is the consumer interface for result sets (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
}

// Repo implements usecase/relevancy.Repository.
type Repo struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// New creates a result set repository. ttl <= 0 keeps sets forever.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl, now: time.Now}
}

// Save writes a set and registers it under its search.
func (r *Repo) Save(ctx context.Context, set domrs.Set) error {
	if set.SearchID == "" {
		return fmt.Errorf("%w: search id is required", domain.ErrInvalidResultSet)
	}
	if set.Provider == "" {
		return fmt.Errorf("%w: provider is required", domain.ErrInvalidResultSet)
	}

	data, err := setToJSON(set, r.now())
	if err != nil {
		return err
	}

	key := resultsKey(set.SearchID, set.Provider)
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("set results %s: %w", key, err)
	}

	idx := searchKey(set.SearchID)
	if err := r.store.HSet(ctx, idx, map[string]string{set.Provider: key}); err != nil {
		return fmt.Errorf("hset search %s: %w", set.SearchID, err)
	}
	if err := r.store.Expire(ctx, idx, r.ttl); err != nil {
		return fmt.Errorf("expire search %s: %w", set.SearchID, err)
	}
	return nil
}

// Get returns the set a provider returned for a search.
func (r *Repo) Get(ctx context.Context, searchID, provider string) (domrs.Set, error) {
	data, err := r.store.Get(ctx, resultsKey(searchID, provider))
	if errors.Is(err, db.ErrKeyNotFound) {
		return domrs.Set{}, domain.ErrNotFound
	}
	if err != nil {
		return domrs.Set{}, fmt.Errorf("get results %s/%s: %w", searchID, provider, err)
	}
	return setFromJSON(data)
}

// List returns every stored set of a search ordered by provider rank, then name.
// Index entries whose value has expired are pruned.
func (r *Repo) List(ctx context.Context, searchID string) ([]domrs.Set, error) {
	idx := searchKey(searchID)
	entries, err := r.store.HGetAll(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("hgetall search %s: %w", searchID, err)
	}
	if len(entries) == 0 {
		return []domrs.Set{}, nil
	}

	providers := slices.Sorted(maps.Keys(entries))
	keys := make([]string, len(providers))
	for i, p := range providers {
		keys[i] = entries[p]
	}

	values, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get results of %s: %w", searchID, err)
	}

	sets := make([]domrs.Set, 0, len(values))
	var stale []string
	for i, data := range values {
		if data == nil {
			stale = append(stale, providers[i])
			continue
		}
		set, err := setFromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		sets = append(sets, set)
	}
	if len(stale) > 0 {
		if err := r.store.HDel(ctx, idx, stale...); err != nil {
			return nil, fmt.Errorf("prune search %s: %w", searchID, err)
		}
	}

	slices.SortStableFunc(sets, func(a, b domrs.Set) int {
		return cmp.Or(cmp.Compare(a.Rank, b.Rank), cmp.Compare(a.Provider, b.Provider))
	})
	return sets, nil
}

// Delete removes a search and all of its sets.
func (r *Repo) Delete(ctx context.Context, searchID string) error {
	idx := searchKey(searchID)
	entries, err := r.store.HGetAll(ctx, idx)
	if err != nil {
		return fmt.Errorf("hgetall search %s: %w", searchID, err)
	}
	if len(entries) == 0 {
		return domain.ErrNotFound
	}

	keys := append(slices.Collect(maps.Values(entries)), idx)
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete search %s: %w", searchID, err)
	}
	return nil
}
