package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. It suits tests and single-instance
// deployments.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a [MemoryStore] whose entries default to ttl and are swept
// every cleanup interval.
func NewMemoryStore(ttl, cleanup time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryStore{cache: cache.New(ttl, cleanup)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (map[string]string, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	stored := v.(map[string]string)

	out := make(map[string]string, len(stored))
	for k, val := range stored {
		out[k] = val
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		s.cache.Delete(id)
		return nil
	}

	stored := make(map[string]string, len(values))
	for k, v := range values {
		stored[k] = v
	}
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(id, stored, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
