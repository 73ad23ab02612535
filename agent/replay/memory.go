package replay

import (
	"context"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. Entries are lost on restart
// and not shared between replicas.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{cache: cache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v.([]byte)), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, body []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.cache.SetDefault(key, slices.Clone(body))
	return nil
}
