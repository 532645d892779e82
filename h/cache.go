package h

import (
	"time"

	"github.com/Shopmatic/apartment/log"
	"github.com/dgraph-io/ristretto/v2"
)

type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type cacheImpl struct {
	internal *ristretto.Cache[string, any]
	ttl      time.Duration
}

// NewCache builds a small in-process cache. The http tenant registry uses it
// to avoid refetching the tenant list on every bulk run.
func NewCache(ttl time.Duration) Cache {
	internal, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatal("failed to create cache: %v", err)
	}
	return &cacheImpl{
		internal: internal,
		ttl:      ttl,
	}
}

func (c *cacheImpl) Get(key string) (any, bool) {
	return c.internal.Get(key)
}

func (c *cacheImpl) Set(key string, value any) {
	c.internal.SetWithTTL(key, value, 1, c.ttl)
	c.internal.Wait()
}
