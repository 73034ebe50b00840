package grpc

import (
	"time"

	"github.com/bluele/gcache"
	"github.com/example/nodeplugin/proto"
)

const defaultMetadataCacheSize = 128

// MetadataCache keeps plugin descriptors by address. Metadata never changes
// for a running plugin, so entries live until they expire or are invalidated
// when the registry entry goes away.
type MetadataCache struct {
	cache gcache.Cache
}

// NewMetadataCache builds an LRU cache of size entries. A zero expire keeps
// entries until they are evicted or invalidated.
func NewMetadataCache(size int, expire time.Duration) *MetadataCache {
	if size <= 0 {
		size = defaultMetadataCacheSize
	}
	builder := gcache.New(size).LRU()
	if expire > 0 {
		builder = builder.Expiration(expire)
	}
	return &MetadataCache{cache: builder.Build()}
}

func (c *MetadataCache) get(address string) (*proto.GetMetadataResponse, bool) {
	cached, err := c.cache.Get(address)
	if err != nil || cached == nil {
		return nil, false
	}
	return cached.(*proto.GetMetadataResponse), true
}

func (c *MetadataCache) set(address string, md *proto.GetMetadataResponse) {
	_ = c.cache.Set(address, md)
}

// Invalidate drops the descriptor cached for address.
func (c *MetadataCache) Invalidate(address string) {
	c.cache.Remove(address)
}

// Len returns the number of cached descriptors.
func (c *MetadataCache) Len() int {
	return c.cache.Len(true)
}
