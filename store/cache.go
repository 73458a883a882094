package store

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/dusk-network/kelvin/digest"
)

// readCache is a sharded, byte-bounded LRU cache of recently-read blobs,
// adapted from the teacher's integrity.ChecksumCache (integrity/cache.go):
// the same sharded-mutex-map shape, but keyed with xxhash instead of
// hash/maphash (xxhash is already an indirect dependency pulled in by
// several repos in the pack, and unlike maphash its seed doesn't need to
// be process-local, so cache keys are reproducible across runs for
// debugging).
type readCache struct {
	shards   [shardCount]shard
	capacity int64 // total bytes across all shards
}

const (
	shardCount = 1 << 5
	shardMask  = shardCount - 1
)

type shard struct {
	mu    sync.Mutex
	data  map[uint64]*list.Element
	order *list.List // front = most recently used
	bytes int64
}

type cacheEntry struct {
	key   uint64
	digest digest.Digest
	data  []byte
}

func newReadCache(capacityBytes int64) *readCache {
	c := &readCache{capacity: capacityBytes}
	for i := range c.shards {
		c.shards[i].data = make(map[uint64]*list.Element)
		c.shards[i].order = list.New()
	}
	return c
}

func shardKey(d digest.Digest) (shardIdx int, key uint64) {
	b := d.Bytes()
	key = xxhash.Sum64(b)
	return int(key & shardMask), key
}

func (c *readCache) get(d digest.Digest) ([]byte, bool) {
	idx, key := shardKey(d)
	sh := &c.shards[idx]
	sh.mu.Lock()
	defer sh.mu.Unlock()

	elem, ok := sh.data[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if !entry.digest.Equal(d) {
		// xxhash collision across distinct digests; treat as a miss.
		return nil, false
	}
	sh.order.MoveToFront(elem)
	return entry.data, true
}

func (c *readCache) put(d digest.Digest, data []byte) {
	idx, key := shardKey(d)
	sh := &c.shards[idx]
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if elem, ok := sh.data[key]; ok {
		sh.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).data = data
		return
	}

	elem := sh.order.PushFront(&cacheEntry{key: key, digest: d, data: data})
	sh.data[key] = elem
	sh.bytes += int64(len(data))

	perShardCap := c.capacity / shardCount
	for sh.bytes > perShardCap && sh.order.Len() > 1 {
		back := sh.order.Back()
		evicted := back.Value.(*cacheEntry)
		sh.order.Remove(back)
		delete(sh.data, evicted.key)
		sh.bytes -= int64(len(evicted.data))
	}
}
