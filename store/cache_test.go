package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-network/kelvin/digest"
)

func TestReadCachePutGet(t *testing.T) {
	c := newReadCache(1 << 20)
	d := digest.Sum(digest.SHA256, []byte("cached"))
	c.put(d, []byte("cached"))

	got, ok := c.get(d)
	require.True(t, ok)
	require.True(t, bytes.Equal(got, []byte("cached")))
}

func TestReadCacheEvictsUnderPressure(t *testing.T) {
	// A tiny capacity forces eviction after a couple of puts in the same shard.
	c := newReadCache(int64(shardCount) * 8)
	var digests []digest.Digest
	for i := 0; i < 64; i++ {
		payload := bytes.Repeat([]byte{byte(i)}, 64)
		d := digest.Sum(digest.SHA256, payload)
		c.put(d, payload)
		digests = append(digests, d)
	}

	var hits int
	for _, d := range digests {
		if _, ok := c.get(d); ok {
			hits++
		}
	}
	require.Less(t, hits, len(digests), "expected some entries to have been evicted")
}

func TestReadCacheMissReturnsFalse(t *testing.T) {
	c := newReadCache(1 << 20)
	d := digest.Sum(digest.SHA256, []byte("never stored"))
	_, ok := c.get(d)
	require.False(t, ok)
}
