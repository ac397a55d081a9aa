// Package lru decorates a kvstore.Store with a fixed-size in-memory LRU
// cache of recently read/written node blobs, mirroring the clean-node cache
// every go-ethereum-descended trie database keeps in front of its disk
// store (vechain-thor's muxdb and sonhv0212-ronin's trie database both hold
// one; this repo's flavor is a pluggable decorator instead of baked into
// the database type).
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jaiminpan/merkletrie/kvstore"
)

// Store wraps an underlying kvstore.Store with a read/write-through LRU
// cache keyed by content hash. Since entries are content-addressed, a
// cached value never goes stale: Put and Get always agree on the same
// bytes for the same hash.
type Store struct {
	next  kvstore.Store
	cache *lru.Cache[kvstore.Hash, []byte]
}

// New wraps next with an LRU cache holding up to size node blobs.
func New(next kvstore.Store, size int) (*Store, error) {
	c, err := lru.New[kvstore.Hash, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Store{next: next, cache: c}, nil
}

func (s *Store) Get(hash kvstore.Hash) ([]byte, bool, error) {
	if v, ok := s.cache.Get(hash); ok {
		return v, true, nil
	}
	v, ok, err := s.next.Get(hash)
	if err != nil || !ok {
		return v, ok, err
	}
	s.cache.Add(hash, v)
	return v, true, nil
}

func (s *Store) Put(hash kvstore.Hash, value []byte) error {
	if err := s.next.Put(hash, value); err != nil {
		return err
	}
	s.cache.Add(hash, value)
	return nil
}

func (s *Store) Has(hash kvstore.Hash) (bool, error) {
	if s.cache.Contains(hash) {
		return true, nil
	}
	return s.next.Has(hash)
}

// NewBatch implements kvstore.Batcher. When the wrapped store is itself a
// Batcher, writes go through its batch; otherwise they are buffered and
// replayed through Put on Write. Either way, written entries populate the
// cache so a subsequent Get hits without a round trip.
func (s *Store) NewBatch() kvstore.Batch {
	batcher, ok := s.next.(kvstore.Batcher)
	if !ok {
		return &directBatch{store: s}
	}
	return &cachingBatch{cache: s.cache, inner: batcher.NewBatch()}
}

type directBatch struct {
	store   *Store
	pending []struct {
		hash  kvstore.Hash
		value []byte
	}
}

func (b *directBatch) Put(hash kvstore.Hash, value []byte) error {
	b.pending = append(b.pending, struct {
		hash  kvstore.Hash
		value []byte
	}{hash, value})
	return nil
}

func (b *directBatch) Len() int { return len(b.pending) }

func (b *directBatch) Write() error {
	for _, e := range b.pending {
		if err := b.store.Put(e.hash, e.value); err != nil {
			return err
		}
	}
	b.pending = b.pending[:0]
	return nil
}

type cachingBatch struct {
	cache   *lru.Cache[kvstore.Hash, []byte]
	inner   kvstore.Batch
	pending []struct {
		hash  kvstore.Hash
		value []byte
	}
}

func (b *cachingBatch) Put(hash kvstore.Hash, value []byte) error {
	b.pending = append(b.pending, struct {
		hash  kvstore.Hash
		value []byte
	}{hash, value})
	return b.inner.Put(hash, value)
}

func (b *cachingBatch) Len() int { return b.inner.Len() }

func (b *cachingBatch) Write() error {
	if err := b.inner.Write(); err != nil {
		return err
	}
	for _, e := range b.pending {
		b.cache.Add(e.hash, e.value)
	}
	b.pending = b.pending[:0]
	return nil
}
