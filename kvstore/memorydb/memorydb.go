// Package memorydb is an in-memory kvstore.Store, grounded on the teacher's
// accdb/memorydb package — an ephemeral map-backed store used in tests and
// as the default for a trie that never leaves memory.
package memorydb

import (
	"sync"

	"github.com/jaiminpan/merkletrie/kvstore"
)

// Store is an ephemeral, map-backed kvstore.Store. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	db map[kvstore.Hash][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{db: make(map[kvstore.Hash][]byte)}
}

func (s *Store) Get(hash kvstore.Hash) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.db[hash]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Put(hash kvstore.Hash, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.db[hash] = cp
	return nil
}

func (s *Store) Has(hash kvstore.Hash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.db[hash]
	return ok, nil
}

// Len reports the number of entries currently stored. Mostly useful in
// tests that want to assert on the shape of a committed trie.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.db)
}

// Each calls fn once per stored (hash, value) pair, in no particular
// order. It exists mainly so the wire package can serialize an entire
// proof store without reaching into its internals.
func (s *Store) Each(fn func(kvstore.Hash, []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for h, v := range s.db {
		if err := fn(h, v); err != nil {
			return err
		}
	}
	return nil
}

// NewBatch implements kvstore.Batcher.
func (s *Store) NewBatch() kvstore.Batch {
	return &batch{store: s}
}

type batch struct {
	store   *Store
	pending []entry
}

type entry struct {
	hash  kvstore.Hash
	value []byte
}

func (b *batch) Put(hash kvstore.Hash, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	b.pending = append(b.pending, entry{hash, cp})
	return nil
}

func (b *batch) Len() int { return len(b.pending) }

func (b *batch) Write() error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, e := range b.pending {
		b.store.db[e.hash] = e.value
	}
	b.pending = b.pending[:0]
	return nil
}
