// Package kvstore defines the content-addressed backing-store contract
// described in spec.md §6.1: a map from a 32-byte digest to an opaque
// byte-string, plus the reference implementations this repo ships with.
package kvstore

// HashLen is the fixed key width the store contract requires.
const HashLen = 32

// Hash is a 32-byte content-address. It is the sole key type accepted by
// Store.
type Hash [HashLen]byte

// Store is the backing-store contract trie and proof verification are built
// against. Implementations MUST be idempotent on Put for an identical
// (hash, value) pair, per spec.md §6.1.
type Store interface {
	// Get retrieves the value for hash. It returns ok=false, not an error,
	// when hash is simply absent; a non-nil error indicates an I/O failure.
	Get(hash Hash) (value []byte, ok bool, err error)

	// Put stores value under hash. Repeated Puts of the same pair are a
	// no-op from the caller's perspective.
	Put(hash Hash, value []byte) error

	// Has reports whether hash is present, without fetching its value.
	Has(hash Hash) (bool, error)
}

// Batcher is implemented by stores that can buffer a sequence of writes and
// flush them together; COMMIT uses it when available to avoid one round
// trip per node.
type Batcher interface {
	NewBatch() Batch
}

// Batch buffers Put calls issued during a single COMMIT and flushes them in
// one call to the underlying store.
type Batch interface {
	Put(hash Hash, value []byte) error
	Write() error
	Len() int
}
