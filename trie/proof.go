package trie

import (
	"github.com/jaiminpan/merkletrie/kvstore"
	"github.com/jaiminpan/merkletrie/kvstore/memorydb"
	"github.com/jaiminpan/merkletrie/nibble"
)

// GetProof implements spec.md §4.7: it traverses the trie's backing store
// from root — not necessarily the trie's own current root, so callers can
// prove against any historical digest they still hold (spec.md §8
// scenarios S4/S5) — copying every traversed serialized node into a fresh
// proof store keyed by its own digest, and reports whether key exists.
//
// If the live trie is dirty, GetProof commits it first (spec.md §4.7 step
// 1), so the store is guaranteed to hold everything reachable from the
// trie's latest state before the traversal begins. If root isn't present
// in the backing store at all, it returns (false, an empty store) rather
// than an error.
func (t *Trie) GetProof(root kvstore.Hash, key []byte) (exists bool, proofStore *memorydb.Store, err error) {
	if t.dirty {
		if _, _, err := t.Commit(); err != nil {
			return false, nil, err
		}
	}
	proofStore = memorydb.New()
	return generateProof(t.store, proofStore, root, key)
}

// generateProof is the free-standing form of GetProof: given a root digest
// known (by the caller) to live in store, it populates proofStore with the
// spine from root to key and reports whether key exists.
func generateProof(store kvstore.Store, proofStore *memorydb.Store, root kvstore.Hash, key []byte) (bool, *memorydb.Store, error) {
	c := &captureResolver{store: store, proof: proofStore}
	n, err := c.fetch(root, nil)
	if err != nil {
		if _, missing := err.(*MissingNodeError); missing {
			return false, proofStore, nil
		}
		return false, proofStore, err
	}
	_, exists, err := getFromNode(n, nil, nibble.FromBytes(key), c.get)
	if err != nil {
		return false, proofStore, err
	}
	return exists, proofStore, nil
}

// captureResolver is a linkResolver that additionally copies every node
// fetched through a Digest link into the proof store, so the proof store
// ends up holding exactly the spine from root to the (possibly absent)
// target — spec.md §4.7's "minimal spine" property.
type captureResolver struct {
	store kvstore.Store
	proof *memorydb.Store
}

func (c *captureResolver) fetch(hash kvstore.Hash, path []byte) (node, error) {
	raw, ok, err := c.store.Get(hash)
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	if !ok {
		p := make([]byte, len(path))
		copy(p, path)
		return nil, &MissingNodeError{Hash: hash, Path: p}
	}
	if err := c.proof.Put(hash, raw); err != nil {
		return nil, &StoreError{Op: "put", Err: err}
	}
	return decode(raw)
}

func (c *captureResolver) get(l link, path, key []byte) ([]byte, bool, error) {
	switch l.kind {
	case linkEmpty:
		return nil, false, nil
	case linkDigest:
		n, err := c.fetch(l.digest, path)
		if err != nil {
			return nil, false, err
		}
		return getFromNode(n, path, key, c.get)
	case linkInline:
		return getFromNode(l.node, path, key, c.get)
	default:
		panic("trie: invalid link kind")
	}
}

// VerifyProof implements spec.md §4.8: a pure function over a root digest,
// a proof store (as produced by GetProof), and a key. It runs LOOKUP
// against the proof store as the only backing store; a proof store missing
// a node on the key's path surfaces as a MissingNodeError, since every link
// fetch is keyed by a digest. Fetched bytes are not re-hashed, so bytes
// altered under their original digest are not detected here;
// VerifyProofHardened performs that check.
func VerifyProof(root kvstore.Hash, proofStore kvstore.Store, key []byte) ([]byte, bool, error) {
	raw, ok, err := proofStore.Get(root)
	if err != nil {
		return nil, false, &StoreError{Op: "get", Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	n, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	t := &Trie{root: digestLink(root), store: proofStore}
	return getFromNode(n, nil, nibble.FromBytes(key), t.get)
}

// VerifyProofHardened behaves like VerifyProof but additionally recomputes
// hash(bytes) on every store read and rejects a mismatch, the hardening
// spec.md §4.8 and §9 recommend but don't require by default.
func VerifyProofHardened(root kvstore.Hash, proofStore kvstore.Store, key []byte) ([]byte, bool, error) {
	hardened := &hashCheckingStore{inner: proofStore}
	raw, ok, err := hardened.Get(root)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	n, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	t := &Trie{root: digestLink(root), store: hardened}
	return getFromNode(n, nil, nibble.FromBytes(key), t.get)
}

// hashCheckingStore wraps a kvstore.Store and verifies, on every Get, that
// the returned bytes actually hash to the requested key.
type hashCheckingStore struct {
	inner kvstore.Store
}

func (s *hashCheckingStore) Get(h kvstore.Hash) ([]byte, bool, error) {
	raw, ok, err := s.inner.Get(h)
	if err != nil || !ok {
		return raw, ok, err
	}
	if hash(raw) != h {
		return nil, false, &CodecError{Msg: "node bytes do not hash to the requested digest"}
	}
	return raw, true, nil
}

func (s *hashCheckingStore) Put(h kvstore.Hash, v []byte) error { return s.inner.Put(h, v) }
func (s *hashCheckingStore) Has(h kvstore.Hash) (bool, error)   { return s.inner.Has(h) }
