package trie

import (
	"bytes"

	"github.com/jaiminpan/merkletrie/kvstore"
)

// linkResolver resolves a link to the value reachable under key, recursing
// through whatever intermediate nodes it finds. Trie.get and the proof
// generator's captureResolver are the two implementations: they agree on
// everything except what happens when a Digest link is followed (plain
// lookup just fetches and decodes; proof generation additionally copies
// the fetched bytes into a proof store).
type linkResolver func(l link, path, key []byte) (value []byte, ok bool, err error)

// get implements spec.md §4.4 LOOKUP. ok is false for an absent key, which
// is a normal result, not an error; err is reserved for store and codec
// failures resolving a referenced digest.
func (t *Trie) get(l link, path, key []byte) ([]byte, bool, error) {
	switch l.kind {
	case linkEmpty:
		return nil, false, nil
	case linkDigest:
		n, err := t.resolve(l.digest, path)
		if err != nil {
			return nil, false, err
		}
		return getFromNode(n, path, key, t.get)
	case linkInline:
		return getFromNode(l.node, path, key, t.get)
	default:
		panic("trie: invalid link kind")
	}
}

// getFromNode applies spec.md §4.4's per-variant LOOKUP rule to n, calling
// resolve to recurse into a child link.
func getFromNode(n node, path, key []byte, resolve linkResolver) ([]byte, bool, error) {
	switch v := n.(type) {
	case *leaf:
		if bytes.Equal(v.rest, key) {
			return v.value, true, nil
		}
		return nil, false, nil
	case *extension:
		if len(key) < len(v.key) || !bytes.Equal(v.key, key[:len(v.key)]) {
			return nil, false, nil
		}
		return resolve(v.child, append(path, v.key...), key[len(v.key):])
	case *branch:
		if len(key) == 0 {
			return v.value, v.value != nil, nil
		}
		i := key[0]
		return resolve(v.children[i], append(path, i), key[1:])
	default:
		panic("trie: invalid node type")
	}
}

// resolve fetches and decodes the node stored under hash, recording the
// fetch's originating path in any error for diagnostics.
func (t *Trie) resolve(hash kvstore.Hash, path []byte) (node, error) {
	raw, ok, err := t.store.Get(hash)
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	if !ok {
		p := make([]byte, len(path))
		copy(p, path)
		return nil, &MissingNodeError{Hash: hash, Path: p}
	}
	n, err := decode(raw)
	if err != nil {
		logger.Warn("trie: store returned bytes that don't decode as a node",
			"hash", hash, "path", path, "err", err)
		return nil, err
	}
	return n, nil
}
