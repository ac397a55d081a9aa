package trie

import (
	"golang.org/x/crypto/blake2b"

	"github.com/jaiminpan/merkletrie/kvstore"
)

// hash computes the spec.md §4.2 digest: Blake2b configured for a 32-byte
// variable-length output over data. The hash function is part of the
// on-disk format — changing it changes every digest in every store.
func hash(data []byte) kvstore.Hash {
	h, err := blake2b.New(kvstore.HashLen, nil)
	if err != nil {
		// blake2b.New only fails for an out-of-range size or a MAC key
		// longer than the digest; HashLen (32) and a nil key never do.
		panic(err)
	}
	h.Write(data)
	var out kvstore.Hash
	copy(out[:], h.Sum(nil))
	return out
}
