// Package trie implements the core of an authenticated, versioned, hexary
// Merkle-Patricia Trie: the Leaf/Extension/Branch node algebra and the
// INSERT, LOOKUP, COMMIT and REVERT operations over it (spec.md §§3-4).
//
// A Trie is not safe for concurrent use (spec.md §5): callers sharing one
// backing store across multiple Tries must make the store itself safe for
// concurrent access (kvstore/memorydb and kvstore/leveldb are; decorate
// with kvstore/lru as needed).
package trie

import (
	"log/slog"

	"github.com/jaiminpan/merkletrie/kvstore"
	"github.com/jaiminpan/merkletrie/nibble"
)

// Trie is a mutable handle over one versioned hexary trie: a root link, the
// backing store it resolves digests against, and a dirty flag tracking
// whether root has uncommitted in-memory nodes (spec.md §3).
type Trie struct {
	root  link
	store kvstore.Store
	dirty bool
}

// New creates an empty trie over store. Use Revert to open an existing
// root instead.
func New(store kvstore.Store) *Trie {
	return &Trie{root: emptyLink, store: store}
}

// Open creates a trie handle rooted at an existing digest. It does not
// verify the digest is present in store; a subsequent Get or Insert that
// needs to resolve it will surface MissingNodeError if it's not.
func Open(store kvstore.Store, root kvstore.Hash) *Trie {
	return &Trie{root: digestLink(root), store: store}
}

// Get implements spec.md §4.4 LOOKUP. ok is false for an absent key — that
// is a normal result, not an error.
func (t *Trie) Get(key []byte) (value []byte, ok bool, err error) {
	return t.get(t.root, nil, nibble.FromBytes(key))
}

// Insert implements spec.md §4.5 INSERT, folding (key, value) into the
// trie's in-memory node tree and marking it dirty. Multiple Inserts may
// accumulate before a Commit.
func (t *Trie) Insert(key, value []byte) error {
	newRoot, err := t.insert(t.root, nil, nibble.FromBytes(key), value)
	if err != nil {
		return err
	}
	t.root = newRoot
	t.dirty = true
	return nil
}

// Commit implements spec.md §4.6 COMMIT: it serializes, hashes, and
// persists every in-memory node bottom-up, replacing the root with a
// Digest link. ok is false iff the trie is (and remains) empty — spec.md
// §9's distinguished "no root" result, not an error and not the zero hash.
// Commit is idempotent: calling it again on an already-committed trie
// returns the same root and performs no store writes.
func (t *Trie) Commit() (root kvstore.Hash, ok bool, err error) {
	if t.root.isEmpty() {
		return kvstore.Hash{}, false, nil
	}
	if !t.dirty && t.root.kind == linkDigest {
		logger.Debug("trie: commit is a no-op, root already committed", "root", t.root.digest)
		return t.root.digest, true, nil
	}

	c := newCommitter(t.store)
	newRoot, err := c.collapse(t.root)
	if err != nil {
		return kvstore.Hash{}, false, err
	}
	if err := c.flush(); err != nil {
		return kvstore.Hash{}, false, err
	}
	t.root = newRoot
	t.dirty = false
	return newRoot.digest, true, nil
}

// Revert implements spec.md §4.9: it reseats root at a historical digest
// the caller is responsible for knowing is present in the store. LOOKUP
// against an unknown root surfaces MissingNodeError lazily rather than
// Revert failing eagerly.
func (t *Trie) Revert(root kvstore.Hash) {
	t.root = digestLink(root)
	t.dirty = false
}

// Dirty reports whether the trie has in-memory changes not yet folded into
// a Digest root by Commit.
func (t *Trie) Dirty() bool { return t.dirty }

// Root returns the trie's committed root digest. ok is false when the root
// is empty or holds uncommitted in-memory nodes — commit first if a digest
// is needed (GetProof does this automatically, per spec.md §4.7).
func (t *Trie) Root() (kvstore.Hash, bool) {
	if t.root.kind != linkDigest {
		return kvstore.Hash{}, false
	}
	return t.root.digest, true
}

var logger = slog.Default()
