package trie

import (
	"bytes"

	"github.com/jaiminpan/merkletrie/nibble"
)

// insert implements spec.md §4.5 INSERT: a pure functional rewrite of link
// l, producing the link that should replace it once key/value is folded
// in. The result is always an Inline link — COMMIT is the only operation
// that produces a Digest link (spec.md §4.5, closing paragraph).
//
// Each case copies rather than mutates the node it rewrites, so that a
// failed insert (a resolve error deep in the tree) leaves the caller's
// in-memory trie exactly as it was before the call — spec.md §7's
// recommended value-semantics behavior.
func (t *Trie) insert(l link, path, key, value []byte) (link, error) {
	switch l.kind {
	case linkEmpty:
		return inlineLink(&leaf{rest: key, value: value}), nil

	case linkDigest:
		n, err := t.resolve(l.digest, path)
		if err != nil {
			return link{}, err
		}
		return t.insert(inlineLink(n), path, key, value)

	case linkInline:
		switch n := l.node.(type) {
		case *leaf:
			return t.insertLeaf(n, path, key, value)
		case *extension:
			return t.insertExtension(n, path, key, value)
		case *branch:
			return t.insertBranch(n, path, key, value)
		default:
			panic("trie: invalid node type")
		}

	default:
		panic("trie: invalid link kind")
	}
}

func (t *Trie) insertLeaf(n *leaf, path, key, value []byte) (link, error) {
	if bytes.Equal(n.rest, key) {
		return inlineLink(&leaf{rest: key, value: value}), nil
	}

	shared, restOld, restNew := nibble.SharedPrefix(n.rest, key)
	b := newBranch()
	setBranchSlot(b, restOld, n.value)
	setBranchSlot(b, restNew, value)

	if len(shared) == 0 {
		return inlineLink(b), nil
	}
	return inlineLink(&extension{key: shared, child: inlineLink(b)}), nil
}

// setBranchSlot folds (rest, value) into a freshly built branch, applying
// the same rule insertBranch does for an empty/first-nibble key: both
// callers (insertLeaf, insertExtension) only ever apply this to brand-new,
// wholly in-memory branches, so there is no store round trip to make.
func setBranchSlot(b *branch, rest, value []byte) {
	if len(rest) == 0 {
		b.value = value
		return
	}
	b.children[rest[0]] = inlineLink(&leaf{rest: rest[1:], value: value})
}

func (t *Trie) insertExtension(n *extension, path, key, value []byte) (link, error) {
	shared, restKey, restNewKey := nibble.SharedPrefix(n.key, key)

	if len(restKey) == 0 {
		// The whole partial key matched; forward into the child.
		newChild, err := t.insert(n.child, append(path, n.key...), restNewKey, value)
		if err != nil {
			return link{}, err
		}
		return inlineLink(&extension{key: n.key, child: newChild}), nil
	}

	b := newBranch()
	if len(restKey) == 1 {
		b.children[restKey[0]] = n.child
	} else {
		b.children[restKey[0]] = inlineLink(&extension{key: restKey[1:], child: n.child})
	}
	setBranchSlot(b, restNewKey, value)

	if len(shared) == 0 {
		return inlineLink(b), nil
	}
	return inlineLink(&extension{key: shared, child: inlineLink(b)}), nil
}

func (t *Trie) insertBranch(n *branch, path, key, value []byte) (link, error) {
	cp := *n
	if len(key) == 0 {
		cp.value = value
		return inlineLink(&cp), nil
	}
	i := key[0]
	childPath := append(append([]byte{}, path...), i)
	newChild, err := t.insert(n.children[i], childPath, key[1:], value)
	if err != nil {
		return link{}, err
	}
	cp.children[i] = newChild
	return inlineLink(&cp), nil
}
