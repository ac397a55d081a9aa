package trie

import "github.com/jaiminpan/merkletrie/kvstore"

// node is the closed, three-variant tagged union spec.md §3 defines: Leaf,
// Extension, Branch. It is intentionally a small closed interface — adding
// a fourth kind would change the on-disk encoding and therefore every
// digest, so this is not meant to be extended via open polymorphism.
type node interface {
	fstring(indent string) string
}

// leaf terminates a key path. rest is the suffix of the nibble path still
// to be matched from the point this leaf is attached to its parent; it may
// be empty. value is opaque.
type leaf struct {
	rest  []byte
	value []byte
}

// extension is a compression edge carrying a shared nibble prefix
// (len(key) >= 1, enforced at construction) down to exactly one child,
// which must logically be a branch.
type extension struct {
	key   []byte
	child link
}

// branch fans out on one of 16 nibble values, plus an optional value for
// the path that terminates exactly at this branch.
type branch struct {
	children [16]link
	value    []byte // nil means "no value terminates here"
}

func newBranch() *branch {
	b := &branch{}
	for i := range b.children {
		b.children[i] = emptyLink
	}
	return b
}

// link is a node reference: an owned in-memory node, a persisted digest, or
// nothing. See spec.md §3.
type link struct {
	kind  linkKind
	node  node        // valid iff kind == linkInline
	digest kvstore.Hash // valid iff kind == linkDigest
}

type linkKind uint8

const (
	linkEmpty linkKind = iota
	linkInline
	linkDigest
)

var emptyLink = link{kind: linkEmpty}

func inlineLink(n node) link { return link{kind: linkInline, node: n} }

func digestLink(h kvstore.Hash) link { return link{kind: linkDigest, digest: h} }

func (l link) isEmpty() bool { return l.kind == linkEmpty }
