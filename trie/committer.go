package trie

import "github.com/jaiminpan/merkletrie/kvstore"

// committer walks a link bottom-up (spec.md §4.6), turning every Inline
// node into a persisted Digest node. It buffers writes in a kvstore.Batch
// when the store supports one, so a large COMMIT costs one round trip
// instead of one per node — grounded on the teacher's trie_committer.go,
// simplified since this repo's backing store has no reference-counted GC
// to maintain (spec.md's Non-goals exclude historical garbage collection).
type committer struct {
	store kvstore.Store
	batch kvstore.Batch
}

func newCommitter(store kvstore.Store) *committer {
	c := &committer{store: store}
	if b, ok := store.(kvstore.Batcher); ok {
		c.batch = b.NewBatch()
	}
	return c
}

// collapse recursively commits l, returning the Digest (or Empty) link that
// should replace it. Already-committed links (Digest, Empty) pass through
// unchanged — collapse is idempotent (spec.md §4.6, testable property 5).
func (c *committer) collapse(l link) (link, error) {
	if l.kind != linkInline {
		return l, nil
	}
	var encoded []byte
	switch n := l.node.(type) {
	case *leaf:
		encoded = encode(n)
	case *extension:
		childLink, err := c.collapse(n.child)
		if err != nil {
			return link{}, err
		}
		encoded = encode(&extension{key: n.key, child: childLink})
	case *branch:
		cp := *n
		for i := 0; i < 16; i++ {
			childLink, err := c.collapse(n.children[i])
			if err != nil {
				return link{}, err
			}
			cp.children[i] = childLink
		}
		encoded = encode(&cp)
	default:
		panic("trie: invalid node type")
	}

	h := hash(encoded)
	if c.batch != nil {
		if err := c.batch.Put(h, encoded); err != nil {
			return link{}, &StoreError{Op: "batch put", Err: err}
		}
	} else if err := c.store.Put(h, encoded); err != nil {
		return link{}, &StoreError{Op: "put", Err: err}
	}
	return digestLink(h), nil
}

func (c *committer) flush() error {
	if c.batch == nil {
		return nil
	}
	if c.batch.Len() == 0 {
		return nil
	}
	if err := c.batch.Write(); err != nil {
		return &StoreError{Op: "batch write", Err: err}
	}
	return nil
}
