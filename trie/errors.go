package trie

import (
	"fmt"

	"github.com/jaiminpan/merkletrie/kvstore"
)

// The error taxonomy of spec.md §7. Missing *keys* are a normal absent
// result (nil, false, nil), never one of these — only corruption, I/O
// failure, or caller misuse surface as errors.

// StoreError wraps a backing-store I/O failure, propagated unchanged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("trie: store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// CodecError reports malformed node bytes; fatal for the operation that
// triggered it, not for the trie as a whole.
type CodecError struct {
	Msg string
}

func (e *CodecError) Error() string { return "trie: codec: " + e.Msg }

// InvalidHashError reports a caller-supplied byte string that doesn't
// coerce to a 32-byte digest.
type InvalidHashError struct {
	Len int
}

func (e *InvalidHashError) Error() string {
	return fmt.Sprintf("trie: invalid hash: got %d bytes, want %d", e.Len, kvstore.HashLen)
}

// MissingNodeError reports a link resolving to a digest absent from the
// store — corruption, or a revert against an unknown root.
type MissingNodeError struct {
	Hash kvstore.Hash
	Path []byte
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("trie: missing node %x at path %x", e.Hash[:], e.Path)
}

// ToHash coerces b into a kvstore.Hash, or returns InvalidHashError.
func ToHash(b []byte) (kvstore.Hash, error) {
	var h kvstore.Hash
	if len(b) != kvstore.HashLen {
		return h, &InvalidHashError{Len: len(b)}
	}
	copy(h[:], b)
	return h, nil
}
