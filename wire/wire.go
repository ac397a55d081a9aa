// Package wire implements the optional external `get_proof` RPC adapter
// spec.md §6.2 describes: a length-delimited, field-tagged wire schema for
// ProofRequest/ProofResponse, sharing one deserializer between server and
// client as spec.md requires. It does not implement a server or client
// transport (spec.md §1 scopes example network harnesses out) — just the
// payload codec a thin adapter would frame over a socket.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jaiminpan/merkletrie/kvstore"
	"github.com/jaiminpan/merkletrie/kvstore/memorydb"
)

// Field tags, fixed for interoperability per spec.md §6.2.
const (
	tagRootHash byte = 1
	tagKey      byte = 2
	tagExists   byte = 1
	tagProofDB  byte = 2
)

// ProofRequest is the client->server request of the get_proof RPC.
type ProofRequest struct {
	RootHash kvstore.Hash
	Key      []byte
}

// ProofResponse is the server->client reply. ProofDB is a serialized
// kvstore proof store, as produced by EncodeProofStore.
type ProofResponse struct {
	Exists  bool
	ProofDB []byte
}

// EncodeProofRequest serializes r using the same field-tagged,
// length-prefixed primitives as the trie node codec.
func EncodeProofRequest(r ProofRequest) []byte {
	var buf []byte
	buf = append(buf, tagRootHash)
	buf = append(buf, r.RootHash[:]...)
	buf = append(buf, tagKey)
	buf = appendBytes(buf, r.Key)
	return buf
}

// DecodeProofRequest is the inverse of EncodeProofRequest.
func DecodeProofRequest(buf []byte) (ProofRequest, error) {
	d := &decoder{buf: buf}
	var r ProofRequest
	tag, err := d.readByte()
	if err != nil || tag != tagRootHash {
		return r, fmt.Errorf("wire: expected root_hash tag, got %d (err=%v)", tag, err)
	}
	if err := d.readFixed(r.RootHash[:]); err != nil {
		return r, err
	}
	tag, err = d.readByte()
	if err != nil || tag != tagKey {
		return r, fmt.Errorf("wire: expected key tag, got %d (err=%v)", tag, err)
	}
	key, err := d.readBytes()
	if err != nil {
		return r, err
	}
	r.Key = key
	if d.pos != len(d.buf) {
		return r, fmt.Errorf("wire: trailing bytes in ProofRequest")
	}
	return r, nil
}

// EncodeProofResponse serializes resp, including the proof store.
func EncodeProofResponse(resp ProofResponse) []byte {
	var buf []byte
	buf = append(buf, tagExists)
	if resp.Exists {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, tagProofDB)
	buf = appendBytes(buf, resp.ProofDB)
	return buf
}

// DecodeProofResponse is the inverse of EncodeProofResponse.
func DecodeProofResponse(buf []byte) (ProofResponse, error) {
	d := &decoder{buf: buf}
	var resp ProofResponse
	tag, err := d.readByte()
	if err != nil || tag != tagExists {
		return resp, fmt.Errorf("wire: expected exists tag, got %d (err=%v)", tag, err)
	}
	existsByte, err := d.readByte()
	if err != nil {
		return resp, err
	}
	resp.Exists = existsByte != 0

	tag, err = d.readByte()
	if err != nil || tag != tagProofDB {
		return resp, fmt.Errorf("wire: expected proof_db tag, got %d (err=%v)", tag, err)
	}
	proofDB, err := d.readBytes()
	if err != nil {
		return resp, err
	}
	resp.ProofDB = proofDB
	if d.pos != len(d.buf) {
		return resp, fmt.Errorf("wire: trailing bytes in ProofResponse")
	}
	return resp, nil
}

// EncodeProofStore serializes every (hash, value) pair in store as a
// sequence of length-prefixed entries, in no particular order. This is the
// codec ProofResponse.ProofDB round-trips through, per spec.md §6.2's
// requirement that client and server share one deserializer.
func EncodeProofStore(store *memorydb.Store) ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, store.Len())
	err := store.Each(func(h kvstore.Hash, v []byte) error {
		buf = append(buf, h[:]...)
		buf = appendBytes(buf, v)
		return nil
	})
	return buf, err
}

// DecodeProofStore is the inverse of EncodeProofStore.
func DecodeProofStore(buf []byte) (*memorydb.Store, error) {
	d := &decoder{buf: buf}
	n, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	store := memorydb.New()
	for i := 0; i < n; i++ {
		var h kvstore.Hash
		if err := d.readFixed(h[:]); err != nil {
			return nil, err
		}
		v, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		if err := store.Put(h, v); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// WriteFrame writes payload to w behind a 4-byte little-endian length
// prefix, the length-delimited framing spec.md §6.2 calls for.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-delimited frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
