package trie

import (
	"encoding/binary"
	"fmt"

	"github.com/jaiminpan/merkletrie/kvstore"
)

// Canonical node encoding, spec.md §4.3. This repo defines its own byte
// layout rather than reusing the teacher's RLP/hex-prefix codec: spec.md's
// Non-goals explicitly reject hex-prefix/compact-encoding compatibility
// with other MPT dialects, and RLP is exactly that dialect. The layout
// below is deterministic, self-describing, and fixed-field-ordered:
//
//   node    := tag byte, then tag-specific fields
//   tag     := 0 Extension | 1 Leaf | 2 Branch
//   nibbles := uint32LE length, then that many nibble bytes (0..15 each)
//   bytes   := uint32LE length, then that many raw bytes
//   link    := 0 Inline(node) | 1 Digest(32 raw bytes) | 2 Empty
//   option  := 0 absent | 1 present, bytes
const (
	tagExtension byte = 0
	tagLeaf      byte = 1
	tagBranch    byte = 2
)

const (
	linkTagInline byte = 0
	linkTagDigest byte = 1
	linkTagEmpty  byte = 2
)

// encode serializes n into its canonical byte-string. Every node has
// exactly one such representation, so exactly one digest (spec.md
// invariant 4).
func encode(n node) []byte {
	var buf []byte
	switch v := n.(type) {
	case *extension:
		buf = append(buf, tagExtension)
		buf = appendNibbles(buf, v.key)
		buf = appendLink(buf, v.child)
	case *leaf:
		buf = append(buf, tagLeaf)
		buf = appendNibbles(buf, v.rest)
		buf = appendBytes(buf, v.value)
	case *branch:
		buf = append(buf, tagBranch)
		for i := 0; i < 16; i++ {
			buf = appendLink(buf, v.children[i])
		}
		buf = appendOption(buf, v.value)
	default:
		panic(fmt.Sprintf("trie: unencodable node type %T", n))
	}
	return buf
}

func appendUint32(buf []byte, n int) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	return append(buf, tmp[:]...)
}

func appendBytes(buf, b []byte) []byte {
	buf = appendUint32(buf, len(b))
	return append(buf, b...)
}

func appendNibbles(buf, n []byte) []byte {
	return appendBytes(buf, n)
}

func appendOption(buf, v []byte) []byte {
	if v == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return appendBytes(buf, v)
}

func appendLink(buf []byte, l link) []byte {
	switch l.kind {
	case linkEmpty:
		return append(buf, linkTagEmpty)
	case linkDigest:
		buf = append(buf, linkTagDigest)
		return append(buf, l.digest[:]...)
	case linkInline:
		buf = append(buf, linkTagInline)
		return append(buf, encode(l.node)...)
	default:
		panic(fmt.Sprintf("trie: unencodable link kind %v", l.kind))
	}
}

// decoder reads the canonical encoding produced by encode. It never retains
// a reference into the caller's buffer past decode returning.
type decoder struct {
	buf []byte
	pos int
}

func decode(buf []byte) (node, error) {
	d := &decoder{buf: buf}
	n, err := d.readNode()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.buf) {
		return nil, &CodecError{Msg: "trailing bytes after node"}
	}
	return n, nil
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, &CodecError{Msg: "unexpected end of buffer"}
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readUint32() (int, error) {
	if d.pos+4 > len(d.buf) {
		return 0, &CodecError{Msg: "unexpected end of buffer reading length"}
	}
	n := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return int(n), nil
}

func (d *decoder) readBytes() ([]byte, error) {
	n, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if n < 0 || d.pos+n > len(d.buf) {
		return nil, &CodecError{Msg: "invalid length prefix"}
	}
	out := make([]byte, n)
	copy(out, d.buf[d.pos:d.pos+n])
	d.pos += n
	return out, nil
}

func (d *decoder) readOption() ([]byte, error) {
	disc, err := d.readByte()
	if err != nil {
		return nil, err
	}
	switch disc {
	case 0:
		return nil, nil
	case 1:
		return d.readBytes()
	default:
		return nil, &CodecError{Msg: fmt.Sprintf("invalid option discriminant %d", disc)}
	}
}

func (d *decoder) readLink() (link, error) {
	tag, err := d.readByte()
	if err != nil {
		return link{}, err
	}
	switch tag {
	case linkTagEmpty:
		return emptyLink, nil
	case linkTagDigest:
		if d.pos+kvstore.HashLen > len(d.buf) {
			return link{}, &CodecError{Msg: "truncated digest link"}
		}
		var h kvstore.Hash
		copy(h[:], d.buf[d.pos:d.pos+kvstore.HashLen])
		d.pos += kvstore.HashLen
		return digestLink(h), nil
	case linkTagInline:
		n, err := d.readNode()
		if err != nil {
			return link{}, err
		}
		return inlineLink(n), nil
	default:
		return link{}, &CodecError{Msg: fmt.Sprintf("invalid link tag %d", tag)}
	}
}

func (d *decoder) readNode() (node, error) {
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagExtension:
		key, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		if len(key) == 0 {
			return nil, &CodecError{Msg: "extension with empty partial key"}
		}
		child, err := d.readLink()
		if err != nil {
			return nil, err
		}
		return &extension{key: key, child: child}, nil
	case tagLeaf:
		rest, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		value, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return &leaf{rest: rest, value: value}, nil
	case tagBranch:
		b := newBranch()
		for i := 0; i < 16; i++ {
			l, err := d.readLink()
			if err != nil {
				return nil, err
			}
			b.children[i] = l
		}
		val, err := d.readOption()
		if err != nil {
			return nil, err
		}
		b.value = val
		return b, nil
	default:
		return nil, &CodecError{Msg: fmt.Sprintf("invalid node tag %d", tag)}
	}
}
