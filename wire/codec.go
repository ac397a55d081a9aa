package wire

import (
	"encoding/binary"
	"fmt"
)

// appendUint32 and appendBytes mirror trie.codec's primitives: a 4-byte
// little-endian length prefix ahead of raw bytes. Declared independently
// here (rather than exported from trie) since wire's payloads are a
// separate schema from the node codec — they only share the same style of
// length-prefixed primitive, not a single deserializer.
func appendUint32(buf []byte, n int) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	return append(buf, tmp[:]...)
}

func appendBytes(buf, b []byte) []byte {
	buf = appendUint32(buf, len(b))
	return append(buf, b...)
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("wire: unexpected end of buffer")
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readUint32() (int, error) {
	if d.pos+4 > len(d.buf) {
		return 0, fmt.Errorf("wire: unexpected end of buffer reading length")
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
		return nil, fmt.Errorf("wire: invalid length prefix")
	}
	out := make([]byte, n)
	copy(out, d.buf[d.pos:d.pos+n])
	d.pos += n
	return out, nil
}

func (d *decoder) readFixed(out []byte) error {
	if d.pos+len(out) > len(d.buf) {
		return fmt.Errorf("wire: unexpected end of buffer reading fixed field")
	}
	copy(out, d.buf[d.pos:d.pos+len(out)])
	d.pos += len(out)
	return nil
}
