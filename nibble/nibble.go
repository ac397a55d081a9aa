// Package nibble implements byte/nibble conversion and shared-prefix
// extraction over hexary key paths, as described in spec.md §4.1.
package nibble

// FromBytes expands a byte slice into a nibble sequence, high nibble first.
// The result always has length 2*len(b).
func FromBytes(b []byte) []byte {
	out := make([]byte, 2*len(b))
	for i, x := range b {
		out[2*i] = x >> 4
		out[2*i+1] = x & 0x0f
	}
	return out
}

// SharedPrefix returns the longest common prefix of a and b, plus the
// remainder of each following that prefix. All three slices are views into
// a and b; the caller must not assume they're independently owned.
func SharedPrefix(a, b []byte) (shared, restA, restB []byte) {
	min := len(a)
	if len(b) < min {
		min = len(b)
	}
	i := 0
	for i < min && a[i] == b[i] {
		i++
	}
	return a[:i], a[i:], b[i:]
}
