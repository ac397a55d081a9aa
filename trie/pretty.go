package trie

import "fmt"

// fstring implementations mirror the teacher's indentation-based pretty
// printer (trie_node.go), generalized over this package's Leaf/Extension/
// Branch variants instead of shortNode/fullNode. As in the teacher, each
// variant's String() just calls fstring("") so %v/%s and debuggers reach
// it via fmt.Stringer.

func (n *leaf) String() string      { return n.fstring("") }
func (n *extension) String() string { return n.fstring("") }
func (n *branch) String() string    { return n.fstring("") }
func (l link) String() string       { return l.fstring("") }

func (n *leaf) fstring(ind string) string {
	return fmt.Sprintf("{%x: %x} ", n.rest, n.value)
}

func (n *extension) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v} ", n.key, n.child.fstring(ind+"  "))
}

func (n *branch) fstring(ind string) string {
	resp := fmt.Sprintf("[\n%s  ", ind)
	for i, c := range n.children {
		if c.isEmpty() {
			resp += fmt.Sprintf("%x: <nil> ", i)
		} else {
			resp += fmt.Sprintf("%x: %v", i, c.fstring(ind+"  "))
		}
	}
	if n.value != nil {
		resp += fmt.Sprintf("\n%s  value: %x", ind, n.value)
	}
	return resp + fmt.Sprintf("\n%s] ", ind)
}

func (l link) fstring(ind string) string {
	switch l.kind {
	case linkEmpty:
		return "<empty>"
	case linkDigest:
		return fmt.Sprintf("<%x>", l.digest[:])
	default:
		return l.node.fstring(ind)
	}
}
