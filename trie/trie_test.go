package trie

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jaiminpan/merkletrie/kvstore"
	"github.com/jaiminpan/merkletrie/kvstore/memorydb"
)

func nib(s string) []byte {
	b := make([]byte, len(s))
	for i, c := range s {
		switch {
		case c >= '0' && c <= '9':
			b[i] = byte(c - '0')
		case c >= 'a' && c <= 'f':
			b[i] = byte(c-'a') + 10
		default:
			panic("bad nibble string")
		}
	}
	return b
}

// keyFromNibbleString builds an Insert/Get key from a literal nibble
// string like "0000" or "00001111", matching spec.md §8's scenario
// notation directly (the trie's own Insert/Get expand byte keys into
// nibbles internally, so these tests bypass that and drive the node
// algebra on raw nibble keys via the unexported insert/get entrypoints).
func keyFromNibbleString(s string) []byte { return nib(s) }

// byteKeyFromNibbleString packs an even-length nibble string into the byte
// key whose nibble expansion is that string ("00001111" -> {0x00, 0x00,
// 0x11, 0x11}). GetProof and VerifyProof expand byte keys into nibbles
// themselves, so the scenarios pass them this form to reach the same path
// the unexported insert/get calls use.
func byteKeyFromNibbleString(s string) []byte {
	n := nib(s)
	out := make([]byte, len(n)/2)
	for i := range out {
		out[i] = n[2*i]<<4 | n[2*i+1]
	}
	return out
}

func newEmpty() (*Trie, *memorydb.Store) {
	store := memorydb.New()
	return New(store), store
}

func mustInsert(t *testing.T, tr *Trie, key []byte, value []byte) {
	t.Helper()
	newRoot, err := tr.insert(tr.root, nil, key, value)
	if err != nil {
		t.Fatalf("insert(%x): %v", key, err)
	}
	tr.root = newRoot
	tr.dirty = true
}

func mustGet(t *testing.T, tr *Trie, key []byte) ([]byte, bool) {
	t.Helper()
	v, ok, err := tr.get(tr.root, nil, key)
	if err != nil {
		t.Fatalf("get(%x): %v", key, err)
	}
	return v, ok
}

func TestEmptyTrieCommitHasNoRoot(t *testing.T) {
	tr, _ := newEmpty()
	_, ok, err := tr.Commit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("commit of an empty trie should report ok=false, not a root")
	}
}

// TestScenarios walks spec.md §8's literal S1-S5 end-to-end scenarios.
func TestScenarios(t *testing.T) {
	tr, _ := newEmpty()

	// S1
	mustInsert(t, tr, keyFromNibbleString("0000"), []byte("value01"))
	root1, ok, err := tr.Commit()
	if err != nil || !ok {
		t.Fatalf("commit after S1: ok=%v err=%v", ok, err)
	}
	if v, ok := mustGet(t, tr, keyFromNibbleString("0000")); !ok || !bytes.Equal(v, []byte("value01")) {
		t.Fatalf("S1 lookup 0000 = %q, %v", v, ok)
	}
	if _, ok := mustGet(t, tr, keyFromNibbleString("9999")); ok {
		t.Fatal("S1 lookup 9999 should be absent")
	}

	// S2
	mustInsert(t, tr, keyFromNibbleString("00001111"), []byte("value02"))
	root2, ok, err := tr.Commit()
	if err != nil || !ok {
		t.Fatalf("commit after S2: ok=%v err=%v", ok, err)
	}
	if root2 == root1 {
		t.Fatal("S2 root must differ from S1 root")
	}
	if v, ok := mustGet(t, tr, keyFromNibbleString("00001111")); !ok || !bytes.Equal(v, []byte("value02")) {
		t.Fatalf("S2 lookup 00001111 = %q, %v", v, ok)
	}
	if v, ok := mustGet(t, tr, keyFromNibbleString("0000")); !ok || !bytes.Equal(v, []byte("value01")) {
		t.Fatalf("S2 lookup 0000 = %q, %v", v, ok)
	}

	// S3
	tr.Revert(root1)
	if _, ok := mustGet(t, tr, keyFromNibbleString("00001111")); ok {
		t.Fatal("S3 lookup 00001111 should be absent after revert to root1")
	}
	if v, ok := mustGet(t, tr, keyFromNibbleString("0000")); !ok || !bytes.Equal(v, []byte("value01")) {
		t.Fatalf("S3 lookup 0000 = %q, %v", v, ok)
	}

	// S4: prove against root2, not the trie's current (reverted) root.
	tr.Revert(root2)
	exists, proof, err := tr.GetProof(root2, byteKeyFromNibbleString("0000"))
	if err != nil {
		t.Fatalf("GetProof: %v", err)
	}
	if !exists {
		t.Fatal("S4: key 0000 should exist under root2")
	}
	v, ok, err := VerifyProof(root2, proof, byteKeyFromNibbleString("0000"))
	if err != nil || !ok || !bytes.Equal(v, []byte("value01")) {
		t.Fatalf("S4 verify: v=%q ok=%v err=%v", v, ok, err)
	}
	if exists2, _, err := tr.GetProof(root2, byteKeyFromNibbleString("00001111")); err != nil || !exists2 {
		t.Fatalf("S4: get_proof(root2, 00001111) must succeed: exists=%v err=%v", exists2, err)
	}

	// S5
	exists, proof, err = tr.GetProof(root1, byteKeyFromNibbleString("00001111"))
	if err != nil {
		t.Fatalf("GetProof root1: %v", err)
	}
	if exists {
		t.Fatal("S5: 00001111 should not exist under root1")
	}
	_, ok, err = VerifyProof(root1, proof, byteKeyFromNibbleString("00001111"))
	if err != nil {
		t.Fatalf("VerifyProof root1: %v", err)
	}
	if ok {
		t.Fatal("S5: verify_proof should report absent")
	}
}

// TestHashStability implements spec.md §8 property 7 and scenario S6: two
// independent builds of the same sorted key set yield byte-identical
// roots. The fixture keys are the literal pelletNN_stateNN_keyZ values
// supplied by the original tinympt example data this spec was distilled
// from (see SPEC_FULL.md §5).
func TestHashStability(t *testing.T) {
	type kv struct{ key, value string }
	fixture := []kv{
		{"pellet01_state01_key1", "v1"},
		{"pellet01_state02_key2", "v2"},
		{"pellet02_state01_key3", "v3"},
		{"pellet02_state02_key4", "v4"},
		{"pellet03_state01_key5", "v5"},
		{"pellet03_state02_key6", "v6"},
	}

	build := func() kvstore.Hash {
		store := memorydb.New()
		tr := New(store)
		for _, e := range fixture {
			if err := tr.Insert([]byte(e.key), []byte(e.value)); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		root, ok, err := tr.Commit()
		if err != nil || !ok {
			t.Fatalf("commit: ok=%v err=%v", ok, err)
		}
		return root
	}

	r1 := build()
	r2 := build()
	if r1 != r2 {
		t.Fatalf("roots diverged across independent builds: %x != %x", r1, r2)
	}
}

// TestRoundTrip covers spec.md §8 property 1 over byte keys via the public
// Insert/Get/Commit API.
func TestRoundTrip(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	data := map[string]string{
		"alpha":   "v-alpha",
		"alphabet": "v-alphabet",
		"beta":    "v-beta",
		"":        "v-empty-key",
	}
	for k, v := range data {
		if err := tr.Insert([]byte(k), []byte(v)); err != nil {
			t.Fatalf("insert %q: %v", k, err)
		}
	}
	if _, _, err := tr.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	for k, want := range data {
		got, ok, err := tr.Get([]byte(k))
		if err != nil || !ok || !bytes.Equal(got, []byte(want)) {
			t.Fatalf("get %q = %q, %v, %v; want %q", k, got, ok, err, want)
		}
	}
	if _, ok, err := tr.Get([]byte("not-present")); err != nil || ok {
		t.Fatalf("absent key should be ok=false, got ok=%v err=%v", ok, err)
	}
}

// TestOverwriteExistingKey covers the boundary case from spec.md §8.
func TestOverwriteExistingKey(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	if err := tr.Insert([]byte("k"), []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert([]byte("k"), []byte("v2")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := tr.Get([]byte("k"))
	if err != nil || !ok || !bytes.Equal(v, []byte("v2")) {
		t.Fatalf("got %q, %v, %v; want v2", v, ok, err)
	}
}

// TestKeyDifferingInLastNibble covers the boundary case from spec.md §8.
func TestKeyDifferingInLastNibble(t *testing.T) {
	tr, _ := newEmpty()
	mustInsert(t, tr, keyFromNibbleString("1234"), []byte("a"))
	mustInsert(t, tr, keyFromNibbleString("1235"), []byte("b"))
	if v, ok := mustGet(t, tr, keyFromNibbleString("1234")); !ok || !bytes.Equal(v, []byte("a")) {
		t.Fatalf("1234 = %q, %v", v, ok)
	}
	if v, ok := mustGet(t, tr, keyFromNibbleString("1235")); !ok || !bytes.Equal(v, []byte("b")) {
		t.Fatalf("1235 = %q, %v", v, ok)
	}
}

// TestProperPrefixKey covers the boundary case where one key is a strict
// prefix of another.
func TestProperPrefixKey(t *testing.T) {
	tr, _ := newEmpty()
	mustInsert(t, tr, keyFromNibbleString("12"), []byte("short"))
	mustInsert(t, tr, keyFromNibbleString("1234"), []byte("long"))
	if v, ok := mustGet(t, tr, keyFromNibbleString("12")); !ok || !bytes.Equal(v, []byte("short")) {
		t.Fatalf("12 = %q, %v", v, ok)
	}
	if v, ok := mustGet(t, tr, keyFromNibbleString("1234")); !ok || !bytes.Equal(v, []byte("long")) {
		t.Fatalf("1234 = %q, %v", v, ok)
	}
}

// TestCommitIdempotence covers spec.md §8 property 5.
func TestCommitIdempotence(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	if err := tr.Insert([]byte("x"), []byte("y")); err != nil {
		t.Fatal(err)
	}
	root1, ok, err := tr.Commit()
	if err != nil || !ok {
		t.Fatalf("first commit: ok=%v err=%v", ok, err)
	}
	sizeAfterFirst := store.Len()
	root2, ok, err := tr.Commit()
	if err != nil || !ok {
		t.Fatalf("second commit: ok=%v err=%v", ok, err)
	}
	if root1 != root2 {
		t.Fatalf("commit is not idempotent: %x != %x", root1, root2)
	}
	if store.Len() != sizeAfterFirst {
		t.Fatalf("second commit wrote new nodes: store grew from %d to %d", sizeAfterFirst, store.Len())
	}
}

// TestRevertRoundTrip covers spec.md §8 property 6.
func TestRevertRoundTrip(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	if err := tr.Insert([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	root1, _, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert([]byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := tr.Commit(); err != nil {
		t.Fatal(err)
	}
	tr.Revert(root1)
	if _, ok, err := tr.Get([]byte("b")); err != nil || ok {
		t.Fatalf("b should be absent after revert, got ok=%v err=%v", ok, err)
	}
	if v, ok, err := tr.Get([]byte("a")); err != nil || !ok || !bytes.Equal(v, []byte("1")) {
		t.Fatalf("a = %q, %v, %v", v, ok, err)
	}
}

// TestProofSoundnessAndMinimality covers spec.md §8 properties 3 and 4.
func TestProofSoundnessAndMinimality(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	keys := []string{"cat", "car", "card", "dog", "do"}
	for i, k := range keys {
		if err := tr.Insert([]byte(k), []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	root, _, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}

	for i, k := range keys {
		exists, proof, err := tr.GetProof(root, []byte(k))
		if err != nil {
			t.Fatalf("GetProof(%q): %v", k, err)
		}
		if !exists {
			t.Fatalf("GetProof(%q) should report existence", k)
		}
		lookupVal, lookupOk, err := tr.Get([]byte(k))
		if err != nil {
			t.Fatal(err)
		}
		verifyVal, verifyOk, err := VerifyProof(root, proof, []byte(k))
		if err != nil {
			t.Fatalf("VerifyProof(%q): %v", k, err)
		}
		if verifyOk != lookupOk || !bytes.Equal(verifyVal, lookupVal) {
			t.Fatalf("proof/lookup disagree for %q: proof=(%q,%v) lookup=(%q,%v)",
				k, verifyVal, verifyOk, lookupVal, lookupOk)
		}
		if verifyVal == nil || verifyVal[0] != byte(i) {
			t.Fatalf("wrong value for %q: %v", k, verifyVal)
		}
		// Minimality: every digest in the proof store must be reachable
		// from root (i.e. every entry decodes, and no node is orphaned
		// garbage copied in error). We can't directly assert "exactly the
		// spine" without re-deriving it, but we can assert the proof
		// store is materially smaller than the full store for a trie with
		// several siblings.
		if proof.Len() >= store.Len() {
			t.Fatalf("proof store for %q is not smaller than the full store: %d >= %d entries", k, proof.Len(), store.Len())
		}
	}

	exists, proof, err := tr.GetProof(root, []byte("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("nope should not exist")
	}
	_, ok, err := VerifyProof(root, proof, []byte("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("verify_proof should report absent for a missing key")
	}
}

func TestVerifyProofHardenedRejectsTamperedBytes(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	if err := tr.Insert([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	root, _, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}
	_, proof, err := tr.GetProof(root, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	raw, ok, err := proof.Get(root)
	if err != nil || !ok {
		t.Fatalf("expected proof to contain root: ok=%v err=%v", ok, err)
	}
	tampered := append([]byte{}, raw...)
	tampered[len(tampered)-1] ^= 0xFF
	if err := proof.Put(root, tampered); err != nil {
		t.Fatal(err)
	}
	if _, _, err := VerifyProofHardened(root, proof, []byte("k")); err == nil {
		t.Fatal("VerifyProofHardened should reject tampered proof bytes")
	}
}

func TestGetProofOnUnknownRootReturnsFalseNotError(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	var unknown kvstore.Hash
	unknown[0] = 0xAB
	exists, proof, err := tr.GetProof(unknown, []byte("k"))
	if err != nil {
		t.Fatalf("unexpected error for unknown root: %v", err)
	}
	if exists {
		t.Fatal("unknown root should report exists=false")
	}
	if proof.Len() != 0 {
		t.Fatalf("proof store for unknown root should be empty, got %d entries", proof.Len())
	}
}

func TestEmptyKey(t *testing.T) {
	store := memorydb.New()
	tr := New(store)
	if err := tr.Insert(nil, []byte("root-value")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := tr.Get(nil)
	if err != nil || !ok || !bytes.Equal(v, []byte("root-value")) {
		t.Fatalf("got %q, %v, %v", v, ok, err)
	}
}

// TestNodeStringIsHumanReadable exercises the fstring-backed String()
// methods used for debugging (mirroring the teacher's fullNode/shortNode
// String() wrappers): an in-memory root should print its branch/extension/
// leaf shape rather than a Go %+v dump.
func TestNodeStringIsHumanReadable(t *testing.T) {
	tr, _ := newEmpty()
	mustInsert(t, tr, keyFromNibbleString("12"), []byte("short"))
	mustInsert(t, tr, keyFromNibbleString("1234"), []byte("long"))

	s := fmt.Sprintf("%v", tr.root)
	if s == "" {
		t.Fatal("root.String() returned empty output")
	}
	if !strings.Contains(s, "short") && !strings.Contains(s, fmt.Sprintf("%x", []byte("short"))) {
		t.Fatalf("expected leaf value to appear in node string, got %q", s)
	}
}
