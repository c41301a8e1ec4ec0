// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package mssmt

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func newTestCompactTree(t *testing.T, hashSize int) (*CompactTree, HashFunc) {
	t.Helper()
	hasher := sha256Trunc(hashSize)
	store := NewFullMemStore(hashSize, hasher)
	tree, err := NewCompactTree(hashSize, hasher, store)
	if err != nil {
		t.Fatalf("NewCompactTree: %v", err)
	}
	return tree, hasher
}

func TestCompactTreeMatchesRegularTreeRoot(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(4)
	regularStore := NewFullMemStore(4, hasher)
	regular, err := New(4, hasher, regularStore)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	compactStore := NewFullMemStore(4, hasher)
	compact, err := NewCompactTree(4, hasher, compactStore)
	if err != nil {
		t.Fatalf("NewCompactTree: %v", err)
	}

	keys := make([]Hash, 0, 12)
	for i := 0; i < 12; i++ {
		key := randomKey(t, 4)
		leaf := NewLeafNode(hasher, []byte{byte(i)}, Sum(i+1))
		if err := regular.Insert(key, leaf); err != nil {
			t.Fatalf("regular Insert: %v", err)
		}
		if err := compact.Insert(key, leaf); err != nil {
			t.Fatalf("compact Insert: %v", err)
		}
		keys = append(keys, key)
	}

	regularRoot, err := regular.Root()
	if err != nil {
		t.Fatalf("regular Root: %v", err)
	}
	compactRoot, err := compact.Root()
	if err != nil {
		t.Fatalf("compact Root: %v", err)
	}
	if !bytes.Equal(regularRoot.Hash(), compactRoot.Hash()) {
		t.Fatalf("root hash mismatch: regular %x compact %x", regularRoot.Hash(), compactRoot.Hash())
	}
	if regularRoot.Sum() != compactRoot.Sum() {
		t.Fatalf("root sum mismatch: regular %d compact %d", regularRoot.Sum(), compactRoot.Sum())
	}

	for _, key := range keys {
		regularProof, err := regular.MerkleProof(key)
		if err != nil {
			t.Fatalf("regular MerkleProof: %v", err)
		}
		compactProof, err := compact.MerkleProof(key)
		if err != nil {
			t.Fatalf("compact MerkleProof: %v", err)
		}
		if len(regularProof.Nodes()) != len(compactProof.Nodes()) {
			t.Fatalf("proof length mismatch for key %x", key)
		}
		for i := range regularProof.Nodes() {
			if !bytes.Equal(regularProof.Nodes()[i].Hash(), compactProof.Nodes()[i].Hash()) {
				t.Fatalf("proof node %d mismatch for key %x:\nregular=%s\ncompact=%s",
					i, key, spew.Sdump(regularProof.Nodes()[i]), spew.Sdump(compactProof.Nodes()[i]))
			}
		}
	}
}

func TestCompactTreeGetOnEmptyTree(t *testing.T) {
	t.Parallel()

	tree, _ := newTestCompactTree(t, 4)
	key := randomKey(t, 4)
	leaf, err := tree.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if leaf.Sum() != 0 || leaf.Value() != nil {
		t.Fatal("expected the empty leaf on an untouched compact tree")
	}
}

func TestCompactTreeMergeOnSecondInsert(t *testing.T) {
	t.Parallel()

	tree, hasher := newTestCompactTree(t, 4)
	key1 := randomKey(t, 4)
	key2 := randomKey(t, 4)
	leaf1 := NewLeafNode(hasher, []byte("one"), 1)
	leaf2 := NewLeafNode(hasher, []byte("two"), 2)

	if err := tree.Insert(key1, leaf1); err != nil {
		t.Fatalf("Insert key1: %v", err)
	}
	if err := tree.Insert(key2, leaf2); err != nil {
		t.Fatalf("Insert key2: %v", err)
	}

	got1, err := tree.Get(key1)
	if err != nil {
		t.Fatalf("Get key1: %v", err)
	}
	if !bytes.Equal(got1.Hash(), leaf1.Hash()) {
		t.Fatal("key1's leaf was lost across the merge triggered by key2's insert")
	}
	got2, err := tree.Get(key2)
	if err != nil {
		t.Fatalf("Get key2: %v", err)
	}
	if !bytes.Equal(got2.Hash(), leaf2.Hash()) {
		t.Fatal("key2's leaf not found after insert")
	}

	proof1, err := tree.MerkleProof(key1)
	if err != nil {
		t.Fatalf("MerkleProof key1: %v", err)
	}
	root, err := tree.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if err := proof1.Verify(hasher, key1, leaf1, root.Hash()); err != nil {
		t.Fatalf("key1 proof failed after merge: %v", err)
	}
}

func TestCompactTreeDeleteRestoresEmptyRoot(t *testing.T) {
	t.Parallel()

	tree, hasher := newTestCompactTree(t, 4)
	key := randomKey(t, 4)
	leaf := NewLeafNode(hasher, []byte("v"), 5)
	if err := tree.Insert(key, leaf); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	root, err := tree.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if !bytes.Equal(root.Hash(), tree.table.At(0).Hash()) {
		t.Fatal("deleting the only leaf should restore the canonical empty root")
	}
}

func TestCompactTreeInsertRejectsSumOverflow(t *testing.T) {
	t.Parallel()

	tree, hasher := newTestCompactTree(t, 4)
	key1 := randomKey(t, 4)
	key2 := randomKey(t, 4)
	big := NewLeafNode(hasher, []byte("big"), ^Sum(0))
	if err := tree.Insert(key1, big); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := tree.Insert(key2, NewLeafNode(hasher, []byte("more"), 1))
	if err == nil {
		t.Fatal("expected ErrSumOverflow")
	}
	if merr, ok := err.(*Error); !ok || merr.Kind != ErrSumOverflow {
		t.Fatalf("expected ErrSumOverflow, got %v", err)
	}
}
