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
	"crypto/sha256"
	"testing"
)

// sha256Trunc returns a HashFunc that runs sha256 and truncates the
// digest to n bytes, for building small test trees with few levels.
func sha256Trunc(n int) HashFunc {
	return func(data []byte) []byte {
		h := sha256.Sum256(data)
		return append([]byte{}, h[:n]...)
	}
}

func TestLeafNodeHash(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(32)
	leaf := NewLeafNode(hasher, []byte("value"), 7)
	want := hasher(append(append([]byte{}, "value"...), sumBytes(7)...))
	if !bytes.Equal(leaf.Hash(), want) {
		t.Fatalf("leaf hash mismatch: got %x want %x", leaf.Hash(), want)
	}
	if leaf.Sum() != 7 {
		t.Fatalf("leaf sum mismatch: got %d want 7", leaf.Sum())
	}
}

func TestEmptyLeafHashIsHashOfEightZeroBytes(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(32)
	empty := newEmptyLeaf(hasher)
	want := hasher(make([]byte, 8))
	if !bytes.Equal(empty.Hash(), want) {
		t.Fatalf("empty leaf hash mismatch: got %x want %x", empty.Hash(), want)
	}
	if empty.Sum() != 0 {
		t.Fatalf("empty leaf sum mismatch: got %d want 0", empty.Sum())
	}
}

func TestBranchNodeSumsChildren(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(32)
	left := NewLeafNode(hasher, []byte("a"), 3)
	right := NewLeafNode(hasher, []byte("b"), 4)
	branch := NewBranchNode(hasher, left, right)

	if branch.Sum() != 7 {
		t.Fatalf("branch sum mismatch: got %d want 7", branch.Sum())
	}
	data := append(append(append([]byte{}, left.Hash()...), right.Hash()...), sumBytes(7)...)
	want := hasher(data)
	if !bytes.Equal(branch.Hash(), want) {
		t.Fatalf("branch hash mismatch: got %x want %x", branch.Hash(), want)
	}
	if branch.Left() != left || branch.Right() != right {
		t.Fatal("branch did not retain its children")
	}
}

func TestCompactLeafNodeMatchesExpandedChain(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(1) // 8 levels, small enough to expand by hand
	table := EmptyTree(1, hasher)

	key := Hash{0x01}
	leaf := NewLeafNode(hasher, []byte("v"), 5)

	// Build the dangling chain by hand from the leaf level up to height 2.
	var expanded Node = leaf
	for i := 7; i >= 2; i-- {
		if bitIndex(i, key) == 0 {
			expanded = NewBranchNode(hasher, expanded, table.At(i+1))
		} else {
			expanded = NewBranchNode(hasher, table.At(i+1), expanded)
		}
	}

	compact := NewCompactLeafNode(hasher, table, 2, key, leaf)
	if !bytes.Equal(compact.Hash(), expanded.Hash()) {
		t.Fatalf("compact leaf hash mismatch: got %x want %x", compact.Hash(), expanded.Hash())
	}
	if compact.Sum() != leaf.Sum() {
		t.Fatalf("compact leaf sum mismatch: got %d want %d", compact.Sum(), leaf.Sum())
	}

	// Extract's height parameter is one level above the compact leaf's
	// own creation height: it returns the node that would sit at
	// height+1, which is the compact leaf's own level.
	extracted := compact.Extract(hasher, table, 1)
	if !bytes.Equal(extracted.Hash(), expanded.Hash()) {
		t.Fatalf("extracted chain hash mismatch: got %x want %x", extracted.Hash(), expanded.Hash())
	}
}

func TestComputedNodeCarriesHashAndSum(t *testing.T) {
	t.Parallel()

	h := Hash{0xde, 0xad, 0xbe, 0xef}
	node := NewComputedNode(h, 42)
	if !bytes.Equal(node.Hash(), h) {
		t.Fatal("computed node did not keep its hash")
	}
	if node.Sum() != 42 {
		t.Fatalf("computed node sum mismatch: got %d want 42", node.Sum())
	}
}
