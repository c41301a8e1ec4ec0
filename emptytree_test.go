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
	"sync"
	"testing"
)

func TestEmptyTreeLevelsAndLeafEntry(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(2)
	table := EmptyTree(2, hasher)
	if table.Levels() != 16 {
		t.Fatalf("levels mismatch: got %d want 16", table.Levels())
	}
	leaf := table.At(16)
	want := newEmptyLeaf(hasher).Hash()
	if !bytes.Equal(leaf.Hash(), want) {
		t.Fatalf("leaf-level entry mismatch: got %x want %x", leaf.Hash(), want)
	}
}

func TestEmptyTreeRootIsDoubledLevelOne(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(1)
	table := EmptyTree(1, hasher)
	root := table.At(0)
	level1 := table.At(1)
	want := NewBranchNode(hasher, level1, level1).Hash()
	if !bytes.Equal(root.Hash(), want) {
		t.Fatalf("root mismatch: got %x want %x", root.Hash(), want)
	}
}

func TestEmptyTreeIsMemoizedPerHashSize(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(4)
	a := EmptyTree(4, hasher)
	b := EmptyTree(4, hasher)
	if a != b {
		t.Fatal("EmptyTree should return the same table instance for the same hash width and hasher")
	}
}

func TestEmptyTreeConcurrentFirstTouch(t *testing.T) {
	t.Parallel()

	hasher := sha256Trunc(3)
	const n = 32
	tables := make([]*EmptyTreeTable, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tables[i] = EmptyTree(3, hasher)
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if tables[i] != tables[0] {
			t.Fatal("concurrent first-touch produced distinct table instances")
		}
	}
}
