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
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// EmptyTreeTable is the per-level table of canonical empty subtree
// nodes for a tree of a given width: level 8N (the leaf level) holds
// the empty leaf, and level i<8N holds a branch of two copies of level
// i+1. Every tree sharing a (hashSize, hasher) pair shares the same
// table, since the result depends only on those two values.
type EmptyTreeTable struct {
	levels int
	nodes  []Node
}

// Levels returns 8*hashSize, the number of levels below the root.
func (t *EmptyTreeTable) Levels() int {
	return t.levels
}

// At returns the canonical empty node for the given level, where level
// 0 is the root and level Levels() is the leaf level.
func (t *EmptyTreeTable) At(level int) Node {
	return t.nodes[level]
}

func buildEmptyTreeTable(hashSize int, hasher HashFunc) *EmptyTreeTable {
	levels := hashSize * 8
	nodes := make([]Node, levels+1)
	nodes[levels] = newEmptyLeaf(hasher)
	for i := levels - 1; i >= 0; i-- {
		nodes[i] = NewBranchNode(hasher, nodes[i+1], nodes[i+1])
	}
	return &EmptyTreeTable{levels: levels, nodes: nodes}
}

var (
	emptyTreeGroup singleflight.Group
	emptyTreeMu    sync.Mutex
	emptyTreeCache = make(map[string]*EmptyTreeTable)
)

// EmptyTree returns the process-wide, lazily built empty-tree table for
// the given hash width and hasher, building it at most once even under
// concurrent first-touch: concurrent callers for the same key collapse
// onto a single singleflight call, and the result is memoized forever.
func EmptyTree(hashSize int, hasher HashFunc) *EmptyTreeTable {
	key := emptyTreeKey(hashSize, hasher)

	emptyTreeMu.Lock()
	if table, ok := emptyTreeCache[key]; ok {
		emptyTreeMu.Unlock()
		return table
	}
	emptyTreeMu.Unlock()

	v, _, _ := emptyTreeGroup.Do(key, func() (interface{}, error) {
		emptyTreeMu.Lock()
		if table, ok := emptyTreeCache[key]; ok {
			emptyTreeMu.Unlock()
			return table, nil
		}
		emptyTreeMu.Unlock()

		table := buildEmptyTreeTable(hashSize, hasher)

		emptyTreeMu.Lock()
		emptyTreeCache[key] = table
		emptyTreeMu.Unlock()
		return table, nil
	})
	return v.(*EmptyTreeTable)
}

// emptyTreeKey identifies a table by hash width and hasher identity.
// HashFunc values aren't comparable in Go, so the hasher is fingerprinted
// by hashing a fixed probe string once; two distinct hash algorithms
// collide here only if they agree on every input, which defeats the
// purpose of using both.
func emptyTreeKey(hashSize int, hasher HashFunc) string {
	probe := hasher([]byte("mssmt-empty-tree-table-probe"))
	return fmt.Sprintf("%d:%x", hashSize, probe)
}
