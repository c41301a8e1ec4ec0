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
	"encoding/hex"
	"fmt"
)

// Node is the closed set of node variants that make up a tree: every
// node a store can hand back is one of *LeafNode (the empty leaf is a
// *LeafNode with no value), *BranchNode, *CompactLeafNode or
// *ComputedNode.
type Node interface {
	// Hash returns the node's digest. It never performs a hash; the
	// digest is computed once at construction time.
	Hash() Hash

	// Sum returns the node's aggregated sum.
	Sum() Sum

	fmt.Stringer
}

// Branch is the subset of Node that has two children.
type Branch interface {
	Node

	Left() Node
	Right() Node
}

// LeafNode holds a value and its sum. It has no children and sits at
// the last level of the tree.
type LeafNode struct {
	value []byte
	sum   Sum
	hash  Hash
}

// NewLeafNode creates a leaf from a value and a sum, hashing it.
func NewLeafNode(hasher HashFunc, value []byte, sum Sum) *LeafNode {
	h := hasher(append(append([]byte{}, value...), sumBytes(sum)...))
	return &LeafNode{value: value, sum: sum, hash: h}
}

func (l *LeafNode) Hash() Hash { return l.hash }
func (l *LeafNode) Sum() Sum   { return l.sum }
func (l *LeafNode) Value() []byte {
	return l.value
}
func (l *LeafNode) String() string {
	return fmt.Sprintf("Leaf{sum: %d, hash: %s, value: %x}", l.sum, hex.EncodeToString(l.hash), l.value)
}

// Copy returns a value copy of the leaf, safe to mutate independently.
func (l *LeafNode) Copy() *LeafNode {
	value := append([]byte{}, l.value...)
	hash := append(Hash{}, l.hash...)
	return &LeafNode{value: value, sum: l.sum, hash: hash}
}

// newEmptyLeaf returns the canonical empty leaf for a tree: it has no
// value, a sum of zero, and a hash of eight zero bytes run through the
// tree's hasher. It is shared across every tree built with the same
// hasher via the empty-tree table.
func newEmptyLeaf(hasher HashFunc) *LeafNode {
	return NewLeafNode(hasher, nil, 0)
}

// BranchNode has two children and carries the sum of their sums.
type BranchNode struct {
	left, right Node
	sum         Sum
	hash        Hash
}

// NewBranchNode creates a branch from two children, hashing it.
func NewBranchNode(hasher HashFunc, left, right Node) *BranchNode {
	sum := left.Sum() + right.Sum()
	data := make([]byte, 0, len(left.Hash())+len(right.Hash())+8)
	data = append(data, left.Hash()...)
	data = append(data, right.Hash()...)
	data = append(data, sumBytes(sum)...)
	return &BranchNode{
		left:  left,
		right: right,
		sum:   sum,
		hash:  hasher(data),
	}
}

func (b *BranchNode) Hash() Hash    { return b.hash }
func (b *BranchNode) Sum() Sum      { return b.sum }
func (b *BranchNode) Left() Node    { return b.left }
func (b *BranchNode) Right() Node   { return b.right }
func (b *BranchNode) String() string {
	return fmt.Sprintf("Branch{sum: %d, hash: %s}", b.sum, hex.EncodeToString(b.hash))
}

// CompactLeafNode stores a leaf whose entire path down to it is a
// dangling chain of single-child branches (everything else along that
// path is the empty subtree). Rather than materialize that chain, the
// hash it would have produced is stored directly, alongside the leaf's
// key and value, so the chain can be reconstructed on demand.
type CompactLeafNode struct {
	hash Hash
	key  Hash
	leaf *LeafNode
}

// NewCompactLeafNode builds the compact leaf that would sit at `height`
// on `key`'s path carrying `leaf`. It walks the dangling chain from the
// leaf level up to height, padding with the per-level empty node on the
// side the key's bit doesn't select, and keeps only the final hash.
func NewCompactLeafNode(hasher HashFunc, table *EmptyTreeTable, height int, key Hash, leaf *LeafNode) *CompactLeafNode {
	var current Node = leaf
	levels := table.Levels()
	for i := levels - 1; i >= height; i-- {
		if bitIndex(i, key) == 0 {
			current = NewBranchNode(hasher, current, table.At(i+1))
		} else {
			current = NewBranchNode(hasher, table.At(i+1), current)
		}
	}
	return &CompactLeafNode{hash: current.Hash(), key: key, leaf: leaf}
}

func (c *CompactLeafNode) Hash() Hash     { return c.hash }
func (c *CompactLeafNode) Sum() Sum       { return c.leaf.Sum() }
func (c *CompactLeafNode) Key() Hash      { return c.key }
func (c *CompactLeafNode) Leaf() *LeafNode { return c.leaf }
func (c *CompactLeafNode) String() string {
	return fmt.Sprintf("Compact{hash: %s, leaf: %s}", hex.EncodeToString(c.hash), c.leaf)
}

// Extract reconstructs the dangling branch chain the compact leaf
// elides, from one level below `height` down to the leaf, returning the
// node that would sit at height+1. Used by the compact engine's
// walk-down once it needs to keep descending past a compact leaf.
func (c *CompactLeafNode) Extract(hasher HashFunc, table *EmptyTreeTable, height int) Node {
	var current Node = c.leaf
	levels := table.Levels()
	for j := levels; j > height+1; j-- {
		if bitIndex(j-1, c.key) == 0 {
			current = NewBranchNode(hasher, current, table.At(j))
		} else {
			current = NewBranchNode(hasher, table.At(j), current)
		}
	}
	return current
}

// ComputedNode is a placeholder for a node whose hash and sum are known
// (e.g. from a proof) without holding the subtree that produced them.
type ComputedNode struct {
	hash Hash
	sum  Sum
}

// NewComputedNode wraps a known hash/sum pair as a Node.
func NewComputedNode(hash Hash, sum Sum) *ComputedNode {
	return &ComputedNode{hash: hash, sum: sum}
}

func (c *ComputedNode) Hash() Hash { return c.hash }
func (c *ComputedNode) Sum() Sum   { return c.sum }
func (c *ComputedNode) String() string {
	return fmt.Sprintf("Computed{sum: %d, hash: %s}", c.sum, hex.EncodeToString(c.hash))
}
