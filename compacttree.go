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

import "bytes"

// CompactTree is the storage-optimized MS-SMT engine. Where Tree
// materializes a branch at every level of every inserted key's path,
// CompactTree elides the dangling chain of single-child branches that
// would otherwise lead to a lone leaf, replacing it with one
// CompactLeafNode that remembers only the hash the chain would have
// produced. The root hash it computes for a given key set is identical
// to Tree's.
type CompactTree struct {
	hashSize int
	hasher   HashFunc
	store    Store
	table    *EmptyTreeTable
}

// NewCompactTree creates a compact tree engine over store.
func NewCompactTree(hashSize int, hasher HashFunc, store Store) (*CompactTree, error) {
	if hashSize <= 0 {
		return nil, newErr(ErrExpectedBranch, "hashSize must be positive")
	}
	return &CompactTree{
		hashSize: hashSize,
		hasher:   hasher,
		store:    store,
		table:    EmptyTree(hashSize, hasher),
	}, nil
}

// MaxHeight is the number of levels below the root: 8 * hashSize.
func (t *CompactTree) MaxHeight() int {
	return t.table.Levels()
}

// Root returns the tree's current root branch.
func (t *CompactTree) Root() (*BranchNode, error) {
	root, err := t.store.RootNode()
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return root, nil
}

// walkDown descends from the root to the leaf at key. Whenever it steps
// onto a CompactLeafNode it expands that node's dangling chain in
// memory (without touching the store) so the traversal can keep
// invoking forEach at every level, exactly as Tree's walk-down would.
func (t *CompactTree) walkDown(key Hash, forEach func(level int, next, sibling, current Node)) (*LeafNode, error) {
	root, err := t.Root()
	if err != nil {
		return nil, err
	}
	var current Node = root
	for i := 0; i < t.MaxHeight(); i++ {
		left, right, err := t.store.Children(i, current.Hash())
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		next, sibling := t.stepOrder(i, key, left, right)

		if compact, ok := next.(*CompactLeafNode); ok {
			next = compact.Extract(t.hasher, t.table, i)
			if compSibling, ok := sibling.(*CompactLeafNode); ok {
				sibling = compSibling.Extract(t.hasher, t.table, i)
			}

			for j := i; j < t.MaxHeight(); j++ {
				forEach(j, next, sibling, current)
				current = next

				if j < t.MaxHeight()-1 {
					branch, ok := current.(*BranchNode)
					if !ok {
						return nil, newErr(ErrExpectedBranch, "expected branch while expanding compact leaf")
					}
					next, sibling = t.stepOrder(j+1, key, branch.Left(), branch.Right())
				}
			}
			leaf, ok := current.(*LeafNode)
			if !ok {
				return nil, newErr(ErrExpectedLeaf, "expected leaf at end of compact expansion")
			}
			return leaf, nil
		}

		forEach(i, next, sibling, current)
		current = next
	}
	leaf, ok := current.(*LeafNode)
	if !ok {
		return nil, newErr(ErrExpectedLeaf, "walk down did not terminate in a leaf")
	}
	return leaf, nil
}

func (t *CompactTree) stepOrder(level int, key Hash, left, right Node) (next, sibling Node) {
	if bitIndex(level, key) == 0 {
		return left, right
	}
	return right, left
}

// Get returns the leaf stored at key, or the canonical empty leaf if
// nothing has been inserted there.
func (t *CompactTree) Get(key Hash) (*LeafNode, error) {
	return t.walkDown(key, func(int, Node, Node, Node) {})
}

// merge builds the common subtree for two leaves that diverge somewhere
// below height, returning the branch that should replace the subtree
// rooted at height on key1/key2's shared prefix.
func (t *CompactTree) merge(height int, key1 Hash, leaf1 *LeafNode, key2 Hash, leaf2 *LeafNode) (*BranchNode, error) {
	commonPrefixLen := 0
	for i := 0; i < t.MaxHeight(); i++ {
		if bitIndex(i, key1) == bitIndex(i, key2) {
			commonPrefixLen++
		} else {
			break
		}
	}

	node1 := NewCompactLeafNode(t.hasher, t.table, commonPrefixLen+1, key1, leaf1)
	node2 := NewCompactLeafNode(t.hasher, t.table, commonPrefixLen+1, key2, leaf2)
	if err := t.store.InsertCompactLeaf(node1); err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := t.store.InsertCompactLeaf(node2); err != nil {
		return nil, wrapStoreErr(err)
	}

	left, right := t.stepOrder(commonPrefixLen, key1, node1, node2)
	parent := NewBranchNode(t.hasher, left, right)
	if err := t.store.InsertBranch(parent); err != nil {
		return nil, wrapStoreErr(err)
	}

	for i := commonPrefixLen - 1; i >= height; i-- {
		left, right := t.stepOrder(i, key1, parent, t.table.At(i+1))
		parent = NewBranchNode(t.hasher, left, right)
		if err := t.store.InsertBranch(parent); err != nil {
			return nil, wrapStoreErr(err)
		}
	}

	return parent, nil
}

// insertLeaf inserts leaf at key below the branch at (height, root),
// returning the new branch that should replace root.
func (t *CompactTree) insertLeaf(key Hash, height int, root *BranchNode, leaf *LeafNode) (*BranchNode, error) {
	left, right, err := t.store.Children(height, root.Hash())
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	next, sibling := t.stepOrder(height, key, left, right)
	nextHeight := height + 1

	var newNode Node
	switch node := next.(type) {
	case *BranchNode:
		if bytes.Equal(node.Hash(), t.table.At(nextHeight).Hash()) {
			newLeaf := NewCompactLeafNode(t.hasher, t.table, nextHeight, key, leaf)
			if err := t.store.InsertCompactLeaf(newLeaf); err != nil {
				return nil, wrapStoreErr(err)
			}
			newNode = newLeaf
		} else {
			branch, err := t.insertLeaf(key, nextHeight, node, leaf)
			if err != nil {
				return nil, err
			}
			newNode = branch
		}
	case *CompactLeafNode:
		if err := t.store.DeleteCompactLeaf(node.Hash()); err != nil {
			return nil, wrapStoreErr(err)
		}
		if bytes.Equal(key, node.Key()) {
			newLeaf := NewCompactLeafNode(t.hasher, t.table, nextHeight, key, leaf)
			if err := t.store.InsertCompactLeaf(newLeaf); err != nil {
				return nil, wrapStoreErr(err)
			}
			newNode = newLeaf
		} else {
			branch, err := t.merge(nextHeight, key, leaf, node.Key(), node.Leaf())
			if err != nil {
				return nil, err
			}
			newNode = branch
		}
	default:
		return nil, newErr(ErrExpectedBranch, "unexpected node type during compact insert")
	}

	if !bytes.Equal(root.Hash(), t.table.At(height).Hash()) {
		if err := t.store.DeleteBranch(root.Hash()); err != nil {
			return nil, wrapStoreErr(err)
		}
	}

	left, right = t.stepOrder(height, key, newNode, sibling)
	branch := NewBranchNode(t.hasher, left, right)
	if !bytes.Equal(branch.Hash(), t.table.At(height).Hash()) {
		if err := t.store.InsertBranch(branch); err != nil {
			return nil, wrapStoreErr(err)
		}
	}
	return branch, nil
}

// Insert writes leaf at key. It fails with ErrSumOverflow, leaving the
// tree untouched, if the current root sum plus leaf's sum would overflow
// a uint64; the sum of a leaf being replaced at key is still counted in
// the current root sum for this check.
func (t *CompactTree) Insert(key Hash, leaf *LeafNode) error {
	root, err := t.Root()
	if err != nil {
		return err
	}
	if root.Sum() > 0 && leaf.Sum() > ^Sum(0)-root.Sum() {
		return newErr(ErrSumOverflow, "insert would overflow root sum")
	}

	newRoot, err := t.insertLeaf(key, 0, root, leaf)
	if err != nil {
		return err
	}
	return wrapStoreErrIfAny(t.store.UpdateRoot(newRoot))
}

// Delete removes the leaf at key by inserting the canonical empty leaf
// in its place.
func (t *CompactTree) Delete(key Hash) error {
	empty, ok := t.table.At(t.MaxHeight()).(*LeafNode)
	if !ok {
		return newErr(ErrExpectedEmptyLeaf, "empty leaf table entry is not a leaf")
	}
	return t.Insert(key, empty)
}

// MerkleProof returns the ordered list of siblings along key's path,
// from the leaf's sibling up to the sibling of the root's child. It matches Tree's
// MerkleProof node-for-node.
func (t *CompactTree) MerkleProof(key Hash) (*Proof, error) {
	nodes := make([]Node, 0, t.MaxHeight())
	if _, err := t.walkDown(key, func(level int, next, sibling, current Node) {
		nodes = append(nodes, sibling)
	}); err != nil {
		return nil, err
	}
	reverseNodes(nodes)
	return NewProof(nodes), nil
}

func wrapStoreErrIfAny(err error) error {
	if err == nil {
		return nil
	}
	return wrapStoreErr(err)
}
