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

// Tree is the regular (non-compacted) MS-SMT engine: every node on
// every inserted key's path is materialized in the store, including
// branches whose other child is an empty subtree.
type Tree struct {
	hashSize int
	hasher   HashFunc
	store    Store
	table    *EmptyTreeTable
}

// New creates a regular tree engine over store, which must have been
// constructed for a tree with the stated hash width and hasher.
func New(hashSize int, hasher HashFunc, store Store) (*Tree, error) {
	if hashSize <= 0 {
		return nil, newErr(ErrExpectedBranch, "hashSize must be positive")
	}
	table := EmptyTree(hashSize, hasher)
	root, err := store.RootNode()
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := store.UpdateRoot(root); err != nil {
		return nil, wrapStoreErr(err)
	}
	return &Tree{hashSize: hashSize, hasher: hasher, store: store, table: table}, nil
}

// MaxHeight is the number of levels below the root: 8 * hashSize.
func (t *Tree) MaxHeight() int {
	return t.table.Levels()
}

// Root returns the tree's current root branch.
func (t *Tree) Root() (*BranchNode, error) {
	root, err := t.store.RootNode()
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return root, nil
}

// walkDown descends from the root to the leaf at key, invoking forEach
// at every level with (level, next, sibling, parent) before continuing
// into next.
func (t *Tree) walkDown(key Hash, forEach func(level int, next, sibling, parent Node)) (Node, error) {
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
		var next, sibling Node
		if bitIndex(i, key) == 0 {
			next, sibling = left, right
		} else {
			next, sibling = right, left
		}
		forEach(i, next, sibling, current)
		current = next
	}
	return current, nil
}

// walkUp rebuilds the branch chain from a leaf up to the root given the
// ordered siblings along the path (index 0 is the sibling nearest the
// leaf), invoking forEach at every level with (level, current, sibling,
// parent) as it goes.
func (t *Tree) walkUp(key Hash, start Node, siblings []Node, forEach func(level int, current, sibling, parent Node)) (*BranchNode, error) {
	current := start
	maxHeight := t.MaxHeight()
	for i := maxHeight - 1; i >= 0; i-- {
		sibling := siblings[maxHeight-1-i]
		var parent *BranchNode
		if bitIndex(i, key) == 0 {
			parent = NewBranchNode(t.hasher, current, sibling)
		} else {
			parent = NewBranchNode(t.hasher, sibling, current)
		}
		forEach(i, current, sibling, parent)
		current = parent
	}
	branch, ok := current.(*BranchNode)
	if !ok {
		return nil, newErr(ErrExpectedBranch, "walk up did not terminate in a branch")
	}
	return branch, nil
}

// Get returns the leaf stored at key, or the canonical empty leaf if
// nothing has been inserted there.
func (t *Tree) Get(key Hash) (*LeafNode, error) {
	node, err := t.walkDown(key, func(int, Node, Node, Node) {})
	if err != nil {
		return nil, err
	}
	leaf, ok := node.(*LeafNode)
	if !ok {
		return nil, newErr(ErrExpectedLeaf, "walk down did not terminate in a leaf")
	}
	return leaf, nil
}

// Insert writes leaf at key, replacing whatever was there (including
// the empty leaf). It fails with ErrSumOverflow, leaving the tree
// untouched, if the current root sum plus leaf's sum would overflow a
// uint64; the sum of a leaf being replaced at key is still counted in
// the current root sum for this check.
func (t *Tree) Insert(key Hash, leaf *LeafNode) error {
	root, err := t.Root()
	if err != nil {
		return err
	}
	if root.Sum() > 0 && leaf.Sum() > ^Sum(0)-root.Sum() {
		return newErr(ErrSumOverflow, "insert would overflow root sum")
	}

	prevParents := make([]Hash, 0, t.MaxHeight())
	siblings := make([]Node, 0, t.MaxHeight())
	if _, err := t.walkDown(key, func(level int, next, sibling, parent Node) {
		prevParents = append(prevParents, parent.Hash())
		siblings = append(siblings, sibling)
	}); err != nil {
		return err
	}
	reverseHashes(prevParents)
	reverseNodes(siblings)

	var branchesDelete []Hash
	var branchesInsert []*BranchNode
	newRoot, err := t.walkUp(key, leaf, siblings, func(level int, current, sibling, parent Node) {
		prevParent := prevParents[t.MaxHeight()-level-1]
		if !bytes.Equal(prevParent, t.table.At(level).Hash()) {
			branchesDelete = append(branchesDelete, prevParent)
		}
		if !bytes.Equal(parent.Hash(), t.table.At(level).Hash()) {
			if branch, ok := parent.(*BranchNode); ok {
				branchesInsert = append(branchesInsert, branch)
			}
		}
	})
	if err != nil {
		return err
	}

	for _, branch := range branchesInsert {
		if err := t.store.InsertBranch(branch); err != nil {
			return wrapStoreErr(err)
		}
	}
	for _, key := range branchesDelete {
		if err := t.store.DeleteBranch(key); err != nil {
			return wrapStoreErr(err)
		}
	}
	if err := t.store.InsertLeaf(leaf); err != nil {
		return wrapStoreErr(err)
	}
	if err := t.store.UpdateRoot(newRoot); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// Delete removes the leaf at key by inserting the canonical empty leaf
// in its place.
func (t *Tree) Delete(key Hash) error {
	empty, ok := t.table.At(t.MaxHeight()).(*LeafNode)
	if !ok {
		return newErr(ErrExpectedEmptyLeaf, "empty leaf table entry is not a leaf")
	}
	return t.Insert(key, empty)
}

// MerkleProof returns the ordered list of siblings along key's path,
// from the leaf's sibling up to the sibling of the root's child.
func (t *Tree) MerkleProof(key Hash) (*Proof, error) {
	nodes := make([]Node, 0, t.MaxHeight())
	if _, err := t.walkDown(key, func(level int, next, sibling, parent Node) {
		nodes = append(nodes, sibling)
	}); err != nil {
		return nil, err
	}
	reverseNodes(nodes)
	return NewProof(nodes), nil
}

func reverseHashes(s []Hash) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseNodes(s []Node) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
