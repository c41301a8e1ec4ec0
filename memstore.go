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
	"encoding/hex"
)

// FullMemStore is a HashMap-backed Store kept entirely in memory. It is
// the reference implementation used by tests; it isn't
// meant to survive a process restart.
type FullMemStore struct {
	hasher HashFunc
	table  *EmptyTreeTable

	branches      map[string]*BranchNode
	leaves        map[string]*LeafNode
	compactLeaves map[string]*CompactLeafNode
	root          *BranchNode
}

// NewFullMemStore creates an empty in-memory store for a tree of the
// given hash width and hasher.
func NewFullMemStore(hashSize int, hasher HashFunc) *FullMemStore {
	return &FullMemStore{
		hasher:        hasher,
		table:         EmptyTree(hashSize, hasher),
		branches:      make(map[string]*BranchNode),
		leaves:        make(map[string]*LeafNode),
		compactLeaves: make(map[string]*CompactLeafNode),
	}
}

func keyOf(h Hash) string {
	return hex.EncodeToString(h)
}

func (s *FullMemStore) RootNode() (*BranchNode, error) {
	if s.root != nil {
		return s.root, nil
	}
	root, ok := s.table.At(0).(*BranchNode)
	if !ok {
		return nil, newErr(ErrExpectedBranch, "empty root is not a branch")
	}
	return root, nil
}

func (s *FullMemStore) UpdateRoot(root *BranchNode) error {
	s.root = root
	return nil
}

func (s *FullMemStore) getNode(level int, key Hash) Node {
	empty := s.table.At(level)
	if bytes.Equal(key, empty.Hash()) {
		return empty
	}
	k := keyOf(key)
	if branch, ok := s.branches[k]; ok {
		return branch
	}
	if leaf, ok := s.leaves[k]; ok {
		return leaf
	}
	if compact, ok := s.compactLeaves[k]; ok {
		return compact
	}
	return empty
}

func (s *FullMemStore) Children(level int, key Hash) (Node, Node, error) {
	node := s.getNode(level, key)
	empty := s.table.At(level)
	if !bytes.Equal(key, empty.Hash()) && bytes.Equal(node.Hash(), empty.Hash()) {
		return nil, nil, newErr(ErrNodeNotFound, "no node for key at level")
	}
	branch, ok := node.(*BranchNode)
	if !ok {
		return nil, nil, newErr(ErrExpectedBranch, "node is not a branch")
	}
	left := s.getNode(level+1, branch.Left().Hash())
	right := s.getNode(level+1, branch.Right().Hash())
	return left, right, nil
}

func (s *FullMemStore) InsertLeaf(leaf *LeafNode) error {
	s.leaves[keyOf(leaf.Hash())] = leaf
	return nil
}

func (s *FullMemStore) DeleteLeaf(key Hash) error {
	delete(s.leaves, keyOf(key))
	return nil
}

func (s *FullMemStore) InsertBranch(branch *BranchNode) error {
	s.branches[keyOf(branch.Hash())] = branch
	return nil
}

func (s *FullMemStore) DeleteBranch(key Hash) error {
	delete(s.branches, keyOf(key))
	return nil
}

func (s *FullMemStore) InsertCompactLeaf(leaf *CompactLeafNode) error {
	s.compactLeaves[keyOf(leaf.Hash())] = leaf
	return nil
}

func (s *FullMemStore) DeleteCompactLeaf(key Hash) error {
	delete(s.compactLeaves, keyOf(key))
	return nil
}

func (s *FullMemStore) EmptyTree() *EmptyTreeTable {
	return s.table
}
