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

// Store is the persistence interface both tree engines are built on top
// of. A Store is single-writer: callers must not call mutating methods
// concurrently with each other or with reads. Implementations are free
// to batch the sequence of inserts/deletes an Insert or Delete call
// produces into one underlying transaction.
type Store interface {
	// RootNode returns the current root branch, or the canonical empty
	// root if the tree has never been written to.
	RootNode() (*BranchNode, error)

	// UpdateRoot replaces the current root branch.
	UpdateRoot(root *BranchNode) error

	// Children resolves the two children of the branch whose hash is
	// given, at the stated level (the level of the branch itself, not
	// of its children). Returns ErrNodeNotFound if key isn't a known
	// node and isn't the empty node for that level either, and
	// ErrExpectedBranch if key resolves to something other than a
	// branch.
	Children(level int, key Hash) (Node, Node, error)

	InsertLeaf(leaf *LeafNode) error
	DeleteLeaf(key Hash) error

	InsertBranch(branch *BranchNode) error
	DeleteBranch(key Hash) error

	InsertCompactLeaf(leaf *CompactLeafNode) error
	DeleteCompactLeaf(key Hash) error

	// EmptyTree returns the table of canonical empty subtree nodes
	// this store's tree was built with.
	EmptyTree() *EmptyTreeTable
}
