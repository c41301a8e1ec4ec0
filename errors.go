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

import "fmt"

// ErrKind is the closed set of error categories a tree operation can
// fail with.
type ErrKind int

const (
	// ErrNodeNotFound means the store could not resolve a node for a
	// hash it was asked about.
	ErrNodeNotFound ErrKind = iota

	// ErrExpectedBranch means a branch node was required at a point
	// in the walk but something else was found. New and NewCompactTree
	// also return it for a hashSize that is not positive.
	ErrExpectedBranch

	// ErrExpectedLeaf means a leaf node was required at a point in
	// the walk but something else was found.
	ErrExpectedLeaf

	// ErrExpectedCompactLeaf means a compact leaf was required but
	// something else was found.
	ErrExpectedCompactLeaf

	// ErrExpectedEmptyLeaf means an empty leaf was required but
	// something else was found.
	ErrExpectedEmptyLeaf

	// ErrSumOverflow means applying an insert would overflow the u64
	// sum of some ancestor branch. The tree is left untouched.
	ErrSumOverflow

	// ErrInvalidMerkleProof means a proof failed to reproduce the
	// expected root hash during verification, or a compressed proof is
	// malformed (too short, truncated, or carrying a node count that
	// does not match its bitmap).
	ErrInvalidMerkleProof

	// ErrStore wraps an error returned by the backing Store.
	ErrStore
)

func (k ErrKind) String() string {
	switch k {
	case ErrNodeNotFound:
		return "node not found"
	case ErrExpectedBranch:
		return "expected branch node"
	case ErrExpectedLeaf:
		return "expected leaf node"
	case ErrExpectedCompactLeaf:
		return "expected compact leaf node"
	case ErrExpectedEmptyLeaf:
		return "expected empty leaf node"
	case ErrSumOverflow:
		return "sum overflow"
	case ErrInvalidMerkleProof:
		return "invalid merkle proof"
	case ErrStore:
		return "store error"
	default:
		return "unknown error"
	}
}

// Error is the single error type every mssmt operation returns. Callers
// should switch on Kind rather than compare error values directly.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapStoreErr(err error) *Error {
	return &Error{Kind: ErrStore, Msg: "store operation failed", Err: err}
}
