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
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
)

// Proof is a merkle proof for a single key: the ordered list of 8N
// sibling nodes needed to recompute the root from a leaf. Proof[0] is
// the sibling nearest the leaf; Proof[8N-1] is the sibling of the
// root's child on the key's path. Each entry only needs to expose its
// hash and sum, so a ComputedNode is as good as the real node.
type Proof struct {
	nodes []Node
}

// NewProof wraps an ordered sibling list as a Proof.
func NewProof(nodes []Node) *Proof {
	return &Proof{nodes: nodes}
}

// Nodes returns the proof's sibling list.
func (p *Proof) Nodes() []Node {
	return p.nodes
}

// Root recomputes the branch this proof leads to for key/leaf. It
// cannot fail: any sibling list of the right length produces some
// branch, valid or not.
func (p *Proof) Root(hasher HashFunc, key Hash, leaf *LeafNode) Node {
	var current Node = leaf
	levels := len(p.nodes)
	for i := levels - 1; i >= 0; i-- {
		sibling := p.nodes[levels-1-i]
		if bitIndex(i, key) == 0 {
			current = NewBranchNode(hasher, current, sibling)
		} else {
			current = NewBranchNode(hasher, sibling, current)
		}
	}
	return current
}

// Verify checks that this proof, applied to key/leaf, reproduces
// rootHash. It returns an *Error with kind ErrInvalidMerkleProof if it
// does not.
func (p *Proof) Verify(hasher HashFunc, key Hash, leaf *LeafNode, rootHash Hash) error {
	got := p.Root(hasher, key, leaf)
	if !bytes.Equal(got.Hash(), rootHash) {
		return newErr(ErrInvalidMerkleProof, "proof does not reproduce expected root hash")
	}
	return nil
}

// VerifyMerkleProof checks a proof for key/leaf against expectedRoot
// without needing a live Proof value.
func VerifyMerkleProof(hasher HashFunc, key Hash, leaf *LeafNode, nodes []Node, expectedRoot Hash) error {
	return NewProof(nodes).Verify(hasher, key, leaf, expectedRoot)
}

// Compress elides every sibling that equals the empty-tree node at its
// level, replacing it with a single bit in a bitmap. The remaining
// siblings are kept, in order, in the compressed form's node list.
func (p *Proof) Compress(table *EmptyTreeTable) *CompressedProof {
	levels := len(p.nodes)
	bits := bitset.New(uint(levels))
	nodes := make([]Node, 0, levels)
	for i, node := range p.nodes {
		emptyLevel := levels - i
		if bytes.Equal(node.Hash(), table.At(emptyLevel).Hash()) {
			bits.Set(uint(i))
		} else {
			nodes = append(nodes, node)
		}
	}
	return &CompressedProof{nodes: nodes, bits: bits, levels: levels}
}

// CompressedProof is a Proof with empty-subtree siblings elided against
// a shared bitmap instead of being carried node-by-node.
type CompressedProof struct {
	nodes  []Node
	bits   *bitset.BitSet
	levels int
}

// NewCompressedProof builds a compressed proof directly from its sparse
// node list and per-level bitmap.
func NewCompressedProof(nodes []Node, bits *bitset.BitSet, levels int) *CompressedProof {
	return &CompressedProof{nodes: nodes, bits: bits, levels: levels}
}

// Decompress rehydrates the full 8N sibling sequence using the
// empty-tree table, returning ErrInvalidMerkleProof if the bitmap's
// zero-count doesn't match the number of carried nodes.
func (c *CompressedProof) Decompress(table *EmptyTreeTable) (*Proof, error) {
	expectedNodes := c.levels - int(c.bits.Count())
	if len(c.nodes) != expectedNodes {
		return nil, newErr(ErrInvalidMerkleProof, "compressed proof node count does not match bitmap")
	}
	nodes := make([]Node, c.levels)
	next := 0
	for i := 0; i < c.levels; i++ {
		if c.bits.Test(uint(i)) {
			nodes[i] = table.At(c.levels - i)
		} else {
			nodes[i] = c.nodes[next]
			next++
		}
	}
	return NewProof(nodes), nil
}

// Encode serializes the compressed proof to its wire format: a u16
// big-endian node count, that many (hash || u64 sum) entries in big
// endian, followed by the bitmap packed LSB-first within each byte.
func (c *CompressedProof) Encode() []byte {
	var buf bytes.Buffer
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(c.nodes)))
	buf.Write(countBuf[:])
	for _, node := range c.nodes {
		buf.Write(node.Hash())
		buf.Write(sumBytes(node.Sum()))
	}
	buf.Write(packBitsLSB(c.bits, c.levels))
	return buf.Bytes()
}

// DecodeCompressedProof parses the wire format produced by Encode. The
// hash width must be supplied since it isn't carried on the wire.
func DecodeCompressedProof(data []byte, hashSize, levels int) (*CompressedProof, error) {
	if len(data) < 2 {
		return nil, newErr(ErrInvalidMerkleProof, "compressed proof too short")
	}
	nodeCount := int(binary.BigEndian.Uint16(data[:2]))
	offset := 2
	nodes := make([]Node, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if len(data) < offset+hashSize+8 {
			return nil, newErr(ErrInvalidMerkleProof, "compressed proof truncated")
		}
		hash := append(Hash{}, data[offset:offset+hashSize]...)
		offset += hashSize
		sum := binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
		nodes = append(nodes, NewComputedNode(hash, sum))
	}
	bits := unpackBitsLSB(data[offset:], levels)
	return &CompressedProof{nodes: nodes, bits: bits, levels: levels}, nil
}

func packBitsLSB(bits *bitset.BitSet, levels int) []byte {
	out := make([]byte, (levels+7)/8)
	for i := 0; i < levels; i++ {
		if bits.Test(uint(i)) {
			out[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return out
}

func unpackBitsLSB(data []byte, levels int) *bitset.BitSet {
	bits := bitset.New(uint(levels))
	for i := 0; i < levels && i/8 < len(data); i++ {
		if (data[i/8]>>(uint(i)%8))&1 == 1 {
			bits.Set(uint(i))
		}
	}
	return bits
}
