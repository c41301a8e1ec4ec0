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

import "encoding/binary"

// Hash is a node digest. Its length is fixed per tree (the hashSize the
// tree was constructed with) but not at compile time, since Go has no
// const-generic array length tied to a runtime hasher choice.
type Hash []byte

// Sum is the aggregated value carried by a subtree: a branch's sum is
// always the sum of its two children. Replacing a leaf with one of a
// smaller sum, or deleting it, lowers the sums along its path.
type Sum = uint64

// HashFunc hashes an arbitrary byte string into a digest of a fixed
// width. A tree's level count comes from the hashSize it is built with
// (8*hashSize levels), which must match the HashFunc's output width.
type HashFunc func(data []byte) []byte

// bitIndex returns the bit of key that selects the descent direction at
// the given level: 0 means take the left child, 1 means take the right
// child. Level 0 is the root.
func bitIndex(level int, key []byte) uint8 {
	return (key[level/8] >> (level % 8)) & 1
}

func sumBytes(sum Sum) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sum)
	return buf[:]
}
