// Package merkle computes binary Merkle trees and inclusion proofs in
// the chain's canonical scheme: SHA-256 with a 0x00 domain byte for
// leaves and 0x01 for inner nodes, and the last node of an odd level
// paired with itself.
package merkle

import (
	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/solhash"
)

var (
	leafPrefix  = []byte{0}
	innerPrefix = []byte{1}
)

// LeafHash returns the hash of a leaf item: SHA-256(0x00 || item).
func LeafHash(item []byte) crypto.Hash {
	return solhash.Sumv(leafPrefix, item)
}

// InnerHash returns the hash of an inner node:
// SHA-256(0x01 || left || right).
func InnerHash(left, right crypto.Hash) crypto.Hash {
	return solhash.Sumv(innerPrefix, left[:], right[:])
}

// Tree is a fully materialized Merkle tree. Level 0 holds the leaf
// hashes; the last level holds the root.
type Tree struct {
	levels [][]crypto.Hash
}

// NewTree builds a tree over the given items. A nil or empty item
// set yields a tree with no root.
func NewTree(items ...[]byte) *Tree {
	if len(items) == 0 {
		return &Tree{}
	}
	leaves := make([]crypto.Hash, len(items))
	for i, item := range items {
		leaves[i] = LeafHash(item)
	}
	levels := [][]crypto.Hash{leaves}
	for level := leaves; len(level) > 1; {
		next := make([]crypto.Hash, (len(level)+1)/2)
		for i := range next {
			left := level[2*i]
			right := left
			if 2*i+1 < len(level) {
				right = level[2*i+1]
			}
			next[i] = InnerHash(left, right)
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels}
}

// LeafCount returns the number of leaves in the tree.
func (t *Tree) LeafCount() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels[0])
}

// Root returns the root hash, or false for an empty tree.
func (t *Tree) Root() (crypto.Hash, bool) {
	if len(t.levels) == 0 {
		return crypto.Hash{}, false
	}
	top := t.levels[len(t.levels)-1]
	return top[0], true
}

// RootFromItems returns the Merkle root over the given items, or the
// zero hash when there are none.
func RootFromItems(items ...[]byte) crypto.Hash {
	root, ok := NewTree(items...).Root()
	if !ok {
		return crypto.ZeroHash
	}
	return root
}
