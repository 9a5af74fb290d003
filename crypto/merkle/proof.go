package merkle

import (
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
)

// MaxProofDepth bounds the sibling path length. Parity is a 64-bit
// mask, one bit per level.
const MaxProofDepth = 64

// Proof is an inclusion proof for a single leaf. Siblings lists the
// sibling hash at each level from the leaf up; bit i of Parity is set
// when sibling i is the left input at that level. Root is the root
// the path must reduce to, and is nil exactly when the tree has a
// single leaf, in which case the leaf itself is the root.
type Proof struct {
	Siblings []crypto.Hash
	Parity   uint64
	Root     *crypto.Hash
}

// Proof returns the inclusion proof for the leaf at the given index.
func (t *Tree) Proof(index int) (*Proof, error) {
	n := t.LeafCount()
	if index < 0 || index >= n {
		return nil, fmt.Errorf("merkle: leaf index %d out of range [0,%d)", index, n)
	}
	if n == 1 {
		return &Proof{}, nil
	}
	proof := &Proof{}
	idx := index
	for _, level := range t.levels[:len(t.levels)-1] {
		var sibling crypto.Hash
		if idx%2 == 0 {
			// Last node of an odd level is its own sibling.
			sibling = level[idx]
			if idx+1 < len(level) {
				sibling = level[idx+1]
			}
		} else {
			sibling = level[idx-1]
			proof.Parity |= 1 << uint(len(proof.Siblings))
		}
		proof.Siblings = append(proof.Siblings, sibling)
		idx /= 2
	}
	root, _ := t.Root()
	proof.Root = &root
	return proof, nil
}

// RootHash returns the root the proof commits to. It returns false
// for a sole-leaf proof, whose root is whatever leaf it is checked
// against.
func (p *Proof) RootHash() (crypto.Hash, bool) {
	if p.Root == nil {
		return crypto.Hash{}, false
	}
	return *p.Root, true
}

// Verify reports whether the sibling path reduces leaf to the proof's
// root. A proof with no siblings is trivially true: the leaf is the
// root.
func (p *Proof) Verify(leaf crypto.Hash) bool {
	if len(p.Siblings) == 0 {
		return true
	}
	if p.Root == nil {
		return false
	}
	return p.Fold(leaf) == *p.Root
}

// Fold reduces a leaf hash through the sibling path and returns the
// resulting root candidate.
func (p *Proof) Fold(leaf crypto.Hash) crypto.Hash {
	cur := leaf
	for i, sibling := range p.Siblings {
		if p.Parity&(1<<uint(i)) != 0 {
			cur = InnerHash(sibling, cur)
		} else {
			cur = InnerHash(cur, sibling)
		}
	}
	return cur
}

// ValidateBasic checks the structural rules a decoded proof must
// satisfy before use.
func (p *Proof) ValidateBasic() error {
	if len(p.Siblings) > MaxProofDepth {
		return fmt.Errorf("merkle: proof depth %d exceeds %d", len(p.Siblings), MaxProofDepth)
	}
	if len(p.Siblings) == 0 && p.Root != nil {
		return fmt.Errorf("merkle: sole-leaf proof must not carry a root")
	}
	if len(p.Siblings) > 0 && p.Root == nil {
		return fmt.Errorf("merkle: proof with siblings must carry a root")
	}
	if bits := len(p.Siblings); bits < MaxProofDepth && p.Parity>>uint(bits) != 0 {
		return fmt.Errorf("merkle: parity has bits set beyond sibling count %d", bits)
	}
	return nil
}
