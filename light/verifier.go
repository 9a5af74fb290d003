// Package light verifies slots and transactions against a
// proof-of-history chain using only data a light client can afford:
// one slot's entries, a stake snapshot, and the votes of a lookahead
// window.
package light

import (
	"encoding/binary"
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/merkle"
	"github.com/0xNineteen/sol-lightnode/crypto/solhash"
	"github.com/0xNineteen/sol-lightnode/poh"
	"github.com/0xNineteen/sol-lightnode/types"
)

// VerifyEntryChain replays the hash chain from start and confirms
// every entry's stored hash. It fails fast with ErrChainVerification
// at the first mismatch.
//
// targetLeaf supplies the implied root of sole-leaf Merkle entries;
// it may be nil when the entries are known to carry their own roots.
// An empty entry sequence verifies trivially.
func VerifyEntryChain(start crypto.Hash, entries []types.Entry, targetLeaf *crypto.Hash) error {
	prev := start
	for i := range entries {
		mixin, err := entries[i].Mixin(targetLeaf)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		expected := poh.NextHash(prev, entries[i].NumHashes, mixin)
		if expected != entries[i].Hash {
			return ErrChainVerification{Index: i, Expected: expected, Actual: entries[i].Hash}
		}
		prev = entries[i].Hash
	}
	return nil
}

// Inclusion locates a target signature within a slot's entries.
type Inclusion struct {
	// Found reports whether any entry contains the signature.
	Found bool
	// EntryIndex is the index of the containing entry, -1 otherwise.
	EntryIndex int
}

// VerifyInclusion scans the entries for the target signature. Plain
// entries match by literal signature; Merkle-compressed entries check
// their proof against the signature's leaf hash.
//
// An entry whose proof fails the reduction is an ErrProofInvalid: the
// entry claimed the target and did not deliver, which poisons the
// whole chain. Not finding the signature anywhere is NOT an error
// here; the caller decides what absence means.
func VerifyInclusion(entries []types.Entry, sig crypto.Signature) (Inclusion, error) {
	leaf := merkle.LeafHash(sig[:])
	for i := range entries {
		e := &entries[i]
		if e.IsMerkle() {
			if !e.Proof.Verify(leaf) {
				return Inclusion{Found: false, EntryIndex: -1}, ErrProofInvalid{EntryIndex: i}
			}
			return Inclusion{Found: true, EntryIndex: i}, nil
		}
		for j := range e.Transactions {
			if e.Transactions[j].HasSignature(sig) {
				return Inclusion{Found: true, EntryIndex: i}, nil
			}
		}
	}
	return Inclusion{Found: false, EntryIndex: -1}, nil
}

// TargetLeaf returns the Merkle leaf hash of a transaction signature,
// the leaf sole-leaf proof bundles are resolved against.
func TargetLeaf(sig crypto.Signature) crypto.Hash {
	return merkle.LeafHash(sig[:])
}

// ComputeBankHash recomputes the bank hash commitment for a slot:
// SHA-256 over the parent bank hash, the accounts delta hash, the
// little-endian signature count, and the hash of the slot's final
// entry.
func ComputeBankHash(parent, accountsDelta crypto.Hash, signatureCount uint64, lastEntryHash crypto.Hash) crypto.Hash {
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], signatureCount)
	return solhash.Sumv(parent[:], accountsDelta[:], countBuf[:], lastEntryHash[:])
}
