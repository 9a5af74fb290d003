package types

import (
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/merkle"
	"github.com/0xNineteen/sol-lightnode/wire"
)

// Entry payload discriminants (u32, little endian).
const (
	entryKindTransactions = 0
	entryKindMerkleProof  = 1
)

// Entry is one link of a slot's hash chain. Hash must equal the
// chain replay over NumHashes iterations from the previous entry's
// hash, mixing in the entry's content.
//
// The payload takes one of two forms. A plain entry lists its
// transactions (none for a tick). A Merkle-compressed entry folds the
// transactions into a single inclusion proof, Proof, for one leaf of
// the transaction-signature tree; Transactions is nil in that form.
type Entry struct {
	NumHashes uint64
	Hash      crypto.Hash

	Transactions []Transaction
	Proof        *merkle.Proof
}

// IsTick reports whether the entry carries no content at all.
func (e *Entry) IsTick() bool {
	return e.Proof == nil && len(e.Transactions) == 0
}

// IsMerkle reports whether the entry is Merkle compressed.
func (e *Entry) IsMerkle() bool {
	return e.Proof != nil
}

// Mixin returns the value mixed into the hash chain for this entry,
// or nil for a tick.
//
// A Merkle-compressed entry mixes its root. When the compressed tree
// had a single leaf the bundle carries no root, the leaf itself is
// the root, and the caller must supply it: that is the target leaf
// the proof was requested for.
func (e *Entry) Mixin(targetLeaf *crypto.Hash) (*crypto.Hash, error) {
	switch {
	case e.IsTick():
		return nil, nil
	case e.IsMerkle():
		if root, ok := e.Proof.RootHash(); ok {
			return &root, nil
		}
		if targetLeaf == nil {
			return nil, fmt.Errorf("sole-leaf merkle entry needs a target leaf to derive its root")
		}
		return targetLeaf, nil
	default:
		mixin := HashTransactions(e.Transactions)
		return &mixin, nil
	}
}

// HashTransactions condenses a transaction batch into the hash mixed
// into the chain: the Merkle root over every signature of every
// transaction, in order. No signatures hash to the zero hash.
func HashTransactions(txs []Transaction) crypto.Hash {
	var items [][]byte
	for i := range txs {
		for j := range txs[i].Signatures {
			items = append(items, txs[i].Signatures[j][:])
		}
	}
	return merkle.RootFromItems(items...)
}

// LastEntryHash returns the hash of the final entry, or false when
// there are no entries.
func LastEntryHash(entries []Entry) (crypto.Hash, bool) {
	if len(entries) == 0 {
		return crypto.Hash{}, false
	}
	return entries[len(entries)-1].Hash, true
}

func decodeEntryFrom(d *wire.Decoder) (Entry, error) {
	var e Entry
	var err error
	if e.NumHashes, err = d.ReadU64(); err != nil {
		return e, err
	}
	if e.Hash, err = d.ReadHash(); err != nil {
		return e, err
	}
	kind, err := d.ReadU32()
	if err != nil {
		return e, err
	}
	switch kind {
	case entryKindTransactions:
		numTxs, err := d.ReadVecLen()
		if err != nil {
			return e, err
		}
		for i := 0; i < numTxs; i++ {
			tx, err := DecodeTransactionFrom(d)
			if err != nil {
				return e, fmt.Errorf("transaction %d: %w", i, err)
			}
			e.Transactions = append(e.Transactions, *tx)
		}
	case entryKindMerkleProof:
		proof, err := decodeProofFrom(d)
		if err != nil {
			return e, err
		}
		e.Proof = proof
	default:
		return e, fmt.Errorf("unknown entry kind %d", kind)
	}
	return e, nil
}

func encodeEntry(e *wire.Encoder, entry *Entry) error {
	e.WriteU64(entry.NumHashes)
	e.WriteHash(entry.Hash)
	if entry.IsMerkle() {
		e.WriteU32(entryKindMerkleProof)
		return encodeProof(e, entry.Proof)
	}
	e.WriteU32(entryKindTransactions)
	e.WriteVecLen(len(entry.Transactions))
	for i := range entry.Transactions {
		bz, err := entry.Transactions[i].Marshal()
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		e.WriteBytes(bz)
	}
	return nil
}

func decodeProofFrom(d *wire.Decoder) (*merkle.Proof, error) {
	numSiblings, err := d.ReadVecLen()
	if err != nil {
		return nil, err
	}
	proof := &merkle.Proof{}
	for i := 0; i < numSiblings; i++ {
		sibling, err := d.ReadHash()
		if err != nil {
			return nil, fmt.Errorf("sibling %d: %w", i, err)
		}
		proof.Siblings = append(proof.Siblings, sibling)
	}
	if proof.Parity, err = d.ReadU64(); err != nil {
		return nil, err
	}
	hasRoot, err := d.ReadOption()
	if err != nil {
		return nil, err
	}
	if hasRoot {
		root, err := d.ReadHash()
		if err != nil {
			return nil, err
		}
		proof.Root = &root
	}
	if err := proof.ValidateBasic(); err != nil {
		return nil, err
	}
	return proof, nil
}

func encodeProof(e *wire.Encoder, proof *merkle.Proof) error {
	if err := proof.ValidateBasic(); err != nil {
		return err
	}
	e.WriteVecLen(len(proof.Siblings))
	for _, sibling := range proof.Siblings {
		e.WriteHash(sibling)
	}
	e.WriteU64(proof.Parity)
	e.WriteOption(proof.Root != nil)
	if proof.Root != nil {
		e.WriteHash(*proof.Root)
	}
	return nil
}
