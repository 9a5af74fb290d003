package light

import (
	"errors"
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
)

// ErrNoEntries rejects a header whose entry chain is empty. Without a
// final entry hash there is no bank hash to check votes against.
var ErrNoEntries = errors.New("block header has no entries")

// ErrChainVerification reports the first entry whose stored hash does
// not match the hash chain replay. Everything after a broken link is
// unverifiable, so the replay stops here.
type ErrChainVerification struct {
	Index    int
	Expected crypto.Hash
	Actual   crypto.Hash
}

func (e ErrChainVerification) Error() string {
	return fmt.Sprintf("entry %d hash mismatch: replay yields %s, entry claims %s",
		e.Index, e.Expected, e.Actual)
}

// ErrProofInvalid reports a Merkle-compressed entry whose proof does
// not reduce the target leaf to the entry's root. The proof claimed
// the target and failed it, which is a verification failure, not a
// miss.
type ErrProofInvalid struct {
	EntryIndex int
}

func (e ErrProofInvalid) Error() string {
	return fmt.Sprintf("merkle proof in entry %d does not reduce to its root", e.EntryIndex)
}

// ErrSignatureNotFound means no entry of the verified chain contains
// the target signature. The transaction's absence is not proven,
// merely its presence unproven.
type ErrSignatureNotFound struct {
	Signature crypto.Signature
}

func (e ErrSignatureNotFound) Error() string {
	return fmt.Sprintf("signature %s not found in any entry of the slot", e.Signature)
}

// ErrInconclusiveScan aborts a vote tally that hit a slot with no
// transactions. Deciding quorum on a window with holes would trade
// the supermajority guarantee for availability.
type ErrInconclusiveScan struct {
	Slot uint64
}

func (e ErrInconclusiveScan) Error() string {
	return fmt.Sprintf("slot %d has no transactions, vote scan is inconclusive", e.Slot)
}
