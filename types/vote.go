package types

import (
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
	solmath "github.com/0xNineteen/sol-lightnode/libs/math"
	"github.com/0xNineteen/sol-lightnode/wire"
)

// VoteKind is a vote program instruction discriminant.
type VoteKind uint32

const (
	VoteKindVote                         VoteKind = 2
	VoteKindVoteSwitch                   VoteKind = 6
	VoteKindUpdateVoteState              VoteKind = 8
	VoteKindUpdateVoteStateSwitch        VoteKind = 9
	VoteKindCompactUpdateVoteState       VoteKind = 12
	VoteKindCompactUpdateVoteStateSwitch VoteKind = 13
)

// maxCompactRoot encodes an absent root in the compact vote state
// layout.
const maxCompactRoot = ^uint64(0)

// Lockout is one rung of a vote tower.
type Lockout struct {
	Slot              uint64
	ConfirmationCount uint32
}

// VoteInstruction is the tally-relevant content of a decoded vote
// program instruction. BankHash is nil for variants that carry no
// state commitment; such votes contribute nothing to a tally.
type VoteInstruction struct {
	Kind          VoteKind
	BankHash      *crypto.Hash
	LastVotedSlot uint64
	Timestamp     *int64
}

// HasBankHash reports whether the instruction commits to a bank hash.
func (vi *VoteInstruction) HasBankHash() bool {
	return vi.BankHash != nil
}

// ParseVoteInstruction decodes a vote program instruction payload.
//
// Only the vote variants that commit to a bank hash are fully
// decoded. Every other discriminant, including ones newer than this
// code, yields an instruction with a nil BankHash: skipping a vote
// can only under-count stake, never forge quorum. Malformed payloads
// of recognized variants are errors.
func ParseVoteInstruction(data []byte) (*VoteInstruction, error) {
	d := wire.NewDecoder(data)
	rawKind, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("decode vote discriminant: %w", err)
	}
	vi := &VoteInstruction{Kind: VoteKind(rawKind)}

	switch vi.Kind {
	case VoteKindVote, VoteKindVoteSwitch:
		if err := vi.parseVote(d); err != nil {
			return nil, fmt.Errorf("decode vote payload (kind %d): %w", rawKind, err)
		}
	case VoteKindUpdateVoteState, VoteKindUpdateVoteStateSwitch:
		if err := vi.parseUpdateVoteState(d); err != nil {
			return nil, fmt.Errorf("decode vote state update (kind %d): %w", rawKind, err)
		}
	case VoteKindCompactUpdateVoteState, VoteKindCompactUpdateVoteStateSwitch:
		if err := vi.parseCompactUpdateVoteState(d); err != nil {
			return nil, fmt.Errorf("decode compact vote state update (kind %d): %w", rawKind, err)
		}
	default:
		return vi, nil
	}

	switch vi.Kind {
	case VoteKindVoteSwitch, VoteKindUpdateVoteStateSwitch, VoteKindCompactUpdateVoteStateSwitch:
		// Switching proof hash. Present on the wire, irrelevant to
		// tallying.
		if _, err := d.ReadHash(); err != nil {
			return nil, fmt.Errorf("decode switch proof (kind %d): %w", rawKind, err)
		}
	}
	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("decode vote instruction (kind %d): %w", rawKind, err)
	}
	return vi, nil
}

func (vi *VoteInstruction) parseVote(d *wire.Decoder) error {
	numSlots, err := d.ReadVecLen()
	if err != nil {
		return err
	}
	for i := 0; i < numSlots; i++ {
		slot, err := d.ReadU64()
		if err != nil {
			return err
		}
		vi.LastVotedSlot = slot
	}
	hash, err := d.ReadHash()
	if err != nil {
		return err
	}
	vi.BankHash = &hash
	vi.Timestamp, err = readTimestamp(d)
	return err
}

func (vi *VoteInstruction) parseUpdateVoteState(d *wire.Decoder) error {
	numLockouts, err := d.ReadVecLen()
	if err != nil {
		return err
	}
	for i := 0; i < numLockouts; i++ {
		slot, err := d.ReadU64()
		if err != nil {
			return err
		}
		if _, err := d.ReadU32(); err != nil { // confirmation count
			return err
		}
		vi.LastVotedSlot = slot
	}
	root, err := d.ReadOption()
	if err != nil {
		return err
	}
	if root {
		if _, err := d.ReadU64(); err != nil {
			return err
		}
	}
	hash, err := d.ReadHash()
	if err != nil {
		return err
	}
	vi.BankHash = &hash
	vi.Timestamp, err = readTimestamp(d)
	return err
}

// parseCompactUpdateVoteState reads the compact layout: the root as a
// bare u64 with MaxUint64 meaning none, then lockouts as a short
// vector of varint slot deltas, each accumulating on the previous
// slot (or the root).
func (vi *VoteInstruction) parseCompactUpdateVoteState(d *wire.Decoder) error {
	root, err := d.ReadU64()
	if err != nil {
		return err
	}
	slot := root
	if root == maxCompactRoot {
		slot = 0
	}
	numOffsets, err := d.ReadShortVecLen()
	if err != nil {
		return err
	}
	for i := 0; i < numOffsets; i++ {
		offset, err := d.ReadVarint()
		if err != nil {
			return err
		}
		if slot, err = solmath.SafeAddUint64(slot, offset); err != nil {
			return fmt.Errorf("lockout offset %d: %w", i, err)
		}
		if _, err := d.ReadU8(); err != nil { // confirmation count
			return err
		}
		vi.LastVotedSlot = slot
	}
	hash, err := d.ReadHash()
	if err != nil {
		return err
	}
	vi.BankHash = &hash
	vi.Timestamp, err = readTimestamp(d)
	return err
}

func readTimestamp(d *wire.Decoder) (*int64, error) {
	present, err := d.ReadOption()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	ts, err := d.ReadI64()
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// EncodeVote serializes a plain vote instruction payload.
func EncodeVote(slots []uint64, bankHash crypto.Hash, timestamp *int64) []byte {
	e := wire.NewEncoder()
	e.WriteU32(uint32(VoteKindVote))
	e.WriteVecLen(len(slots))
	for _, slot := range slots {
		e.WriteU64(slot)
	}
	e.WriteHash(bankHash)
	writeTimestamp(e, timestamp)
	return e.Bytes()
}

// EncodeUpdateVoteState serializes a vote state update payload.
func EncodeUpdateVoteState(lockouts []Lockout, root *uint64, bankHash crypto.Hash, timestamp *int64) []byte {
	e := wire.NewEncoder()
	e.WriteU32(uint32(VoteKindUpdateVoteState))
	e.WriteVecLen(len(lockouts))
	for _, lockout := range lockouts {
		e.WriteU64(lockout.Slot)
		e.WriteU32(lockout.ConfirmationCount)
	}
	e.WriteOption(root != nil)
	if root != nil {
		e.WriteU64(*root)
	}
	e.WriteHash(bankHash)
	writeTimestamp(e, timestamp)
	return e.Bytes()
}

// EncodeCompactUpdateVoteState serializes a vote state update in the
// compact layout. Lockout slots must be strictly increasing.
func EncodeCompactUpdateVoteState(lockouts []Lockout, root *uint64, bankHash crypto.Hash, timestamp *int64) ([]byte, error) {
	e := wire.NewEncoder()
	e.WriteU32(uint32(VoteKindCompactUpdateVoteState))
	base := maxCompactRoot
	if root != nil {
		base = *root
	}
	e.WriteU64(base)
	prev := uint64(0)
	if root != nil {
		prev = *root
	}
	e.WriteShortVecLen(len(lockouts))
	for i, lockout := range lockouts {
		if lockout.Slot < prev {
			return nil, fmt.Errorf("lockout %d slot %d below previous %d", i, lockout.Slot, prev)
		}
		if lockout.ConfirmationCount > 0xff {
			return nil, fmt.Errorf("lockout %d confirmation count %d exceeds u8", i, lockout.ConfirmationCount)
		}
		e.WriteVarint(lockout.Slot - prev)
		e.WriteU8(uint8(lockout.ConfirmationCount))
		prev = lockout.Slot
	}
	e.WriteHash(bankHash)
	writeTimestamp(e, timestamp)
	return e.Bytes(), nil
}

func writeTimestamp(e *wire.Encoder, timestamp *int64) {
	e.WriteOption(timestamp != nil)
	if timestamp != nil {
		e.WriteI64(*timestamp)
	}
}
