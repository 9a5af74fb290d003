package types

import (
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/wire"
)

// BlockHeader is the verification payload a header-serving node
// returns for one slot: the bank hash preimage pieces and the slot's
// entry chain. A header is owned by a single verification run and
// never mutated after decode.
type BlockHeader struct {
	ParentHash        crypto.Hash
	AccountsDeltaHash crypto.Hash
	SignatureCount    uint64
	StartBlockhash    crypto.Hash
	Entries           []Entry
}

// DecodeBlockHeader parses the serialized header layout: the three
// bank hash preimage fields, the starting blockhash, then the entry
// vector.
func DecodeBlockHeader(bz []byte) (*BlockHeader, error) {
	d := wire.NewDecoder(bz)
	h := &BlockHeader{}
	var err error
	if h.ParentHash, err = d.ReadHash(); err != nil {
		return nil, fmt.Errorf("decode parent hash: %w", err)
	}
	if h.AccountsDeltaHash, err = d.ReadHash(); err != nil {
		return nil, fmt.Errorf("decode accounts delta hash: %w", err)
	}
	if h.SignatureCount, err = d.ReadU64(); err != nil {
		return nil, fmt.Errorf("decode signature count: %w", err)
	}
	if h.StartBlockhash, err = d.ReadHash(); err != nil {
		return nil, fmt.Errorf("decode start blockhash: %w", err)
	}
	numEntries, err := d.ReadVecLen()
	if err != nil {
		return nil, fmt.Errorf("decode entry count: %w", err)
	}
	// A tick, the smallest entry, still occupies 52 bytes.
	if max := d.Remaining() / 52; numEntries > max {
		return nil, fmt.Errorf("entry count %d exceeds payload capacity %d", numEntries, max)
	}
	h.Entries = make([]Entry, 0, numEntries)
	for i := 0; i < numEntries; i++ {
		entry, err := decodeEntryFrom(d)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}
		h.Entries = append(h.Entries, entry)
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return h, nil
}

// Marshal returns the serialized header.
func (h *BlockHeader) Marshal() ([]byte, error) {
	e := wire.NewEncoder()
	e.WriteHash(h.ParentHash)
	e.WriteHash(h.AccountsDeltaHash)
	e.WriteU64(h.SignatureCount)
	e.WriteHash(h.StartBlockhash)
	e.WriteVecLen(len(h.Entries))
	for i := range h.Entries {
		if err := encodeEntry(e, &h.Entries[i]); err != nil {
			return nil, fmt.Errorf("encode entry %d: %w", i, err)
		}
	}
	return e.Bytes(), nil
}

// LastEntryHash returns the hash of the final entry, or false for a
// header with no entries.
func (h *BlockHeader) LastEntryHash() (crypto.Hash, bool) {
	return LastEntryHash(h.Entries)
}
