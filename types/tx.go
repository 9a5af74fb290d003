package types

import (
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/ed25519"
	"github.com/0xNineteen/sol-lightnode/wire"
)

// MessageVersion distinguishes the legacy transaction message layout
// from the versioned one introduced for address table lookups.
type MessageVersion uint8

const (
	// MessageVersionV0 is the first explicitly versioned layout.
	MessageVersionV0 MessageVersion = 0

	// MessageVersionLegacy marks the original layout, which carries
	// no version byte on the wire.
	MessageVersionLegacy MessageVersion = 0xff

	// versionPrefixMask flags the first message byte as a version
	// prefix. Legacy messages start with the signature count, which
	// is always below it.
	versionPrefixMask = 0x80
)

func (v MessageVersion) String() string {
	if v == MessageVersionLegacy {
		return "legacy"
	}
	return fmt.Sprintf("v%d", uint8(v))
}

// MessageHeader counts the signing and read-only accounts of a
// message. The first NumRequiredSignatures account keys are the
// signers, in signature order.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// CompiledInstruction references its program and accounts by index
// into the message account table.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// MessageAddressTableLookup loads additional accounts from an
// on-chain lookup table. Present in v0 messages only. Looked-up
// accounts extend the account table past the static keys, but can
// never hold a program id, so this tree records and re-serializes
// lookups without resolving them.
type MessageAddressTableLookup struct {
	AccountKey      crypto.PubKey
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// Message is the signed payload of a transaction.
type Message struct {
	Version             MessageVersion
	Header              MessageHeader
	AccountKeys         []crypto.PubKey
	RecentBlockhash     crypto.Hash
	Instructions        []CompiledInstruction
	AddressTableLookups []MessageAddressTableLookup

	// raw caches the serialized form. Signatures cover these exact
	// bytes, so decoded messages retain them rather than re-encode.
	raw []byte
}

// Serialize returns the wire form of the message, the byte string
// signatures are computed over.
func (msg *Message) Serialize() []byte {
	if msg.raw != nil {
		return msg.raw
	}
	e := wire.NewEncoder()
	if msg.Version != MessageVersionLegacy {
		e.WriteU8(versionPrefixMask | uint8(msg.Version))
	}
	e.WriteU8(msg.Header.NumRequiredSignatures)
	e.WriteU8(msg.Header.NumReadonlySignedAccounts)
	e.WriteU8(msg.Header.NumReadonlyUnsignedAccounts)
	e.WriteShortVecLen(len(msg.AccountKeys))
	for _, key := range msg.AccountKeys {
		e.WritePubKey(key)
	}
	e.WriteHash(msg.RecentBlockhash)
	e.WriteShortVecLen(len(msg.Instructions))
	for _, ix := range msg.Instructions {
		e.WriteU8(ix.ProgramIDIndex)
		e.WriteShortVecLen(len(ix.Accounts))
		e.WriteBytes(ix.Accounts)
		e.WriteShortVecLen(len(ix.Data))
		e.WriteBytes(ix.Data)
	}
	if msg.Version != MessageVersionLegacy {
		e.WriteShortVecLen(len(msg.AddressTableLookups))
		for _, lookup := range msg.AddressTableLookups {
			e.WritePubKey(lookup.AccountKey)
			e.WriteShortVecLen(len(lookup.WritableIndexes))
			e.WriteBytes(lookup.WritableIndexes)
			e.WriteShortVecLen(len(lookup.ReadonlyIndexes))
			e.WriteBytes(lookup.ReadonlyIndexes)
		}
	}
	msg.raw = e.Bytes()
	return msg.raw
}

// HasKey reports whether pk appears among the static account keys.
func (msg *Message) HasKey(pk crypto.PubKey) bool {
	for _, key := range msg.AccountKeys {
		if key == pk {
			return true
		}
	}
	return false
}

// Signer returns the i'th required signer key.
func (msg *Message) Signer(i int) (crypto.PubKey, bool) {
	if i < 0 || i >= int(msg.Header.NumRequiredSignatures) || i >= len(msg.AccountKeys) {
		return crypto.PubKey{}, false
	}
	return msg.AccountKeys[i], true
}

// Program resolves the program id an instruction targets. Program
// ids always live in the static key table, even for v0 messages.
func (msg *Message) Program(ix CompiledInstruction) (crypto.PubKey, error) {
	if int(ix.ProgramIDIndex) >= len(msg.AccountKeys) {
		return crypto.PubKey{}, fmt.Errorf("program id index %d out of range (%d static keys)",
			ix.ProgramIDIndex, len(msg.AccountKeys))
	}
	return msg.AccountKeys[ix.ProgramIDIndex], nil
}

// Transaction is a decoded transaction envelope: one signature per
// required signer followed by the message they sign.
type Transaction struct {
	Signatures []crypto.Signature
	Message    Message
}

// ErrInvalidSignature reports a signature that does not verify
// against its declared signer. Transactions carrying one are excluded
// from tallies, never counted as partially valid.
type ErrInvalidSignature struct {
	Index  int
	Signer crypto.PubKey
}

func (e ErrInvalidSignature) Error() string {
	return fmt.Sprintf("invalid signature %d by %s", e.Index, e.Signer)
}

// DecodeTransaction parses a serialized transaction. Structural
// problems are decode errors; signature validity is checked
// separately by VerifySignatures.
func DecodeTransaction(bz []byte) (*Transaction, error) {
	d := wire.NewDecoder(bz)
	tx, err := DecodeTransactionFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return tx, nil
}

// DecodeTransactionFrom parses one transaction from a decoder,
// consuming exactly the bytes the transaction occupies. Entry payloads
// carry transactions back to back, so the decode must be streaming.
func DecodeTransactionFrom(d *wire.Decoder) (*Transaction, error) {
	start := d.Offset()
	numSigs, err := d.ReadShortVecLen()
	if err != nil {
		return nil, fmt.Errorf("decode signature count: %w", err)
	}
	sigs := make([]crypto.Signature, numSigs)
	for i := range sigs {
		if sigs[i], err = d.ReadSignature(); err != nil {
			return nil, fmt.Errorf("decode signature %d: %w", i, err)
		}
	}
	msgStart := d.Offset()
	msg, err := decodeMessageFrom(d)
	if err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	msg.raw = d.Slice(msgStart, d.Offset())
	if numSigs != int(msg.Header.NumRequiredSignatures) {
		return nil, fmt.Errorf("transaction carries %d signatures, message requires %d",
			numSigs, msg.Header.NumRequiredSignatures)
	}
	if size := d.Offset() - start; size > MaxTransactionSize {
		return nil, fmt.Errorf("transaction size %d exceeds limit %d", size, MaxTransactionSize)
	}
	return &Transaction{Signatures: sigs, Message: *msg}, nil
}

func decodeMessageFrom(d *wire.Decoder) (*Message, error) {
	msg := &Message{Version: MessageVersionLegacy}
	first, err := d.ReadU8()
	if err != nil {
		return nil, err
	}
	if first&versionPrefixMask != 0 {
		msg.Version = MessageVersion(first &^ versionPrefixMask)
		if msg.Version != MessageVersionV0 {
			return nil, fmt.Errorf("unsupported message version %d", msg.Version)
		}
		if first, err = d.ReadU8(); err != nil {
			return nil, err
		}
	}

	msg.Header.NumRequiredSignatures = first
	if msg.Header.NumReadonlySignedAccounts, err = d.ReadU8(); err != nil {
		return nil, err
	}
	if msg.Header.NumReadonlyUnsignedAccounts, err = d.ReadU8(); err != nil {
		return nil, err
	}

	numKeys, err := d.ReadShortVecLen()
	if err != nil {
		return nil, fmt.Errorf("decode account keys: %w", err)
	}
	msg.AccountKeys = make([]crypto.PubKey, numKeys)
	for i := range msg.AccountKeys {
		if msg.AccountKeys[i], err = d.ReadPubKey(); err != nil {
			return nil, fmt.Errorf("decode account key %d: %w", i, err)
		}
	}
	if msg.RecentBlockhash, err = d.ReadHash(); err != nil {
		return nil, fmt.Errorf("decode recent blockhash: %w", err)
	}

	numInstructions, err := d.ReadShortVecLen()
	if err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}
	msg.Instructions = make([]CompiledInstruction, numInstructions)
	for i := range msg.Instructions {
		if msg.Instructions[i], err = decodeInstruction(d); err != nil {
			return nil, fmt.Errorf("decode instruction %d: %w", i, err)
		}
	}

	if msg.Version != MessageVersionLegacy {
		numLookups, err := d.ReadShortVecLen()
		if err != nil {
			return nil, fmt.Errorf("decode address table lookups: %w", err)
		}
		msg.AddressTableLookups = make([]MessageAddressTableLookup, numLookups)
		for i := range msg.AddressTableLookups {
			if msg.AddressTableLookups[i], err = decodeLookup(d); err != nil {
				return nil, fmt.Errorf("decode address table lookup %d: %w", i, err)
			}
		}
	}

	if err := msg.validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeInstruction(d *wire.Decoder) (CompiledInstruction, error) {
	var ix CompiledInstruction
	var err error
	if ix.ProgramIDIndex, err = d.ReadU8(); err != nil {
		return ix, err
	}
	numAccounts, err := d.ReadShortVecLen()
	if err != nil {
		return ix, err
	}
	accounts, err := d.ReadBytes(numAccounts)
	if err != nil {
		return ix, err
	}
	ix.Accounts = accounts
	dataLen, err := d.ReadShortVecLen()
	if err != nil {
		return ix, err
	}
	if ix.Data, err = d.ReadBytes(dataLen); err != nil {
		return ix, err
	}
	return ix, nil
}

func decodeLookup(d *wire.Decoder) (MessageAddressTableLookup, error) {
	var lookup MessageAddressTableLookup
	var err error
	if lookup.AccountKey, err = d.ReadPubKey(); err != nil {
		return lookup, err
	}
	numWritable, err := d.ReadShortVecLen()
	if err != nil {
		return lookup, err
	}
	if lookup.WritableIndexes, err = d.ReadBytes(numWritable); err != nil {
		return lookup, err
	}
	numReadonly, err := d.ReadShortVecLen()
	if err != nil {
		return lookup, err
	}
	lookup.ReadonlyIndexes, err = d.ReadBytes(numReadonly)
	return lookup, err
}

func (msg *Message) validate() error {
	required := int(msg.Header.NumRequiredSignatures)
	if required == 0 {
		return fmt.Errorf("message requires no signatures")
	}
	if required > len(msg.AccountKeys) {
		return fmt.Errorf("message requires %d signatures but has %d account keys",
			required, len(msg.AccountKeys))
	}
	if int(msg.Header.NumReadonlySignedAccounts) >= required {
		return fmt.Errorf("readonly signed accounts %d not below required signatures %d",
			msg.Header.NumReadonlySignedAccounts, required)
	}
	if int(msg.Header.NumReadonlyUnsignedAccounts) > len(msg.AccountKeys)-required {
		return fmt.Errorf("readonly unsigned accounts %d exceed %d unsigned keys",
			msg.Header.NumReadonlyUnsignedAccounts, len(msg.AccountKeys)-required)
	}
	for i, ix := range msg.Instructions {
		if int(ix.ProgramIDIndex) >= len(msg.AccountKeys) {
			return fmt.Errorf("instruction %d program id index %d out of range", i, ix.ProgramIDIndex)
		}
	}
	return nil
}

// Marshal returns the wire form of the transaction.
func (tx *Transaction) Marshal() ([]byte, error) {
	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		return nil, fmt.Errorf("transaction carries %d signatures, message requires %d",
			len(tx.Signatures), tx.Message.Header.NumRequiredSignatures)
	}
	e := wire.NewEncoder()
	e.WriteShortVecLen(len(tx.Signatures))
	for _, sig := range tx.Signatures {
		e.WriteSignature(sig)
	}
	e.WriteBytes(tx.Message.Serialize())
	return e.Bytes(), nil
}

// Signature returns the transaction's identifying signature, the
// first one.
func (tx *Transaction) Signature() crypto.Signature {
	if len(tx.Signatures) == 0 {
		return crypto.Signature{}
	}
	return tx.Signatures[0]
}

// HasSignature reports whether sig is one of the transaction's
// signatures.
func (tx *Transaction) HasSignature(sig crypto.Signature) bool {
	for _, s := range tx.Signatures {
		if s == sig {
			return true
		}
	}
	return false
}

// VerifySignatures checks every required signature over the message
// bytes against its declared signer. The first failure is returned as
// an ErrInvalidSignature.
func (tx *Transaction) VerifySignatures() error {
	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != required {
		return fmt.Errorf("transaction carries %d signatures, message requires %d",
			len(tx.Signatures), required)
	}
	if required > len(tx.Message.AccountKeys) {
		return fmt.Errorf("message requires %d signatures but has %d account keys",
			required, len(tx.Message.AccountKeys))
	}
	msgBytes := tx.Message.Serialize()
	for i, sig := range tx.Signatures {
		if !ed25519.Verify(tx.Message.AccountKeys[i], msgBytes, sig) {
			return ErrInvalidSignature{Index: i, Signer: tx.Message.AccountKeys[i]}
		}
	}
	return nil
}
