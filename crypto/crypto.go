package crypto

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	// HashSize is the size in bytes of a SHA-256 digest.
	HashSize = 32

	// PubKeySize is the size in bytes of an ed25519 public key.
	PubKeySize = 32

	// SignatureSize is the size in bytes of an ed25519 signature.
	SignatureSize = 64
)

// Hash is a 32-byte SHA-256 digest. Hashes render as base58, matching
// the encoding used by RPC nodes and explorers.
type Hash [HashSize]byte

// ZeroHash is the all-zero digest. It is the Merkle root of an empty
// item set and the accounts delta of a block with no account writes.
var ZeroHash Hash

// HashFromBytes converts a byte slice into a Hash. It errors unless
// len(bz) == HashSize.
func HashFromBytes(bz []byte) (Hash, error) {
	var h Hash
	if len(bz) != HashSize {
		return h, fmt.Errorf("invalid hash length: got %d, want %d", len(bz), HashSize)
	}
	copy(h[:], bz)
	return h, nil
}

// HashFromString parses a base58-encoded hash.
func HashFromString(s string) (Hash, error) {
	bz, err := base58.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid base58 hash %q: %w", s, err)
	}
	return HashFromBytes(bz)
}

// MustHashFromString parses a base58-encoded hash and panics on
// failure. For hard-coded constants only.
func MustHashFromString(s string) Hash {
	h, err := HashFromString(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == ZeroHash }

func (h Hash) String() string { return base58.Encode(h[:]) }

// ShortString returns a truncated base58 rendering for log lines.
func (h Hash) ShortString() string { return shortStr(h.String()) }

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromString(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// PubKey is a 32-byte ed25519 public key. A public key doubles as an
// account address on chain, so program ids are also PubKeys.
type PubKey [PubKeySize]byte

// PubKeyFromBytes converts a byte slice into a PubKey. It errors
// unless len(bz) == PubKeySize.
func PubKeyFromBytes(bz []byte) (PubKey, error) {
	var pk PubKey
	if len(bz) != PubKeySize {
		return pk, fmt.Errorf("invalid pubkey length: got %d, want %d", len(bz), PubKeySize)
	}
	copy(pk[:], bz)
	return pk, nil
}

// PubKeyFromString parses a base58-encoded public key.
func PubKeyFromString(s string) (PubKey, error) {
	bz, err := base58.Decode(s)
	if err != nil {
		return PubKey{}, fmt.Errorf("invalid base58 pubkey %q: %w", s, err)
	}
	return PubKeyFromBytes(bz)
}

// MustPubKeyFromString parses a base58-encoded public key and panics
// on failure. For hard-coded program ids only.
func MustPubKeyFromString(s string) PubKey {
	pk, err := PubKeyFromString(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func (pk PubKey) Bytes() []byte { return pk[:] }

func (pk PubKey) String() string { return base58.Encode(pk[:]) }

func (pk PubKey) ShortString() string { return shortStr(pk.String()) }

func (pk PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PubKey) UnmarshalText(text []byte) error {
	parsed, err := PubKeyFromString(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Signature is a 64-byte ed25519 signature. The first signature of a
// transaction is also the transaction's identifier.
type Signature [SignatureSize]byte

// SignatureFromBytes converts a byte slice into a Signature. It
// errors unless len(bz) == SignatureSize.
func SignatureFromBytes(bz []byte) (Signature, error) {
	var sig Signature
	if len(bz) != SignatureSize {
		return sig, fmt.Errorf("invalid signature length: got %d, want %d", len(bz), SignatureSize)
	}
	copy(sig[:], bz)
	return sig, nil
}

// SignatureFromString parses a base58-encoded signature.
func SignatureFromString(s string) (Signature, error) {
	bz, err := base58.Decode(s)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid base58 signature %q: %w", s, err)
	}
	return SignatureFromBytes(bz)
}

func (sig Signature) Bytes() []byte { return sig[:] }

func (sig Signature) IsZero() bool { return sig == Signature{} }

func (sig Signature) String() string { return base58.Encode(sig[:]) }

func (sig Signature) ShortString() string { return shortStr(sig.String()) }

func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

func (sig *Signature) UnmarshalText(text []byte) error {
	parsed, err := SignatureFromString(string(text))
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}

func shortStr(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
