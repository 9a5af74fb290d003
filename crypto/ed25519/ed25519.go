package ed25519

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	voied25519 "github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/solhash"
)

const (
	// PrivKeySize is the size in bytes of a private key: the 32-byte
	// seed followed by the 32-byte public key, the layout keypair
	// files use.
	PrivKeySize = 64

	// SeedSize is the size in bytes of a private key seed.
	SeedSize = 32
)

// PrivKey is an ed25519 private key in seed-then-pubkey layout.
type PrivKey [PrivKeySize]byte

// GenPrivKey generates a new private key from the OS entropy source.
func GenPrivKey() PrivKey {
	return genPrivKey(rand.Reader)
}

func genPrivKey(rng io.Reader) PrivKey {
	_, priv, err := voied25519.GenerateKey(rng)
	if err != nil {
		panic(fmt.Sprintf("generating ed25519 key: %v", err))
	}
	var privKey PrivKey
	copy(privKey[:], priv)
	return privKey
}

// GenPrivKeyFromSecret hashes the secret into a seed and derives a
// private key from it. The same secret always yields the same key, so
// only use this with high-entropy secrets or in tests.
func GenPrivKeyFromSecret(secret []byte) PrivKey {
	seed := solhash.Sum(secret)
	var privKey PrivKey
	copy(privKey[:], voied25519.NewKeyFromSeed(seed[:]))
	return privKey
}

// PrivKeyFromBytes converts a byte slice into a PrivKey, checking
// that the embedded public key matches the seed.
func PrivKeyFromBytes(bz []byte) (PrivKey, error) {
	var privKey PrivKey
	if len(bz) != PrivKeySize {
		return privKey, fmt.Errorf("invalid private key length: got %d, want %d", len(bz), PrivKeySize)
	}
	derived := voied25519.NewKeyFromSeed(bz[:SeedSize])
	if !bytes.Equal(derived[SeedSize:], bz[SeedSize:]) {
		return privKey, fmt.Errorf("private key public half does not match its seed")
	}
	copy(privKey[:], bz)
	return privKey, nil
}

func (privKey PrivKey) Bytes() []byte { return privKey[:] }

// PubKey returns the public half of the key.
func (privKey PrivKey) PubKey() crypto.PubKey {
	var pubKey crypto.PubKey
	copy(pubKey[:], privKey[SeedSize:])
	return pubKey
}

// Sign produces a signature on msg.
func (privKey PrivKey) Sign(msg []byte) (crypto.Signature, error) {
	raw := voied25519.Sign(voied25519.PrivateKey(privKey[:]), msg)
	return crypto.SignatureFromBytes(raw)
}

// Verify reports whether sig is a valid signature by pubKey on msg.
func Verify(pubKey crypto.PubKey, msg []byte, sig crypto.Signature) bool {
	return voied25519.Verify(voied25519.PublicKey(pubKey[:]), msg, sig[:])
}
