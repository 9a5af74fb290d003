// Package solhash exposes the chain's canonical hash function,
// SHA-256, behind the conventions the rest of the tree relies on.
package solhash

import (
	"crypto/sha256"
	"hash"

	"github.com/0xNineteen/sol-lightnode/crypto"
)

const (
	Size      = sha256.Size
	BlockSize = sha256.BlockSize
)

// New returns a new hash.Hash computing SHA-256.
func New() hash.Hash {
	return sha256.New()
}

// Sum returns the SHA-256 digest of bz.
func Sum(bz []byte) crypto.Hash {
	return sha256.Sum256(bz)
}

// Sumv returns the SHA-256 digest of the concatenation of the given
// chunks, without materializing the concatenation.
func Sumv(chunks ...[]byte) crypto.Hash {
	h := sha256.New()
	for _, chunk := range chunks {
		_, _ = h.Write(chunk)
	}
	var out crypto.Hash
	copy(out[:], h.Sum(nil))
	return out
}
