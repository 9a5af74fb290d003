// Package poh implements the proof-of-history hash chain: a
// sequential SHA-256 chain that ticks empty iterations and records
// content by mixing a digest into the running state.
package poh

import (
	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/solhash"
)

// Poh is a running hash chain state.
type Poh struct {
	hash      crypto.Hash
	numHashes uint64
}

// New starts a chain at the given hash.
func New(start crypto.Hash) *Poh {
	return &Poh{hash: start}
}

// Current returns the chain state and the iterations applied since
// the chain last closed an entry.
func (p *Poh) Current() (crypto.Hash, uint64) {
	return p.hash, p.numHashes
}

// Hash advances the chain by n plain iterations.
func (p *Poh) Hash(n uint64) {
	for i := uint64(0); i < n; i++ {
		p.hash = solhash.Sum(p.hash[:])
	}
	p.numHashes += n
}

// Record mixes a digest into the chain, closing the current entry.
// It returns the entry hash and the iteration count the entry
// consumed, the mixing step included.
func (p *Poh) Record(mixin crypto.Hash) (crypto.Hash, uint64) {
	p.hash = solhash.Sumv(p.hash[:], mixin[:])
	numHashes := p.numHashes + 1
	p.numHashes = 0
	return p.hash, numHashes
}

// Tick advances the chain one plain iteration and closes the current
// entry. It returns the entry hash and the iteration count the entry
// consumed, the tick step included.
func (p *Poh) Tick() (crypto.Hash, uint64) {
	p.hash = solhash.Sum(p.hash[:])
	numHashes := p.numHashes + 1
	p.numHashes = 0
	return p.hash, numHashes
}

// NextHash replays the chain from start over numHashes iterations,
// mixing in mixin on the final step when one is given.
//
// With a mixin, the last of the numHashes iterations is the mixing
// step; numHashes == 0 still applies exactly one mixing step. Without
// a mixin, numHashes == 0 is the identity.
func NextHash(start crypto.Hash, numHashes uint64, mixin *crypto.Hash) crypto.Hash {
	if numHashes == 0 && mixin == nil {
		return start
	}

	hash := start
	for i := uint64(1); i < numHashes; i++ {
		hash = solhash.Sum(hash[:])
	}
	if mixin != nil {
		return solhash.Sumv(hash[:], mixin[:])
	}
	return solhash.Sum(hash[:])
}
