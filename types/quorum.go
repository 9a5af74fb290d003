package types

import (
	"errors"
	"fmt"
	"sort"

	"github.com/0xNineteen/sol-lightnode/crypto"
	solmath "github.com/0xNineteen/sol-lightnode/libs/math"
)

// ErrZeroTotalStake rejects quorum decisions against an empty stake
// snapshot. With no stake there is nothing a supermajority could be
// a majority of.
var ErrZeroTotalStake = errors.New("total stake is zero")

// IsSupermajority reports whether votes reaches the two-thirds
// supermajority of total: 3*votes >= 2*total, in exact integer
// arithmetic. Floating point would round at exactly the boundary the
// predicate exists to decide. Inputs must not exceed MaxTotalStake.
func IsSupermajority(votes, total uint64) bool {
	return 3*votes >= 2*total
}

// VoteTally accumulates stake behind claimed bank hashes. Each
// (voter, hash) pair is credited at most once; a validator repeating
// its vote must not be double counted, or replayed gossip could forge
// a supermajority.
type VoteTally struct {
	stakeByHash map[crypto.Hash]uint64
	seen        map[voteKey]struct{}
}

type voteKey struct {
	voter crypto.PubKey
	hash  crypto.Hash
}

func NewVoteTally() *VoteTally {
	return &VoteTally{
		stakeByHash: make(map[crypto.Hash]uint64),
		seen:        make(map[voteKey]struct{}),
	}
}

// Add credits the voter's stake to the given bank hash. It returns
// false without crediting when this (voter, hash) pair was already
// counted.
func (t *VoteTally) Add(voter crypto.PubKey, hash crypto.Hash, stake uint64) (bool, error) {
	key := voteKey{voter: voter, hash: hash}
	if _, dup := t.seen[key]; dup {
		return false, nil
	}
	sum, err := solmath.SafeAddUint64(t.stakeByHash[hash], stake)
	if err != nil {
		return false, fmt.Errorf("tally for %s overflows: %w", hash, err)
	}
	t.seen[key] = struct{}{}
	t.stakeByHash[hash] = sum
	return true, nil
}

// StakeFor returns the stake tallied behind a bank hash.
func (t *VoteTally) StakeFor(hash crypto.Hash) uint64 {
	return t.stakeByHash[hash]
}

// Len returns the number of distinct bank hashes with tallied stake.
func (t *VoteTally) Len() int {
	return len(t.stakeByHash)
}

// Hashes returns the tallied bank hashes, most stake first and ties
// broken by hash.
func (t *VoteTally) Hashes() []crypto.Hash {
	hashes := make([]crypto.Hash, 0, len(t.stakeByHash))
	for hash := range t.stakeByHash {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		si, sj := t.stakeByHash[hashes[i]], t.stakeByHash[hashes[j]]
		if si != sj {
			return si > sj
		}
		return hashes[i].String() < hashes[j].String()
	})
	return hashes
}
