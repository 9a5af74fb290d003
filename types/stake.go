package types

import (
	"fmt"
	"math"
	"sort"

	"github.com/0xNineteen/sol-lightnode/crypto"
	solmath "github.com/0xNineteen/sol-lightnode/libs/math"
)

// MaxTotalStake caps the permitted total of a stake snapshot.
// Keeping the total in the lower quarter of the u64 range means the
// 3*votes and 2*total products of the quorum predicate can never
// overflow.
const MaxTotalStake = math.MaxUint64 / 4

// StakeEntry is one validator's row in a snapshot.
type StakeEntry struct {
	NodeKey crypto.PubKey
	Stake   uint64
}

// StakeSet is a read-only snapshot of activated stake by validator
// node key. A run takes one snapshot and holds it for its duration;
// quorum math is only coherent against a single snapshot.
type StakeSet struct {
	stakes map[crypto.PubKey]uint64
	total  uint64
}

// NewStakeSet builds a snapshot from a stake map. Zero-stake rows are
// dropped. The summed total must not exceed MaxTotalStake.
func NewStakeSet(stakes map[crypto.PubKey]uint64) (*StakeSet, error) {
	set := &StakeSet{stakes: make(map[crypto.PubKey]uint64, len(stakes))}
	for key, stake := range stakes {
		if stake == 0 {
			continue
		}
		total, err := solmath.SafeAddUint64(set.total, stake)
		if err != nil {
			return nil, fmt.Errorf("total stake overflows: %w", err)
		}
		set.total = total
		set.stakes[key] = stake
	}
	if set.total > MaxTotalStake {
		return nil, fmt.Errorf("total stake %d exceeds limit %d", set.total, uint64(MaxTotalStake))
	}
	return set, nil
}

// TotalStake returns the summed stake of the snapshot.
func (s *StakeSet) TotalStake() uint64 {
	return s.total
}

// Len returns the number of validators with nonzero stake.
func (s *StakeSet) Len() int {
	return len(s.stakes)
}

// Stake returns the activated stake for a node key, or false when the
// key is not in the snapshot.
func (s *StakeSet) Stake(nodeKey crypto.PubKey) (uint64, bool) {
	stake, ok := s.stakes[nodeKey]
	return stake, ok
}

// Entries returns the snapshot rows, largest stake first and ties
// broken by key, so output built from a snapshot is deterministic.
func (s *StakeSet) Entries() []StakeEntry {
	entries := make([]StakeEntry, 0, len(s.stakes))
	for key, stake := range s.stakes {
		entries = append(entries, StakeEntry{NodeKey: key, Stake: stake})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stake != entries[j].Stake {
			return entries[i].Stake > entries[j].Stake
		}
		return entries[i].NodeKey.String() < entries[j].NodeKey.String()
	})
	return entries
}
