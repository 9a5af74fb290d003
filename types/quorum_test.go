package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xNineteen/sol-lightnode/internal/test/factory"
	"github.com/0xNineteen/sol-lightnode/types"
)

func TestIsSupermajority(t *testing.T) {
	cases := []struct {
		votes, total uint64
		want         bool
	}{
		{67, 100, true},  // 3*67 = 201 >= 200
		{66, 100, false}, // 198 < 200
		{2, 3, true},
		{1, 3, false},
		{0, 3, false},
		{3, 3, true},
		{100, 100, true},
		{0, 0, true}, // degenerate; callers reject zero total first
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, types.IsSupermajority(tc.votes, tc.total),
			"votes=%d total=%d", tc.votes, tc.total)
	}
}

func TestIsSupermajorityAtStakeCap(t *testing.T) {
	// The products must not wrap at the largest permitted total.
	total := uint64(types.MaxTotalStake)
	assert.True(t, types.IsSupermajority(total, total))
	assert.False(t, types.IsSupermajority(total/3, total))
}

func TestVoteTallyAccumulates(t *testing.T) {
	tally := types.NewVoteTally()
	hashA := factory.Hash("a")
	hashB := factory.Hash("b")
	v1 := factory.PrivKey("v1").PubKey()
	v2 := factory.PrivKey("v2").PubKey()

	added, err := tally.Add(v1, hashA, 10)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = tally.Add(v2, hashA, 20)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = tally.Add(v1, hashB, 10)
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, uint64(30), tally.StakeFor(hashA))
	assert.Equal(t, uint64(10), tally.StakeFor(hashB))
	assert.Equal(t, uint64(0), tally.StakeFor(factory.Hash("unseen")))
	assert.Equal(t, 2, tally.Len())
}

func TestVoteTallyDeduplicates(t *testing.T) {
	tally := types.NewVoteTally()
	hash := factory.Hash("a")
	voter := factory.PrivKey("v1").PubKey()

	added, err := tally.Add(voter, hash, 10)
	require.NoError(t, err)
	assert.True(t, added)

	// The same voter repeating the same vote must not double its
	// stake, however many times it lands.
	for i := 0; i < 3; i++ {
		added, err = tally.Add(voter, hash, 10)
		require.NoError(t, err)
		assert.False(t, added)
	}
	assert.Equal(t, uint64(10), tally.StakeFor(hash))
}

func TestVoteTallyOverflow(t *testing.T) {
	tally := types.NewVoteTally()
	hash := factory.Hash("a")

	_, err := tally.Add(factory.PrivKey("v1").PubKey(), hash, ^uint64(0))
	require.NoError(t, err)
	_, err = tally.Add(factory.PrivKey("v2").PubKey(), hash, 1)
	assert.Error(t, err)
}

func TestVoteTallyHashesOrdering(t *testing.T) {
	tally := types.NewVoteTally()
	hashA := factory.Hash("a")
	hashB := factory.Hash("b")

	_, err := tally.Add(factory.PrivKey("v1").PubKey(), hashA, 5)
	require.NoError(t, err)
	_, err = tally.Add(factory.PrivKey("v2").PubKey(), hashB, 50)
	require.NoError(t, err)

	hashes := tally.Hashes()
	require.Len(t, hashes, 2)
	assert.Equal(t, hashB, hashes[0])
	assert.Equal(t, hashA, hashes[1])
}
