package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xNineteen/sol-lightnode/internal/test/factory"
	"github.com/0xNineteen/sol-lightnode/types"
	"github.com/0xNineteen/sol-lightnode/wire"
)

func TestParseVote(t *testing.T) {
	bankHash := factory.Hash("bank")
	ts := int64(1693000000)
	data := types.EncodeVote([]uint64{10, 11, 12}, bankHash, &ts)

	vi, err := types.ParseVoteInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, types.VoteKindVote, vi.Kind)
	require.True(t, vi.HasBankHash())
	assert.Equal(t, bankHash, *vi.BankHash)
	assert.Equal(t, uint64(12), vi.LastVotedSlot)
	require.NotNil(t, vi.Timestamp)
	assert.Equal(t, ts, *vi.Timestamp)
}

func TestParseVoteWithoutTimestamp(t *testing.T) {
	data := types.EncodeVote([]uint64{7}, factory.Hash("bank"), nil)
	vi, err := types.ParseVoteInstruction(data)
	require.NoError(t, err)
	assert.Nil(t, vi.Timestamp)
}

func TestParseUpdateVoteState(t *testing.T) {
	bankHash := factory.Hash("bank")
	root := uint64(90)
	lockouts := []types.Lockout{{Slot: 95, ConfirmationCount: 3}, {Slot: 100, ConfirmationCount: 1}}
	data := types.EncodeUpdateVoteState(lockouts, &root, bankHash, nil)

	vi, err := types.ParseVoteInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, types.VoteKindUpdateVoteState, vi.Kind)
	require.True(t, vi.HasBankHash())
	assert.Equal(t, bankHash, *vi.BankHash)
	assert.Equal(t, uint64(100), vi.LastVotedSlot)
}

func TestParseCompactUpdateVoteState(t *testing.T) {
	bankHash := factory.Hash("bank")
	root := uint64(1000)
	lockouts := []types.Lockout{{Slot: 1005, ConfirmationCount: 4}, {Slot: 1010, ConfirmationCount: 2}}
	data, err := types.EncodeCompactUpdateVoteState(lockouts, &root, bankHash, nil)
	require.NoError(t, err)

	vi, err := types.ParseVoteInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, types.VoteKindCompactUpdateVoteState, vi.Kind)
	require.True(t, vi.HasBankHash())
	assert.Equal(t, bankHash, *vi.BankHash)
	assert.Equal(t, uint64(1010), vi.LastVotedSlot)
}

func TestParseCompactUpdateVoteStateNoRoot(t *testing.T) {
	bankHash := factory.Hash("bank")
	lockouts := []types.Lockout{{Slot: 5, ConfirmationCount: 1}}
	data, err := types.EncodeCompactUpdateVoteState(lockouts, nil, bankHash, nil)
	require.NoError(t, err)

	vi, err := types.ParseVoteInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), vi.LastVotedSlot)
}

func TestParseIgnoredVariants(t *testing.T) {
	// Variants without a bank hash payload, and discriminants newer
	// than this code, must parse as "nothing to tally".
	for _, kind := range []uint32{0, 1, 3, 4, 5, 7, 10, 11, 14, 99} {
		e := wire.NewEncoder()
		e.WriteU32(kind)
		e.WriteU64(42) // arbitrary payload the parser must not touch

		vi, err := types.ParseVoteInstruction(e.Bytes())
		require.NoError(t, err, "kind %d", kind)
		assert.False(t, vi.HasBankHash(), "kind %d", kind)
	}
}

func TestParseRejectsTruncatedVote(t *testing.T) {
	data := types.EncodeVote([]uint64{10}, factory.Hash("bank"), nil)
	for cut := 5; cut < len(data); cut += 7 {
		_, err := types.ParseVoteInstruction(data[:cut])
		assert.Error(t, err, "cut %d", cut)
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	data := types.EncodeVote([]uint64{10}, factory.Hash("bank"), nil)
	_, err := types.ParseVoteInstruction(append(data, 0xEE))
	assert.Error(t, err)
}

func TestParseSwitchVariantConsumesProof(t *testing.T) {
	bankHash := factory.Hash("bank")
	inner := types.EncodeVote([]uint64{10}, bankHash, nil)

	// Rewrite the discriminant to VoteSwitch and append a proof hash.
	e := wire.NewEncoder()
	e.WriteU32(uint32(types.VoteKindVoteSwitch))
	e.WriteBytes(inner[4:])
	proof := factory.Hash("switch-proof")
	e.WriteHash(proof)

	vi, err := types.ParseVoteInstruction(e.Bytes())
	require.NoError(t, err)
	assert.Equal(t, types.VoteKindVoteSwitch, vi.Kind)
	require.True(t, vi.HasBankHash())
	assert.Equal(t, bankHash, *vi.BankHash)
}

func TestCompactEncodeRejectsBadLockouts(t *testing.T) {
	bankHash := factory.Hash("bank")
	root := uint64(100)

	_, err := types.EncodeCompactUpdateVoteState(
		[]types.Lockout{{Slot: 90, ConfirmationCount: 1}}, &root, bankHash, nil)
	assert.Error(t, err, "slot below root")

	_, err = types.EncodeCompactUpdateVoteState(
		[]types.Lockout{{Slot: 101, ConfirmationCount: 300}}, &root, bankHash, nil)
	assert.Error(t, err, "confirmation count exceeds u8")
}
