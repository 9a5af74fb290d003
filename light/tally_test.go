package light_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/0xNineteen/sol-lightnode/internal/test/factory"
	"github.com/0xNineteen/sol-lightnode/light"
	"github.com/0xNineteen/sol-lightnode/light/provider"
	"github.com/0xNineteen/sol-lightnode/light/provider/mocks"
	"github.com/0xNineteen/sol-lightnode/types"
)

const tallyStart = uint64(1640)

// newTallyClient wires a mock provider into a client with a window
// of len(blocks) slots starting at tallyStart.
func newTallyClient(t *testing.T, vals []factory.Validator, blocks [][]types.Transaction, opts ...light.Option) (*light.Client, *mocks.Provider) {
	t.Helper()
	p := &mocks.Provider{}
	p.On("StakeSnapshot", mock.Anything).Return(factory.StakeSet(t, vals), nil)
	for i, txs := range blocks {
		p.On("BlockTransactions", mock.Anything, tallyStart+uint64(i)).Return(txs, nil)
	}
	opts = append([]light.Option{light.Window(uint64(len(blocks)))}, opts...)
	c, err := light.NewClient(p, opts...)
	require.NoError(t, err)
	return c, p
}

func TestTallyVotes(t *testing.T) {
	vals := factory.Validators(10, 10)
	bankHash := factory.Hash("bank")
	otherHash := factory.Hash("fork")

	blocks := [][]types.Transaction{
		factory.VoteBlock(t, vals[:4], tallyStart, bankHash),
		factory.VoteBlock(t, vals[4:7], tallyStart, bankHash),
		append(factory.VoteBlock(t, vals[7:9], tallyStart, otherHash),
			factory.TransferTransaction(t, "noise", 5000)),
	}
	c, _ := newTallyClient(t, vals, blocks)

	res, err := c.TallyVotes(context.Background(), tallyStart)
	require.NoError(t, err)

	assert.Equal(t, uint64(100), res.TotalStake)
	assert.Equal(t, uint64(70), res.StakeFor(bankHash))
	assert.Equal(t, uint64(20), res.StakeFor(otherHash))
	assert.Equal(t, 9, res.VotesCounted)
	assert.True(t, res.HasSupermajority(bankHash))
	assert.False(t, res.HasSupermajority(otherHash))
}

func TestTallyDeduplicatesRepeatedVotes(t *testing.T) {
	vals := factory.Validators(3, 10)
	bankHash := factory.Hash("bank")

	// The same validator's vote lands in every block of the window.
	blocks := [][]types.Transaction{
		factory.VoteBlock(t, vals[:1], tallyStart, bankHash),
		factory.VoteBlock(t, vals[:1], tallyStart, bankHash),
		factory.VoteBlock(t, vals[:1], tallyStart, bankHash),
	}
	c, _ := newTallyClient(t, vals, blocks)

	res, err := c.TallyVotes(context.Background(), tallyStart)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), res.StakeFor(bankHash))
	assert.Equal(t, 1, res.VotesCounted)
	assert.Equal(t, 2, res.VotesSkipped)
}

func TestTallyExcludesInvalidSignature(t *testing.T) {
	vals := factory.Validators(3, 10)
	bankHash := factory.Hash("bank")

	good := factory.VoteBlock(t, vals[:2], tallyStart, bankHash)
	bad := factory.VoteTransaction(t, vals[2], tallyStart, bankHash)
	bad.Signatures[0][5] ^= 0x01

	blocks := [][]types.Transaction{append(good, bad)}
	c, _ := newTallyClient(t, vals, blocks)

	res, err := c.TallyVotes(context.Background(), tallyStart)
	require.NoError(t, err)
	// The forged vote contributes nothing; the run continues.
	assert.Equal(t, uint64(20), res.StakeFor(bankHash))
	assert.Equal(t, 2, res.VotesCounted)
	assert.Equal(t, 1, res.VotesSkipped)
}

func TestTallySkipsUnknownVoter(t *testing.T) {
	vals := factory.Validators(2, 50)
	outsider := factory.Validator{Key: factory.PrivKey("outsider"), Stake: 0}
	bankHash := factory.Hash("bank")

	blocks := [][]types.Transaction{
		append(factory.VoteBlock(t, vals, tallyStart, bankHash),
			factory.VoteTransaction(t, outsider, tallyStart, bankHash)),
	}
	c, _ := newTallyClient(t, vals, blocks)

	res, err := c.TallyVotes(context.Background(), tallyStart)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.StakeFor(bankHash))
	assert.Equal(t, 1, res.VotesSkipped)
}

func TestTallyInconclusiveOnEmptyBlock(t *testing.T) {
	vals := factory.Validators(3, 10)
	bankHash := factory.Hash("bank")

	blocks := [][]types.Transaction{
		factory.VoteBlock(t, vals, tallyStart, bankHash),
		{}, // a hole in the window
		factory.VoteBlock(t, vals, tallyStart, bankHash),
	}
	c, _ := newTallyClient(t, vals, blocks)

	_, err := c.TallyVotes(context.Background(), tallyStart)
	var inconclusive light.ErrInconclusiveScan
	require.ErrorAs(t, err, &inconclusive)
	assert.Equal(t, tallyStart+1, inconclusive.Slot)
}

func TestTallyInconclusiveOnSkippedSlot(t *testing.T) {
	vals := factory.Validators(3, 10)
	bankHash := factory.Hash("bank")

	p := &mocks.Provider{}
	p.On("StakeSnapshot", mock.Anything).Return(factory.StakeSet(t, vals), nil)
	p.On("BlockTransactions", mock.Anything, tallyStart).
		Return(factory.VoteBlock(t, vals, tallyStart, bankHash), nil)
	p.On("BlockTransactions", mock.Anything, tallyStart+1).
		Return(nil, provider.ErrBlockSkipped)

	c, err := light.NewClient(p, light.Window(2))
	require.NoError(t, err)

	_, err = c.TallyVotes(context.Background(), tallyStart)
	var inconclusive light.ErrInconclusiveScan
	require.ErrorAs(t, err, &inconclusive)
	assert.Equal(t, tallyStart+1, inconclusive.Slot)
}

func TestTallyZeroTotalStake(t *testing.T) {
	p := &mocks.Provider{}
	empty, err := types.NewStakeSet(nil)
	require.NoError(t, err)
	p.On("StakeSnapshot", mock.Anything).Return(empty, nil)

	c, err := light.NewClient(p, light.Window(1))
	require.NoError(t, err)

	_, err = c.TallyVotes(context.Background(), tallyStart)
	require.ErrorIs(t, err, types.ErrZeroTotalStake)
}

func TestTallyParallelMatchesSequential(t *testing.T) {
	vals := factory.Validators(12, 5)
	bankHash := factory.Hash("bank")

	blocks := make([][]types.Transaction, 8)
	for i := range blocks {
		blocks[i] = factory.VoteBlock(t, vals[i:i+3], tallyStart, bankHash)
	}

	seqClient, _ := newTallyClient(t, vals, blocks)
	parClient, _ := newTallyClient(t, vals, blocks, light.FetchWorkers(4))

	seq, err := seqClient.TallyVotes(context.Background(), tallyStart)
	require.NoError(t, err)
	par, err := parClient.TallyVotes(context.Background(), tallyStart)
	require.NoError(t, err)

	assert.Equal(t, seq.StakeFor(bankHash), par.StakeFor(bankHash))
	assert.Equal(t, seq.VotesCounted, par.VotesCounted)
	assert.Equal(t, seq.VotesSkipped, par.VotesSkipped)
	assert.Equal(t, seq.TotalStake, par.TotalStake)
}

func TestTallyRetriesUntilContextEnds(t *testing.T) {
	vals := factory.Validators(1, 10)

	p := &mocks.Provider{}
	p.On("StakeSnapshot", mock.Anything).Return(factory.StakeSet(t, vals), nil)
	p.On("BlockTransactions", mock.Anything, tallyStart).
		Return(nil, provider.ErrNotAvailable)

	c, err := light.NewClient(p, light.Window(1), light.RetryInterval(5*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_, err = c.TallyVotes(ctx, tallyStart)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// More than one attempt must have been made before giving up.
	assert.Greater(t, len(p.Calls), 2)
}
