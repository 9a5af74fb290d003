package light_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/internal/test/factory"
	"github.com/0xNineteen/sol-lightnode/libs/log"
	"github.com/0xNineteen/sol-lightnode/light"
	"github.com/0xNineteen/sol-lightnode/light/provider"
	"github.com/0xNineteen/sol-lightnode/light/provider/mocks"
	"github.com/0xNineteen/sol-lightnode/types"
)

const verifySlot = uint64(1640)

// verifyFixture is a complete synthetic claim: a slot whose chain
// genuinely replays, a target transaction inside it, and a stake
// distribution voting on the recomputed bank hash.
type verifyFixture struct {
	vals     []factory.Validator
	header   *types.BlockHeader
	tx       types.Transaction
	bankHash crypto.Hash
}

func newVerifyFixture(t *testing.T) *verifyFixture {
	t.Helper()
	start := factory.Hash("genesis")
	tx := factory.TransferTransaction(t, "probe", 5000)
	chain := factory.NewChainBuilder(start).
		Tick(4).
		Tick(4).
		Tick(4).
		Transactions(tx)
	header := chain.Header(start, 1)

	last, ok := header.LastEntryHash()
	require.True(t, ok)
	bankHash := light.ComputeBankHash(header.ParentHash, header.AccountsDeltaHash,
		header.SignatureCount, last)

	return &verifyFixture{
		vals:     factory.Validators(10, 10),
		header:   header,
		tx:       tx,
		bankHash: bankHash,
	}
}

// provider mocks a node serving the fixture: the header at
// verifySlot and a 2-slot vote window where voters vote for the
// fixture's bank hash and the rest vote for a fork.
func (f *verifyFixture) provider(t *testing.T, voters int) *mocks.Provider {
	t.Helper()
	p := &mocks.Provider{}
	p.On("TransactionSlot", mock.Anything, f.tx.Signatures[0]).Return(verifySlot, nil)
	p.On("BlockHeader", mock.Anything, verifySlot, mock.Anything).Return(f.header, nil)
	p.On("StakeSnapshot", mock.Anything).Return(factory.StakeSet(t, f.vals), nil)
	p.On("BlockTransactions", mock.Anything, verifySlot).
		Return(append(factory.VoteBlock(t, f.vals[:voters], verifySlot, f.bankHash), f.tx), nil)
	p.On("BlockTransactions", mock.Anything, verifySlot+1).
		Return(factory.VoteBlock(t, f.vals[voters:], verifySlot, factory.Hash("fork")), nil)
	return p
}

func TestVerifySlotEndToEnd(t *testing.T) {
	f := newVerifyFixture(t)
	c, err := light.NewClient(f.provider(t, 7), light.Window(2),
		light.Logger(log.NewTestingLogger(t)))
	require.NoError(t, err)

	res, err := c.VerifySlot(context.Background(), verifySlot, &f.tx.Signatures[0])
	require.NoError(t, err)

	assert.True(t, res.Verified)
	assert.Equal(t, light.ReasonVerified, res.Reason)
	assert.Equal(t, f.bankHash, res.BankHash)
	assert.Equal(t, 3, res.InclusionIndex)
	assert.Equal(t, 4, res.Entries)
	assert.Equal(t, uint64(70), res.VotedStake)
	assert.Equal(t, uint64(100), res.TotalStake)
}

func TestVerifySlotQuorumNotReached(t *testing.T) {
	f := newVerifyFixture(t)
	c, err := light.NewClient(f.provider(t, 6), light.Window(2))
	require.NoError(t, err)

	res, err := c.VerifySlot(context.Background(), verifySlot, &f.tx.Signatures[0])
	require.NoError(t, err)

	// 60 of 100 is short of two thirds: a known negative verdict,
	// not an error.
	assert.False(t, res.Verified)
	assert.Equal(t, light.ReasonQuorumNotReached, res.Reason)
	assert.Equal(t, uint64(60), res.VotedStake)
}

func TestVerifySlotInvalidVoteDropsQuorum(t *testing.T) {
	f := newVerifyFixture(t)

	// 7 of 10 vote for the bank hash, but one of those votes carries
	// a forged signature and must not be credited.
	votes := factory.VoteBlock(t, f.vals[:7], verifySlot, f.bankHash)
	votes[0].Signatures[0][3] ^= 0x01

	p := &mocks.Provider{}
	p.On("BlockHeader", mock.Anything, verifySlot, mock.Anything).Return(f.header, nil)
	p.On("StakeSnapshot", mock.Anything).Return(factory.StakeSet(t, f.vals), nil)
	p.On("BlockTransactions", mock.Anything, verifySlot).Return(append(votes, f.tx), nil)
	p.On("BlockTransactions", mock.Anything, verifySlot+1).
		Return(factory.VoteBlock(t, f.vals[7:], verifySlot, factory.Hash("fork")), nil)

	c, err := light.NewClient(p, light.Window(2))
	require.NoError(t, err)

	res, err := c.VerifySlot(context.Background(), verifySlot, &f.tx.Signatures[0])
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Equal(t, light.ReasonQuorumNotReached, res.Reason)
	assert.Equal(t, uint64(60), res.VotedStake)
}

func TestVerifySlotWithoutTarget(t *testing.T) {
	f := newVerifyFixture(t)
	c, err := light.NewClient(f.provider(t, 7), light.Window(2))
	require.NoError(t, err)

	res, err := c.VerifySlot(context.Background(), verifySlot, nil)
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, -1, res.InclusionIndex)
}

func TestVerifyTransactionResolvesSlot(t *testing.T) {
	f := newVerifyFixture(t)
	c, err := light.NewClient(f.provider(t, 7), light.Window(2))
	require.NoError(t, err)

	res, err := c.VerifyTransaction(context.Background(), f.tx.Signatures[0])
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, verifySlot, res.Slot)
}

func TestVerifySlotBrokenChain(t *testing.T) {
	f := newVerifyFixture(t)
	f.header.Entries[1].Hash[0] ^= 0x01

	c, err := light.NewClient(f.provider(t, 7), light.Window(2))
	require.NoError(t, err)

	_, err = c.VerifySlot(context.Background(), verifySlot, &f.tx.Signatures[0])
	var chainErr light.ErrChainVerification
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, 1, chainErr.Index)
}

func TestVerifySlotSignatureNotFound(t *testing.T) {
	f := newVerifyFixture(t)

	absent := factory.TransferTransaction(t, "absent", 5000)
	sig := absent.Signatures[0]

	p := &mocks.Provider{}
	p.On("BlockHeader", mock.Anything, verifySlot, mock.Anything).Return(f.header, nil)
	c, err := light.NewClient(p, light.Window(2))
	require.NoError(t, err)

	_, err = c.VerifySlot(context.Background(), verifySlot, &sig)
	var notFound light.ErrSignatureNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, sig, notFound.Signature)
}

func TestVerifySlotEmptyHeader(t *testing.T) {
	p := &mocks.Provider{}
	p.On("BlockHeader", mock.Anything, verifySlot, mock.Anything).
		Return(&types.BlockHeader{StartBlockhash: factory.Hash("start")}, nil)

	c, err := light.NewClient(p, light.Window(2))
	require.NoError(t, err)

	_, err = c.VerifySlot(context.Background(), verifySlot, nil)
	require.ErrorIs(t, err, light.ErrNoEntries)
}

func TestVerifySlotRetriesPendingHeader(t *testing.T) {
	f := newVerifyFixture(t)

	pending := &mocks.Provider{}
	pending.On("BlockHeader", mock.Anything, verifySlot, mock.Anything).
		Return(nil, provider.ErrNotAvailable).Twice()
	pending.On("BlockHeader", mock.Anything, verifySlot, mock.Anything).
		Return(f.header, nil)
	pending.On("StakeSnapshot", mock.Anything).Return(factory.StakeSet(t, f.vals), nil)
	pending.On("BlockTransactions", mock.Anything, verifySlot).
		Return(append(factory.VoteBlock(t, f.vals[:7], verifySlot, f.bankHash), f.tx), nil)
	pending.On("BlockTransactions", mock.Anything, verifySlot+1).
		Return(factory.VoteBlock(t, f.vals[7:], verifySlot, factory.Hash("fork")), nil)

	c, err := light.NewClient(pending, light.Window(2), light.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	res, err := c.VerifySlot(context.Background(), verifySlot, &f.tx.Signatures[0])
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

func TestNewClientValidation(t *testing.T) {
	p := &mocks.Provider{}
	_, err := light.NewClient(p, light.Window(0))
	assert.Error(t, err)
	_, err = light.NewClient(p, light.RetryInterval(0))
	assert.Error(t, err)
}
