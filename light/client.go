package light

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/libs/log"
	"github.com/0xNineteen/sol-lightnode/light/provider"
	"github.com/0xNineteen/sol-lightnode/types"
)

const (
	// DefaultWindow is the number of slots scanned for votes on a
	// verified slot's bank hash.
	DefaultWindow = 40

	// DefaultRetryInterval is the poll interval while waiting for
	// data that is not yet available at the node.
	DefaultRetryInterval = 500 * time.Millisecond
)

// Option configures a Client.
type Option func(*Client)

// Window sets the vote scan window, in slots.
func Window(w uint64) Option {
	return func(c *Client) { c.window = w }
}

// RetryInterval sets the poll interval for not-yet-available data.
func RetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

// FetchWorkers sets the number of concurrent block fetches during a
// vote scan. One worker fetches sequentially.
func FetchWorkers(n int) Option {
	return func(c *Client) { c.fetchWorkers = n }
}

// Logger sets the client logger.
func Logger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics the client instruments itself with.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client verifies claims about a proof-of-history chain against data
// served by an untrusted provider. One Client runs any number of
// verifications; each run is stateless and trusts nothing fetched in
// a previous run.
//
// The client retries data the provider reports as not yet available,
// at a fixed interval and without an attempt bound. The caller's
// context carries the deadline.
type Client struct {
	provider provider.Provider

	window        uint64
	retryInterval time.Duration
	fetchWorkers  int

	logger  log.Logger
	metrics *Metrics
}

// NewClient returns a verification client over the given provider.
func NewClient(p provider.Provider, opts ...Option) (*Client, error) {
	c := &Client{
		provider:      p,
		window:        DefaultWindow,
		retryInterval: DefaultRetryInterval,
		fetchWorkers:  1,
		logger:        log.NewNopLogger(),
		metrics:       NopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.window == 0 {
		return nil, errors.New("light: vote window must be at least one slot")
	}
	if c.retryInterval <= 0 {
		return nil, errors.New("light: retry interval must be positive")
	}
	if c.fetchWorkers < 1 {
		c.fetchWorkers = 1
	}
	return c, nil
}

// Reasons a verification reports with its verdict.
const (
	// ReasonVerified marks a claim that passed every check.
	ReasonVerified = "verified"
	// ReasonQuorumNotReached marks a sound chain whose bank hash did
	// not gather a supermajority of the snapshot stake. This is the
	// only reason a Result carries with Verified == false.
	ReasonQuorumNotReached = "quorum not reached"
)

// Result is the evidence of one verification run.
type Result struct {
	Slot      uint64
	Signature crypto.Signature

	// BankHash is the state commitment recomputed from the verified
	// entry chain, the hash votes are tallied against.
	BankHash      crypto.Hash
	LastEntryHash crypto.Hash
	Entries       int

	// InclusionIndex is the index of the entry proven to contain the
	// target signature, or -1 when no signature was tracked.
	InclusionIndex int

	TotalStake uint64
	VotedStake uint64

	Verified bool
	Reason   string
}

// VerifyTransaction resolves the slot a confirmed transaction landed
// in and verifies the (slot, signature) claim. It blocks, retrying,
// until the node knows the transaction or ctx ends.
func (c *Client) VerifyTransaction(ctx context.Context, sig crypto.Signature) (*Result, error) {
	var slot uint64
	err := c.withRetry(ctx, "transaction_slot", func(ctx context.Context) error {
		var err error
		slot, err = c.provider.TransactionSlot(ctx, sig)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("transaction landed", "signature", sig.ShortString(), "slot", slot)
	return c.VerifySlot(ctx, slot, &sig)
}

// VerifySlot verifies that the slot's entry chain is internally
// consistent, that sig (when given) is included in it, and that the
// recomputed bank hash gathered a supermajority of stake in the vote
// window that follows.
//
// Verified == false is only ever the quorum verdict. Every way the
// claim could not be checked is an error instead, so "we know it
// failed" and "we could not find out" never read the same.
func (c *Client) VerifySlot(ctx context.Context, slot uint64, sig *crypto.Signature) (*Result, error) {
	res, err := c.verifySlot(ctx, slot, sig)
	switch {
	case err != nil:
		c.metrics.SlotsVerified.With("outcome", "error").Add(1)
	case res.Verified:
		c.metrics.SlotsVerified.With("outcome", "verified").Add(1)
	default:
		c.metrics.SlotsVerified.With("outcome", "quorum_not_reached").Add(1)
	}
	return res, err
}

func (c *Client) verifySlot(ctx context.Context, slot uint64, sig *crypto.Signature) (*Result, error) {
	header, err := c.fetchHeader(ctx, slot, sig)
	if err != nil {
		return nil, err
	}
	lastEntryHash, ok := header.LastEntryHash()
	if !ok {
		return nil, ErrNoEntries
	}

	res := &Result{Slot: slot, InclusionIndex: -1}

	var targetLeaf *crypto.Hash
	if sig != nil {
		res.Signature = *sig
		leaf := TargetLeaf(*sig)
		targetLeaf = &leaf
	}
	if err := VerifyEntryChain(header.StartBlockhash, header.Entries, targetLeaf); err != nil {
		return nil, err
	}
	res.Entries = len(header.Entries)
	res.LastEntryHash = lastEntryHash
	c.logger.Info("entry chain verified", "slot", slot, "entries", res.Entries,
		"last_entry_hash", lastEntryHash.ShortString())

	if sig != nil {
		inclusion, err := VerifyInclusion(header.Entries, *sig)
		if err != nil {
			return nil, err
		}
		if !inclusion.Found {
			return nil, ErrSignatureNotFound{Signature: *sig}
		}
		res.InclusionIndex = inclusion.EntryIndex
		c.logger.Info("inclusion proven", "slot", slot,
			"signature", sig.ShortString(), "entry", inclusion.EntryIndex)
	}

	res.BankHash = ComputeBankHash(header.ParentHash, header.AccountsDeltaHash,
		header.SignatureCount, lastEntryHash)
	c.logger.Info("bank hash recomputed", "slot", slot, "bank_hash", res.BankHash)

	stakeSet, err := c.fetchStakeSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	tally, err := c.tallyWindow(ctx, stakeSet, slot)
	if err != nil {
		return nil, err
	}

	res.TotalStake = tally.TotalStake
	res.VotedStake = tally.StakeFor(res.BankHash)
	res.Verified = tally.HasSupermajority(res.BankHash)
	res.Reason = ReasonVerified
	if !res.Verified {
		res.Reason = ReasonQuorumNotReached
	}
	c.logger.Info("verdict", "slot", slot, "verified", res.Verified,
		"voted_stake", res.VotedStake, "total_stake", res.TotalStake)
	return res, nil
}

// TallyVotes scans the vote window starting at slot and returns the
// stake tallied behind every claimed bank hash, without verifying the
// slot itself.
func (c *Client) TallyVotes(ctx context.Context, slot uint64) (*TallyResult, error) {
	stakeSet, err := c.fetchStakeSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return c.tallyWindow(ctx, stakeSet, slot)
}

func (c *Client) fetchHeader(ctx context.Context, slot uint64, sig *crypto.Signature) (*types.BlockHeader, error) {
	var header *types.BlockHeader
	err := c.withRetry(ctx, "block_header", func(ctx context.Context) error {
		var err error
		header, err = c.provider.BlockHeader(ctx, slot, sig)
		return err
	})
	return header, err
}

// fetchStakeSnapshot takes the run's one stake snapshot. Stake could
// move while the run looks at its window; the snapshot is trusted to
// stand in for the whole run, which assumes stake is effectively
// static over those few slots.
func (c *Client) fetchStakeSnapshot(ctx context.Context) (*types.StakeSet, error) {
	var stakeSet *types.StakeSet
	err := c.withRetry(ctx, "stake_snapshot", func(ctx context.Context) error {
		var err error
		stakeSet, err = c.provider.StakeSnapshot(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if stakeSet.TotalStake() == 0 {
		return nil, types.ErrZeroTotalStake
	}
	c.logger.Debug("stake snapshot taken",
		"validators", stakeSet.Len(), "total_stake", stakeSet.TotalStake())
	return stakeSet, nil
}

// withRetry runs fn, polling at the configured interval for as long
// as the provider reports the data as not yet available. Any other
// error is final. The context bounds the wait.
func (c *Client) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	return retry.Do(ctx, retry.NewConstant(c.retryInterval), func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, provider.ErrNotAvailable) {
			c.metrics.Retries.With("op", op).Add(1)
			c.logger.Debug("data not available yet, retrying", "op", op)
			return retry.RetryableError(err)
		}
		return err
	})
}
