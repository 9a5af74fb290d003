package light

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/taskgroup"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/light/provider"
	"github.com/0xNineteen/sol-lightnode/types"
)

// TallyResult is the outcome of scanning one vote window.
type TallyResult struct {
	// StartSlot and EndSlot delimit the scanned window, half open.
	StartSlot uint64
	EndSlot   uint64

	// TotalStake is the snapshot total the tally is measured against.
	TotalStake uint64

	// Tally holds the credited stake by claimed bank hash.
	Tally *types.VoteTally

	// TxsScanned counts every transaction inspected.
	TxsScanned int
	// VotesCounted counts credited votes.
	VotesCounted int
	// VotesSkipped counts vote transactions inspected but not
	// credited: no commitment, bad signature, unknown voter, or
	// duplicate.
	VotesSkipped int
}

// StakeFor returns the credited stake behind one bank hash.
func (r *TallyResult) StakeFor(hash crypto.Hash) uint64 {
	return r.Tally.StakeFor(hash)
}

// HasSupermajority reports whether the credited stake behind hash
// reaches a supermajority of the snapshot total.
func (r *TallyResult) HasSupermajority(hash crypto.Hash) bool {
	return types.IsSupermajority(r.Tally.StakeFor(hash), r.TotalStake)
}

// tallyWindow scans the slots [start, start+window) in order and
// tallies vote stake by claimed bank hash against the given
// snapshot.
//
// A slot with no transactions aborts the scan with
// ErrInconclusiveScan: quorum is never decided on partial
// information. Skipped slots count as empty for this purpose.
func (c *Client) tallyWindow(ctx context.Context, stakeSet *types.StakeSet, start uint64) (*TallyResult, error) {
	if stakeSet.TotalStake() == 0 {
		return nil, types.ErrZeroTotalStake
	}

	defer func(begin time.Time) {
		c.metrics.TallySeconds.Observe(time.Since(begin).Seconds())
	}(time.Now())

	blocks, err := c.fetchWindow(ctx, start)
	if err != nil {
		return nil, err
	}

	res := &TallyResult{
		StartSlot:  start,
		EndSlot:    start + c.window,
		TotalStake: stakeSet.TotalStake(),
		Tally:      types.NewVoteTally(),
	}
	for i, txs := range blocks {
		slot := start + uint64(i)
		if len(txs) == 0 {
			return nil, ErrInconclusiveScan{Slot: slot}
		}
		for j := range txs {
			if err := c.tallyTransaction(stakeSet, res, slot, &txs[j]); err != nil {
				return nil, err
			}
		}
	}
	c.logger.Debug("vote window scanned",
		"start", res.StartSlot, "end", res.EndSlot,
		"txs", res.TxsScanned, "counted", res.VotesCounted, "skipped", res.VotesSkipped,
		"hashes", res.Tally.Len())
	return res, nil
}

// tallyTransaction credits one transaction's vote, if it carries one.
// Only decode problems are fatal; transactions that merely fail to
// qualify are skipped so a single bad voter cannot poison the scan.
func (c *Client) tallyTransaction(stakeSet *types.StakeSet, res *TallyResult, slot uint64, tx *types.Transaction) error {
	res.TxsScanned++
	msg := &tx.Message
	if !msg.HasKey(types.VoteProgramID) {
		return nil
	}

	verified := false
	for _, ix := range msg.Instructions {
		program, err := msg.Program(ix)
		if err != nil || program != types.VoteProgramID {
			continue
		}
		vi, err := types.ParseVoteInstruction(ix.Data)
		if err != nil {
			return provider.ErrBadResponse{What: "vote instruction", Reason: err}
		}
		if !vi.HasBankHash() {
			c.skipVote(res, "no_commitment")
			continue
		}

		if !verified {
			if err := tx.VerifySignatures(); err != nil {
				var sigErr types.ErrInvalidSignature
				if errors.As(err, &sigErr) {
					c.logger.Info("excluding vote with invalid signature",
						"slot", slot, "signer", sigErr.Signer, "index", sigErr.Index)
					c.skipVote(res, "bad_signature")
					return nil
				}
				return provider.ErrBadResponse{What: "vote transaction", Reason: err}
			}
			verified = true
		}

		voter, ok := msg.Signer(0)
		if !ok {
			c.skipVote(res, "no_signer")
			continue
		}
		stake, ok := stakeSet.Stake(voter)
		if !ok {
			c.logger.Debug("vote from node outside stake snapshot",
				"slot", slot, "voter", voter)
			c.skipVote(res, "unknown_voter")
			continue
		}

		added, err := res.Tally.Add(voter, *vi.BankHash, stake)
		if err != nil {
			return err
		}
		if !added {
			c.skipVote(res, "duplicate")
			continue
		}
		res.VotesCounted++
		c.metrics.VotesCounted.Add(1)
		c.logger.Debug("vote counted",
			"slot", slot, "voted_slot", vi.LastVotedSlot,
			"bank_hash", vi.BankHash.ShortString(), "voter", voter.ShortString(), "stake", stake)
	}
	return nil
}

func (c *Client) skipVote(res *TallyResult, reason string) {
	res.VotesSkipped++
	c.metrics.VotesSkipped.With("reason", reason).Add(1)
}

// fetchWindow fetches the transactions of every slot in the window,
// in parallel when the client is configured with more than one fetch
// worker. Results are ordered by slot regardless.
func (c *Client) fetchWindow(ctx context.Context, start uint64) ([][]types.Transaction, error) {
	blocks := make([][]types.Transaction, c.window)

	if c.fetchWorkers <= 1 {
		for i := range blocks {
			txs, err := c.fetchBlockTransactions(ctx, start+uint64(i))
			if err != nil {
				return nil, err
			}
			blocks[i] = txs
		}
		return blocks, nil
	}

	gctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g := taskgroup.New(taskgroup.Trigger(cancel))
	_, run := g.Limit(c.fetchWorkers)
	for i := range blocks {
		i := i
		run(func() error {
			txs, err := c.fetchBlockTransactions(gctx, start+uint64(i))
			if err != nil {
				return err
			}
			blocks[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// fetchBlockTransactions fetches one slot's transactions, waiting out
// slots the cluster has not produced yet. A skipped slot is returned
// as an empty block so the tally can report it inconclusive.
func (c *Client) fetchBlockTransactions(ctx context.Context, slot uint64) ([]types.Transaction, error) {
	var txs []types.Transaction
	err := c.withRetry(ctx, "block_transactions", func(ctx context.Context) error {
		var err error
		txs, err = c.provider.BlockTransactions(ctx, slot)
		return err
	})
	switch {
	case errors.Is(err, provider.ErrBlockSkipped):
		return nil, nil
	case err != nil:
		return nil, err
	}
	c.metrics.BlocksFetched.Add(1)
	return txs, nil
}
