// Package factory builds the synthetic chain data the package tests
// share: entry chains replayed with the real hash function, signed
// vote transactions, and stake snapshots.
package factory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/ed25519"
	"github.com/0xNineteen/sol-lightnode/crypto/solhash"
	"github.com/0xNineteen/sol-lightnode/poh"
	"github.com/0xNineteen/sol-lightnode/types"
)

// Hash returns a deterministic hash derived from a label.
func Hash(label string) crypto.Hash {
	return solhash.Sum([]byte(label))
}

// PrivKey returns a deterministic keypair derived from a label.
func PrivKey(label string) ed25519.PrivKey {
	return ed25519.GenPrivKeyFromSecret([]byte(label))
}

// Validator is a voting node with stake, as tests see it.
type Validator struct {
	Key   ed25519.PrivKey
	Stake uint64
}

// Validators derives n deterministic validators holding stake each.
func Validators(n int, stake uint64) []Validator {
	vals := make([]Validator, n)
	for i := range vals {
		vals[i] = Validator{
			Key:   PrivKey(fmt.Sprintf("validator-%d", i)),
			Stake: stake,
		}
	}
	return vals
}

// StakeSet builds the snapshot holding each validator's stake.
func StakeSet(t *testing.T, vals []Validator) *types.StakeSet {
	t.Helper()
	stakes := make(map[crypto.PubKey]uint64, len(vals))
	for _, val := range vals {
		stakes[val.Key.PubKey()] = val.Stake
	}
	set, err := types.NewStakeSet(stakes)
	require.NoError(t, err)
	return set
}

// ChainBuilder replays the real hash chain while accumulating
// entries, so tests construct slots whose stored hashes genuinely
// verify.
type ChainBuilder struct {
	poh     *poh.Poh
	entries []types.Entry
}

// NewChainBuilder starts a chain at the given hash.
func NewChainBuilder(start crypto.Hash) *ChainBuilder {
	return &ChainBuilder{poh: poh.New(start)}
}

// Tick appends a pure tick entry after n plain hash iterations.
func (b *ChainBuilder) Tick(n uint64) *ChainBuilder {
	if n > 0 {
		b.poh.Hash(n - 1)
	}
	hash, numHashes := b.poh.Tick()
	b.entries = append(b.entries, types.Entry{NumHashes: numHashes, Hash: hash})
	return b
}

// Transactions appends an entry carrying the given transactions,
// mixing their signature root into the chain.
func (b *ChainBuilder) Transactions(txs ...types.Transaction) *ChainBuilder {
	hash, numHashes := b.poh.Record(types.HashTransactions(txs))
	b.entries = append(b.entries, types.Entry{
		NumHashes:    numHashes,
		Hash:         hash,
		Transactions: txs,
	})
	return b
}

// Entries returns the accumulated entries.
func (b *ChainBuilder) Entries() []types.Entry {
	return b.entries
}

// Header wraps the accumulated entries in a block header whose bank
// hash preimage fields are derived from the labels.
func (b *ChainBuilder) Header(start crypto.Hash, signatureCount uint64) *types.BlockHeader {
	return &types.BlockHeader{
		ParentHash:        Hash("parent"),
		AccountsDeltaHash: Hash("accounts-delta"),
		SignatureCount:    signatureCount,
		StartBlockhash:    start,
		Entries:           b.entries,
	}
}

// VoteTransaction builds a signed vote transaction by val committing
// to bankHash at slot.
func VoteTransaction(t *testing.T, val Validator, slot uint64, bankHash crypto.Hash) types.Transaction {
	t.Helper()
	msg := types.Message{
		Version: types.MessageVersionLegacy,
		Header: types.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []crypto.PubKey{val.Key.PubKey(), types.VoteProgramID},
		RecentBlockhash: Hash("recent-blockhash"),
		Instructions: []types.CompiledInstruction{{
			ProgramIDIndex: 1,
			Accounts:       []uint8{0},
			Data:           types.EncodeVote([]uint64{slot}, bankHash, nil),
		}},
	}
	sig, err := val.Key.Sign(msg.Serialize())
	require.NoError(t, err)
	return types.Transaction{
		Signatures: []crypto.Signature{sig},
		Message:    msg,
	}
}

// TransferTransaction builds a signed probe transfer from a
// deterministic payer.
func TransferTransaction(t *testing.T, label string, lamports uint64) types.Transaction {
	t.Helper()
	payer := PrivKey(label + "-payer")
	recipient := PrivKey(label + "-recipient")
	tx, err := types.NewTransferTransaction(payer, recipient.PubKey(), lamports, Hash("recent-blockhash"))
	require.NoError(t, err)
	return *tx
}

// VoteBlock builds one block's transactions: every validator votes
// for bankHash at slot.
func VoteBlock(t *testing.T, vals []Validator, slot uint64, bankHash crypto.Hash) []types.Transaction {
	t.Helper()
	txs := make([]types.Transaction, 0, len(vals))
	for _, val := range vals {
		txs = append(txs, VoteTransaction(t, val, slot, bankHash))
	}
	return txs
}
