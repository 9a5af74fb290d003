// Package provider defines the interface a light verifier uses to
// obtain chain data, and the errors a provider reports.
package provider

import (
	"context"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/types"
)

//go:generate go run github.com/vektra/mockery/v2 --case underscore --name Provider

// Provider serves the chain data one verification run needs. A
// provider is assumed unreliable: everything it returns is verified
// against hashes and signatures before being trusted, except the
// stake snapshot, which is this design's root of trust.
type Provider interface {
	// TransactionSlot returns the slot a confirmed transaction landed
	// in. Returns ErrNotAvailable while the transaction is unknown to
	// the node, which is expected right after submission.
	TransactionSlot(ctx context.Context, sig crypto.Signature) (uint64, error)

	// BlockTransactions returns the decoded transactions of the block
	// at the given slot. An existing block with no transactions
	// yields an empty slice; a slot the cluster skipped yields
	// ErrBlockSkipped; a slot not yet produced yields
	// ErrNotAvailable.
	BlockTransactions(ctx context.Context, slot uint64) ([]types.Transaction, error)

	// BlockHeader returns the verification header for a slot. When
	// target is non-nil the node is asked to scope Merkle-compressed
	// entries to that signature's leaf.
	BlockHeader(ctx context.Context, slot uint64, target *crypto.Signature) (*types.BlockHeader, error)

	// StakeSnapshot returns activated stake by validator node key,
	// including delinquent validators.
	StakeSnapshot(ctx context.Context) (*types.StakeSet, error)
}
