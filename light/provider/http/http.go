// Package http implements a light-client provider over a chain
// node's JSON-RPC interface.
package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/mr-tron/base58"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/libs/bytes"
	"github.com/0xNineteen/sol-lightnode/light/provider"
	rpcclient "github.com/0xNineteen/sol-lightnode/rpc/jsonrpc/client"
	"github.com/0xNineteen/sol-lightnode/types"
)

// JSON-RPC error codes the node answers with for data that is not
// there. Not-yet-available conditions clear on their own and are
// retried; a skipped slot never will be.
const (
	codeBlockNotAvailable = -32004
	codeNodeUnhealthy     = -32005
	codeSlotSkipped       = -32007
	codeLongTermStorage   = -32009
)

// Provider asks a JSON-RPC node for everything. Nothing it returns
// is trusted; the light client verifies all of it. Beyond the
// provider interface it exposes the node methods the CLI needs to
// plant and fund a probe transaction.
type Provider struct {
	client *rpcclient.Client
}

var _ provider.Provider = (*Provider)(nil)

// New returns an HTTP provider for the node at remote.
func New(remote string) (*Provider, error) {
	c, err := rpcclient.New(remote)
	if err != nil {
		return nil, err
	}
	return &Provider{client: c}, nil
}

// NewWithHTTPClient is New with a caller-supplied http.Client.
func NewWithHTTPClient(remote string, client *nethttp.Client) (*Provider, error) {
	c, err := rpcclient.NewWithHTTPClient(remote, client)
	if err != nil {
		return nil, err
	}
	return &Provider{client: c}, nil
}

func (p *Provider) TransactionSlot(ctx context.Context, sig crypto.Signature) (uint64, error) {
	params := []interface{}{
		sig.String(),
		map[string]interface{}{
			"encoding":                       "base58",
			"maxSupportedTransactionVersion": 0,
		},
	}
	var result struct {
		Slot uint64 `json:"slot"`
	}
	// getTransaction answers null until the transaction is visible.
	if err := p.client.Call(ctx, "getTransaction", params, &result); err != nil {
		return 0, translate("getTransaction", err)
	}
	return result.Slot, nil
}

func (p *Provider) BlockTransactions(ctx context.Context, slot uint64) ([]types.Transaction, error) {
	params := []interface{}{
		slot,
		map[string]interface{}{
			"encoding":                       "base58",
			"transactionDetails":             "full",
			"rewards":                        false,
			"maxSupportedTransactionVersion": 0,
		},
	}
	var result struct {
		Transactions []struct {
			// [payload, encoding] tuple under base58 encoding.
			Transaction []string `json:"transaction"`
		} `json:"transactions"`
	}
	if err := p.client.Call(ctx, "getBlock", params, &result); err != nil {
		return nil, translate("getBlock", err)
	}

	txs := make([]types.Transaction, 0, len(result.Transactions))
	for i, raw := range result.Transactions {
		if len(raw.Transaction) < 1 {
			return nil, provider.ErrBadResponse{
				What:   "getBlock",
				Reason: fmt.Errorf("transaction %d has no payload", i),
			}
		}
		bz, err := base58.Decode(raw.Transaction[0])
		if err != nil {
			return nil, provider.ErrBadResponse{
				What:   "getBlock",
				Reason: fmt.Errorf("transaction %d: %w", i, err),
			}
		}
		tx, err := types.DecodeTransaction(bz)
		if err != nil {
			return nil, provider.ErrBadResponse{
				What:   "getBlock",
				Reason: fmt.Errorf("transaction %d: %w", i, err),
			}
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

func (p *Provider) BlockHeader(ctx context.Context, slot uint64, target *crypto.Signature) (*types.BlockHeader, error) {
	params := []interface{}{slot}
	if target != nil {
		params = append(params, target.String())
	}
	// The payload arrives as a base64 string or a JSON byte array,
	// depending on node version; bytes.HexBytes accepts both.
	var result bytes.HexBytes
	if err := p.client.Call(ctx, "getBlockHeaders", params, &result); err != nil {
		return nil, translate("getBlockHeaders", err)
	}
	header, err := types.DecodeBlockHeader(result)
	if err != nil {
		return nil, provider.ErrBadResponse{What: "getBlockHeaders", Reason: err}
	}
	return header, nil
}

func (p *Provider) StakeSnapshot(ctx context.Context) (*types.StakeSet, error) {
	type voteAccount struct {
		NodePubkey     string `json:"nodePubkey"`
		ActivatedStake uint64 `json:"activatedStake"`
	}
	var result struct {
		Current    []voteAccount `json:"current"`
		Delinquent []voteAccount `json:"delinquent"`
	}
	if err := p.client.Call(ctx, "getVoteAccounts", []interface{}{}, &result); err != nil {
		return nil, translate("getVoteAccounts", err)
	}

	// A delinquent validator's stake still counts toward the total a
	// supermajority is measured against.
	stakes := make(map[crypto.PubKey]uint64, len(result.Current)+len(result.Delinquent))
	for _, account := range append(result.Current, result.Delinquent...) {
		node, err := crypto.PubKeyFromString(account.NodePubkey)
		if err != nil {
			return nil, provider.ErrBadResponse{
				What:   "getVoteAccounts",
				Reason: fmt.Errorf("node pubkey %q: %w", account.NodePubkey, err),
			}
		}
		stakes[node] += account.ActivatedStake
	}
	set, err := types.NewStakeSet(stakes)
	if err != nil {
		return nil, provider.ErrBadResponse{What: "getVoteAccounts", Reason: err}
	}
	return set, nil
}

// LatestBlockhash returns a recent blockhash to build a transaction
// against.
func (p *Provider) LatestBlockhash(ctx context.Context) (crypto.Hash, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := p.client.Call(ctx, "getLatestBlockhash", []interface{}{}, &result); err != nil {
		return crypto.Hash{}, translate("getLatestBlockhash", err)
	}
	hash, err := crypto.HashFromString(result.Value.Blockhash)
	if err != nil {
		return crypto.Hash{}, provider.ErrBadResponse{What: "getLatestBlockhash", Reason: err}
	}
	return hash, nil
}

// Balance returns the lamport balance of an account.
func (p *Provider) Balance(ctx context.Context, account crypto.PubKey) (uint64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := p.client.Call(ctx, "getBalance", []interface{}{account.String()}, &result); err != nil {
		return 0, translate("getBalance", err)
	}
	return result.Value, nil
}

// SendTransaction submits a signed transaction and returns its
// identifying signature as echoed by the node.
func (p *Provider) SendTransaction(ctx context.Context, tx *types.Transaction) (crypto.Signature, error) {
	bz, err := tx.Marshal()
	if err != nil {
		return crypto.Signature{}, err
	}
	params := []interface{}{
		base58.Encode(bz),
		map[string]interface{}{"encoding": "base58"},
	}
	var result string
	if err := p.client.Call(ctx, "sendTransaction", params, &result); err != nil {
		return crypto.Signature{}, translate("sendTransaction", err)
	}
	sig, err := crypto.SignatureFromString(result)
	if err != nil {
		return crypto.Signature{}, provider.ErrBadResponse{What: "sendTransaction", Reason: err}
	}
	return sig, nil
}

// translate maps JSON-RPC failures onto provider errors: null
// results and availability codes are retryable, a skipped slot is
// permanent, and everything else is final as-is.
func translate(method string, err error) error {
	if errors.Is(err, rpcclient.ErrNullResult) {
		return fmt.Errorf("%s: %w", method, provider.ErrNotAvailable)
	}
	if code, ok := rpcclient.ErrorCode(err); ok {
		switch code {
		case codeBlockNotAvailable, codeNodeUnhealthy:
			return fmt.Errorf("%s: %v: %w", method, err, provider.ErrNotAvailable)
		case codeSlotSkipped, codeLongTermStorage:
			return fmt.Errorf("%s: %v: %w", method, err, provider.ErrBlockSkipped)
		}
	}
	return err
}
