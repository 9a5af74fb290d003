package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xNineteen/sol-lightnode/config"
	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/light"
)

// MakeVerifyCommand constructs the core claim check: verify that a
// slot (and optionally a transaction in it) is backed by a
// supermajority-confirmed bank hash.
func MakeVerifyCommand(conf *config.Config) *cobra.Command {
	var (
		slot      uint64
		rawSig    string
		bySigOnly bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a (slot, transaction) claim against the chain",
		Long: `Verify replays the slot's entry hash chain, proves the target
transaction's inclusion when one is given, recomputes the bank hash,
and checks that two thirds of the snapshotted stake voted for it in
the following slots.

With --resolve-slot the slot is looked up from the transaction
signature instead of --slot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(conf)
			if err != nil {
				return err
			}

			var sig *crypto.Signature
			if rawSig != "" {
				parsed, err := crypto.SignatureFromString(rawSig)
				if err != nil {
					return err
				}
				sig = &parsed
			}

			var res *light.Result
			switch {
			case bySigOnly:
				if sig == nil {
					return errors.New("--resolve-slot requires --sig")
				}
				res, err = client.VerifyTransaction(cmd.Context(), *sig)
			case cmd.Flags().Changed("slot"):
				res, err = client.VerifySlot(cmd.Context(), slot, sig)
			default:
				return errors.New("either --slot or --resolve-slot is required")
			}
			if err != nil {
				return err
			}
			return printVerdict(res)
		},
	}
	cmd.Flags().Uint64Var(&slot, "slot", 0, "slot of the claim")
	cmd.Flags().StringVar(&rawSig, "sig", "", "base58 transaction signature to prove inclusion for")
	cmd.Flags().BoolVar(&bySigOnly, "resolve-slot", false, "resolve the slot from --sig via the node")
	cmd.Flags().Uint64Var(&conf.Light.Window, "light.window", conf.Light.Window, "slots scanned for votes")
	cmd.Flags().IntVar(&conf.Light.FetchWorkers, "light.fetch-workers", conf.Light.FetchWorkers, "concurrent block fetches")
	return cmd
}

func printVerdict(res *light.Result) error {
	logger.Info("verification finished",
		"slot", res.Slot,
		"bank_hash", res.BankHash,
		"entries", res.Entries,
		"voted_stake", res.VotedStake,
		"total_stake", res.TotalStake,
		"verified", res.Verified,
		"reason", res.Reason,
	)
	if !res.Verified {
		return fmt.Errorf("slot %d not verified: %s", res.Slot, res.Reason)
	}
	return nil
}
