package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xNineteen/sol-lightnode/config"
	"github.com/0xNineteen/sol-lightnode/crypto/ed25519"
	"github.com/0xNineteen/sol-lightnode/types"
)

// MakeTrackCommand constructs the end-to-end probe: submit a small
// transfer, wait for it to land, then run the full verification
// pipeline on the slot that contains it.
func MakeTrackCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Send a probe transfer and verify the slot it lands in",
		Long: `Track plants a transaction the verifier controls: it loads the payer
keypair, transfers a few lamports to the recipient, waits until the
node reports the landing slot, and then verifies the (slot,
signature) claim end to end. The recipient keypair is generated when
its file is absent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, p, err := newClient(conf)
			if err != nil {
				return err
			}

			payer, err := ed25519.LoadKeypairFile(conf.PayerKeyFilePath())
			if err != nil {
				return fmt.Errorf("load payer keypair: %w", err)
			}
			recipient, err := loadOrGenKeypair(conf.RecipientKeyFilePath())
			if err != nil {
				return fmt.Errorf("load recipient keypair: %w", err)
			}

			payerBalance, err := p.Balance(ctx, payer.PubKey())
			if err != nil {
				return err
			}
			logger.Info("payer", "pubkey", payer.PubKey(), "balance", payerBalance)
			if payerBalance < conf.Track.Lamports {
				return fmt.Errorf("payer %s holds %d lamports, probe needs %d",
					payer.PubKey(), payerBalance, conf.Track.Lamports)
			}

			blockhash, err := p.LatestBlockhash(ctx)
			if err != nil {
				return err
			}
			tx, err := types.NewTransferTransaction(payer, recipient.PubKey(), conf.Track.Lamports, blockhash)
			if err != nil {
				return err
			}
			sig, err := p.SendTransaction(ctx, tx)
			if err != nil {
				return err
			}
			logger.Info("probe transfer sent",
				"signature", sig, "recipient", recipient.PubKey(), "lamports", conf.Track.Lamports)

			res, err := client.VerifyTransaction(ctx, sig)
			if err != nil {
				return err
			}
			return printVerdict(res)
		},
	}
	cmd.Flags().Uint64Var(&conf.Track.Lamports, "track.lamports", conf.Track.Lamports, "lamports moved by the probe transfer")
	cmd.Flags().Uint64Var(&conf.Light.Window, "light.window", conf.Light.Window, "slots scanned for votes")
	return cmd
}

func loadOrGenKeypair(path string) (ed25519.PrivKey, error) {
	if fileExists(path) {
		return ed25519.LoadKeypairFile(path)
	}
	key := ed25519.GenPrivKey()
	if err := key.SaveKeypairFile(path); err != nil {
		return ed25519.PrivKey{}, err
	}
	logger.Info("generated keypair", "path", path, "pubkey", key.PubKey())
	return key, nil
}
