package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/0xNineteen/sol-lightnode/config"
	"github.com/0xNineteen/sol-lightnode/types"
)

// MakeVotesCommand constructs a command that tallies votes over a
// window of slots without verifying any of them, for surveying what
// the cluster voted for.
func MakeVotesCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "votes [start-slot]",
		Short: "Tally stake-weighted votes over a window of slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			client, _, err := newClient(conf)
			if err != nil {
				return err
			}
			res, err := client.TallyVotes(cmd.Context(), start)
			if err != nil {
				return err
			}

			logger.Info("vote window scanned",
				"start", res.StartSlot, "end", res.EndSlot,
				"txs", res.TxsScanned, "counted", res.VotesCounted, "skipped", res.VotesSkipped,
				"total_stake", res.TotalStake)
			for _, hash := range res.Tally.Hashes() {
				stake := res.Tally.StakeFor(hash)
				logger.Info("bank hash tallied",
					"bank_hash", hash,
					"stake", stake,
					"supermajority", types.IsSupermajority(stake, res.TotalStake))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&conf.Light.Window, "light.window", conf.Light.Window, "slots scanned for votes")
	cmd.Flags().IntVar(&conf.Light.FetchWorkers, "light.fetch-workers", conf.Light.FetchWorkers, "concurrent block fetches")
	return cmd
}
