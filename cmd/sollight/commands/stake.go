package commands

import (
	"github.com/spf13/cobra"

	"github.com/0xNineteen/sol-lightnode/config"
)

// MakeStakeCommand constructs a command that prints the stake
// snapshot a verification run would trust.
func MakeStakeCommand(conf *config.Config) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Fetch and print the activated stake snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := newClient(conf)
			if err != nil {
				return err
			}
			snapshot, err := p.StakeSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			logger.Info("stake snapshot",
				"validators", snapshot.Len(), "total_stake", snapshot.TotalStake())
			for i, entry := range snapshot.Entries() {
				if top > 0 && i >= top {
					break
				}
				logger.Info("validator", "node", entry.NodeKey, "stake", entry.Stake)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "print only the top N validators by stake (0 = all)")
	return cmd
}
