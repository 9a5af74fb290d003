// Package commands wires the verification pipeline into a CLI. The
// subcommands are thin: each one reads configuration, builds one
// light.Client, and runs one of its operations.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/0xNineteen/sol-lightnode/config"
	"github.com/0xNineteen/sol-lightnode/libs/log"
	"github.com/0xNineteen/sol-lightnode/light"
	lighthttp "github.com/0xNineteen/sol-lightnode/light/provider/http"
)

// logger is rebuilt from config by the root PersistentPreRunE before
// any subcommand runs.
var logger log.Logger = log.NewNopLogger()

// ParseConfig loads the config file under the root when one exists
// and applies any bound flag overrides.
func ParseConfig(conf *config.Config) (*config.Config, error) {
	conf.SetRoot(viper.GetString("home"))

	if path := conf.ConfigFilePath(); fileExists(path) {
		loaded, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		loaded.SetRoot(conf.RootDir)
		*conf = *loaded
	}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}
	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point.
func RootCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sollight",
		Short: "Light-client verifier for a proof-of-history chain",
		Long: `sollight independently re-derives the evidence behind a claim that a
transaction landed in a slot with a given bank hash: it replays the
slot's entry hash chain, proves the transaction's inclusion,
recomputes the bank hash, and tallies stake-weighted votes from the
following slots against a two-thirds supermajority.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			logger, err = log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().String("home", config.DefaultRootDir(), "directory for config and keys")
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", conf.LogFormat, "log format (plain|json)")
	cmd.PersistentFlags().String("rpc.remote", conf.RPC.Remote, "JSON-RPC endpoint of the queried node")
	return cmd
}

// newClient builds the verification client and its HTTP provider
// from the parsed config.
func newClient(conf *config.Config) (*light.Client, *lighthttp.Provider, error) {
	p, err := lighthttp.New(conf.RPC.Remote)
	if err != nil {
		return nil, nil, err
	}
	c, err := light.NewClient(p,
		light.Window(conf.Light.Window),
		light.RetryInterval(conf.Light.RetryInterval),
		light.FetchWorkers(conf.Light.FetchWorkers),
		light.Logger(logger.With("module", "light")),
	)
	if err != nil {
		return nil, nil, err
	}
	return c, p, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
