package commands

import (
	"github.com/spf13/cobra"

	"github.com/0xNineteen/sol-lightnode/config"
	"github.com/0xNineteen/sol-lightnode/crypto/ed25519"
)

// MakeInitCommand constructs a command that initializes the config
// root: directories, a default config file, and fresh keypairs.
func MakeInitCommand(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the config directory and generate keypairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initFiles(conf)
		},
	}
}

func initFiles(conf *config.Config) error {
	if err := config.EnsureRoot(conf.RootDir); err != nil {
		return err
	}

	if fileExists(conf.ConfigFilePath()) {
		logger.Info("found config file", "path", conf.ConfigFilePath())
	} else {
		if err := config.WriteConfigFile(conf); err != nil {
			return err
		}
		logger.Info("generated config file", "path", conf.ConfigFilePath())
	}

	for _, path := range []string{conf.PayerKeyFilePath(), conf.RecipientKeyFilePath()} {
		if fileExists(path) {
			logger.Info("found keypair", "path", path)
			continue
		}
		key := ed25519.GenPrivKey()
		if err := key.SaveKeypairFile(path); err != nil {
			return err
		}
		logger.Info("generated keypair", "path", path, "pubkey", key.PubKey())
	}
	return nil
}
