package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xNineteen/sol-lightnode/cmd/sollight/commands"
	"github.com/0xNineteen/sol-lightnode/config"
)

func main() {
	conf := config.DefaultConfig()
	cmd := commands.RootCommand(conf)
	cmd.AddCommand(
		commands.MakeInitCommand(conf),
		commands.MakeVerifyCommand(conf),
		commands.MakeVotesCommand(conf),
		commands.MakeStakeCommand(conf),
		commands.MakeTrackCommand(conf),
		commands.VersionCmd,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
