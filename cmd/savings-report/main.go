// Command savings-report replays an exported ledger CSV offline.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"savings/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&summaryCmd{}, "")
	commander.Register(&exportCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
