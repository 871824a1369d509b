// Command arcana is the CLI surface of the trade-bar pipeline: ingestion
// (backfill/daemon), bar construction (build/rebuild/export), and swarm
// range planning/validation, wired together via cmd/arcana/wire_gen.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&ingestCmd{}, "")
	subcommands.Register(&daemonCmd{}, "")
	subcommands.Register(&barsBuildCmd{}, "bars")
	subcommands.Register(&barsRebuildCmd{}, "bars")
	subcommands.Register(&barsExportCmd{}, "bars")
	subcommands.Register(&swarmPlanCmd{}, "swarm")
	subcommands.Register(&swarmValidateCmd{}, "swarm")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// fatalInput prints msg and returns the bad-input exit status (spec.md §6).
func fatalInput(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

// fatalOperational prints err and returns the operational-failure exit
// status (spec.md §6).
func fatalOperational(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "arcana: %v\n", err)
	return subcommands.ExitFailure
}
