package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"arcana/internal/swarm"
)

type swarmPlanCmd struct {
	since string
	until string
	n     int
}

func (*swarmPlanCmd) Name() string     { return "plan" }
func (*swarmPlanCmd) Synopsis() string { return "print the sub-ranges a swarm of N ingesters would cover" }
func (*swarmPlanCmd) Usage() string {
	return "swarm plan -since 2023-01-01 -until 2024-01-01 -n 4\n"
}

func (c *swarmPlanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.since, "since", "", "range start (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&c.until, "until", "", "range end (RFC3339 or YYYY-MM-DD)")
	f.IntVar(&c.n, "n", 0, "number of workers; 0 selects calendar-month partitioning")
}

func (c *swarmPlanCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	since, err := parseTimeArg(c.since)
	if err != nil {
		return fatalInput("swarm plan: -since: %v", err)
	}
	until, err := parseTimeArg(c.until)
	if err != nil {
		return fatalInput("swarm plan: -until: %v", err)
	}
	if c.n < 0 {
		return fatalInput("swarm plan: -n must be >= 0")
	}

	ranges, err := swarm.Plan(since, until, c.n)
	if err != nil {
		return fatalInput("swarm plan: %v", err)
	}

	for i, r := range ranges {
		fmt.Printf("worker %d: --since %s --until %s\n", i, r.Since.Format("2006-01-02T15:04:05Z"), r.Until.Format("2006-01-02T15:04:05Z"))
	}
	return subcommands.ExitSuccess
}

type swarmValidateCmd struct {
	pair  string
	since string
	until string
}

func (*swarmValidateCmd) Name() string { return "validate" }
func (*swarmValidateCmd) Synopsis() string {
	return "report UTC days with zero stored trades inside a range"
}
func (*swarmValidateCmd) Usage() string {
	return "swarm validate -pair BTC-USD -since 2023-01-01 -until 2024-01-01\n"
}

func (c *swarmValidateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pair, "pair", "", "trading pair, e.g. BTC-USD")
	f.StringVar(&c.since, "since", "", "range start (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&c.until, "until", "", "range end (RFC3339 or YYYY-MM-DD)")
}

func (c *swarmValidateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.pair == "" {
		return fatalInput("swarm validate: -pair is required")
	}
	since, err := parseTimeArg(c.since)
	if err != nil {
		return fatalInput("swarm validate: -since: %v", err)
	}
	until, err := parseTimeArg(c.until)
	if err != nil {
		return fatalInput("swarm validate: -until: %v", err)
	}

	app, err := InitializeApp()
	if err != nil {
		return fatalOperational(fmt.Errorf("initialize app: %w", err))
	}
	defer app.Close()

	gaps, err := swarm.Validate(ctx, app.Store, app.Source.Name(), c.pair, since, until)
	if err != nil {
		return fatalOperational(err)
	}

	fmt.Println(swarm.FormatGapReport(gaps))
	return subcommands.ExitSuccess
}
