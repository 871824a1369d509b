package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"arcana/internal/ingest"
)

type ingestCmd struct {
	pair  string
	since string
	until string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "backfill a pair's trade log over [since, until)" }
func (*ingestCmd) Usage() string {
	return "ingest -pair BTC-USD -since 2024-01-01 -until 2024-02-01\n"
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pair, "pair", "", "trading pair, e.g. BTC-USD")
	f.StringVar(&c.since, "since", "", "window start (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&c.until, "until", "", "window end (RFC3339 or YYYY-MM-DD)")
}

func (c *ingestCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.pair == "" {
		return fatalInput("ingest: -pair is required")
	}
	since, err := parseTimeArg(c.since)
	if err != nil {
		return fatalInput("ingest: -since: %v", err)
	}
	until, err := parseTimeArg(c.until)
	if err != nil {
		return fatalInput("ingest: -until: %v", err)
	}
	if !since.Before(until) {
		return fatalInput("ingest: -since must be before -until")
	}

	app, err := InitializeApp()
	if err != nil {
		return fatalOperational(fmt.Errorf("initialize app: %w", err))
	}
	defer app.Close()

	if !supportsPair(app, c.pair) {
		return fatalInput("ingest: unsupported pair %q", c.pair)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Store.InitSchema(ctx); err != nil {
		return fatalOperational(fmt.Errorf("init schema: %w", err))
	}

	ig := ingest.New(app.Source, app.Store, app.Logger)
	ig.Window = app.Config.IngestWindow
	ig.BatchSize = app.Config.IngestBatchSize

	if err := ig.Backfill(ctx, c.pair, since, until); err != nil {
		if ctx.Err() != nil {
			app.Logger.Info("ingest: interrupted, exiting", "pair", c.pair)
			return subcommands.ExitSuccess
		}
		return fatalOperational(err)
	}
	return subcommands.ExitSuccess
}

func supportsPair(app *App, pair string) bool {
	for _, p := range app.Source.SupportedPairs() {
		if p == pair {
			return true
		}
	}
	return false
}

// parseTimeArg accepts RFC3339 timestamps or bare YYYY-MM-DD dates,
// the latter anchored to UTC midnight.
func parseTimeArg(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable date/time %q", s)
}
