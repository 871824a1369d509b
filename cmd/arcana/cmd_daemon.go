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

type daemonCmd struct {
	pair     string
	interval time.Duration
}

func (*daemonCmd) Name() string     { return "daemon" }
func (*daemonCmd) Synopsis() string { return "continuously ingest a pair, polling on an interval" }
func (*daemonCmd) Usage() string    { return "daemon -pair BTC-USD [-interval 15m]\n" }

func (c *daemonCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pair, "pair", "", "trading pair, e.g. BTC-USD")
	f.DurationVar(&c.interval, "interval", 0, "poll period, default daemon.interval_seconds from config")
}

func (c *daemonCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.pair == "" {
		return fatalInput("daemon: -pair is required")
	}

	app, err := InitializeApp()
	if err != nil {
		return fatalOperational(fmt.Errorf("initialize app: %w", err))
	}
	defer app.Close()

	if !supportsPair(app, c.pair) {
		return fatalInput("daemon: unsupported pair %q", c.pair)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Store.InitSchema(ctx); err != nil {
		return fatalOperational(fmt.Errorf("init schema: %w", err))
	}

	interval := c.interval
	if interval <= 0 {
		interval = app.Config.DaemonInterval
	}

	ig := ingest.New(app.Source, app.Store, app.Logger)
	ig.Window = app.Config.IngestWindow
	ig.BatchSize = app.Config.IngestBatchSize

	if err := ig.Daemon(ctx, c.pair, interval); err != nil {
		return fatalOperational(err)
	}
	return subcommands.ExitSuccess
}
