package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/subcommands"

	"arcana/internal/bars"
	"arcana/internal/barspec"
	"arcana/internal/model"
	"arcana/internal/saver"
)

// runBarBuild drives one bar family/pair from the trade log into the bars
// table. cold forces a from-epoch replay with no EWMA seeding (the
// "rebuild" verb); otherwise it resumes from the last emitted bar.
func runBarBuild(ctx context.Context, app *App, specStr, pair string, cold bool) error {
	spec, err := barspec.Parse(specStr)
	if err != nil {
		return err
	}
	barType := bars.BarType(spec)

	var priorBar *model.Bar
	var since time.Time
	if !cold {
		last, ok, err := app.Store.LastBar(ctx, barType, app.Source.Name(), pair)
		if err != nil {
			return fmt.Errorf("bars: last bar lookup: %w", err)
		}
		if ok {
			priorBar = &last
			since = last.TimeEnd
		}
	}

	builder, err := bars.New(spec, app.Source.Name(), pair, priorBar)
	if err != nil {
		return fmt.Errorf("bars: build builder: %w", err)
	}

	trades, err := app.Store.TradesSince(ctx, app.Source.Name(), pair, since)
	if err != nil {
		return fmt.Errorf("bars: load trades: %w", err)
	}
	if len(trades) == 0 {
		app.Logger.Info("bars: no trades to process, nothing emitted", "bar_type", barType, "pair", pair)
		return nil
	}

	emitted := builder.ProcessTrades(trades)
	if err := app.Store.InsertBars(ctx, emitted); err != nil {
		return fmt.Errorf("bars: insert bars: %w", err)
	}

	app.Logger.Info("bars: build complete", "bar_type", barType, "pair", pair, "trades", len(trades), "bars_emitted", len(emitted))
	return nil
}

type barsBuildCmd struct {
	spec string
	pair string
}

func (*barsBuildCmd) Name() string     { return "build" }
func (*barsBuildCmd) Synopsis() string { return "incrementally build a bar family from the trade log" }
func (*barsBuildCmd) Usage() string    { return "bars build -spec tick_500 -pair BTC-USD\n" }

func (c *barsBuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "spec", "", "bar spec, e.g. tick_500, time_5m, tib_50")
	f.StringVar(&c.pair, "pair", "", "trading pair, e.g. BTC-USD")
}

func (c *barsBuildCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.spec == "" || c.pair == "" {
		return fatalInput("bars build: -spec and -pair are required")
	}
	app, err := InitializeApp()
	if err != nil {
		return fatalOperational(fmt.Errorf("initialize app: %w", err))
	}
	defer app.Close()

	if err := runBarBuild(ctx, app, c.spec, c.pair, false); err != nil {
		if isInputErr(err) {
			return fatalInput("bars build: %v", err)
		}
		return fatalOperational(err)
	}
	return subcommands.ExitSuccess
}

type barsRebuildCmd struct {
	spec string
	pair string
}

func (*barsRebuildCmd) Name() string { return "rebuild" }
func (*barsRebuildCmd) Synopsis() string {
	return "replay the full trade log into a bar family, cold-starting EWMA state"
}
func (*barsRebuildCmd) Usage() string { return "bars rebuild -spec tib_50 -pair BTC-USD\n" }

func (c *barsRebuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "spec", "", "bar spec, e.g. tick_500, time_5m, tib_50")
	f.StringVar(&c.pair, "pair", "", "trading pair, e.g. BTC-USD")
}

func (c *barsRebuildCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.spec == "" || c.pair == "" {
		return fatalInput("bars rebuild: -spec and -pair are required")
	}
	app, err := InitializeApp()
	if err != nil {
		return fatalOperational(fmt.Errorf("initialize app: %w", err))
	}
	defer app.Close()

	if err := runBarBuild(ctx, app, c.spec, c.pair, true); err != nil {
		if isInputErr(err) {
			return fatalInput("bars rebuild: %v", err)
		}
		return fatalOperational(err)
	}
	return subcommands.ExitSuccess
}

type barsExportCmd struct {
	spec string
	pair string
	path string
}

func (*barsExportCmd) Name() string     { return "export" }
func (*barsExportCmd) Synopsis() string { return "export a bar family's stored rows to csv/json/parquet" }
func (*barsExportCmd) Usage() string {
	return "bars export -spec volume_5 -pair BTC-USD -out bars.parquet\n"
}

func (c *barsExportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "spec", "", "bar spec, e.g. tick_500, time_5m, tib_50")
	f.StringVar(&c.pair, "pair", "", "trading pair, e.g. BTC-USD")
	f.StringVar(&c.path, "out", "", "output file path; format inferred from extension (.csv, .json, .parquet)")
}

func (c *barsExportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.spec == "" || c.pair == "" || c.path == "" {
		return fatalInput("bars export: -spec, -pair, and -out are required")
	}
	spec, err := barspec.Parse(c.spec)
	if err != nil {
		return fatalInput("bars export: %v", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(c.path), ".")
	s := saver.NewBarSaver(ext)
	if s == nil {
		return fatalInput("bars export: unsupported output format %q", ext)
	}

	app, err := InitializeApp()
	if err != nil {
		return fatalOperational(fmt.Errorf("initialize app: %w", err))
	}
	defer app.Close()

	barType := bars.BarType(spec)
	rows, err := app.Store.ListBars(ctx, barType, app.Source.Name(), c.pair, time.Time{}, time.Now().UTC())
	if err != nil {
		return fatalOperational(fmt.Errorf("list bars: %w", err))
	}

	if err := s.Save(rows, c.path); err != nil {
		return fatalOperational(fmt.Errorf("save: %w", err))
	}
	app.Logger.Info("bars: export complete", "bar_type", barType, "pair", c.pair, "rows", len(rows), "path", c.path)
	return subcommands.ExitSuccess
}

// isInputErr reports whether err stems from a bad bar-spec — exit 2 rather
// than exit 1.
func isInputErr(err error) bool {
	return errors.Is(err, barspec.ErrBadSpec)
}
