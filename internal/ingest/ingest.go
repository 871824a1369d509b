// Package ingest drives one TradeSource/Store pair through the backfill and
// daemon modes of spec.md §4.3: a single-threaded, cooperatively-cancellable
// window walk that checkpoints by construction on the store's trade log.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"arcana/internal/model"
	"arcana/internal/source"
	"arcana/internal/store"
)

// ErrNoBaseline is returned by Daemon when no prior trade exists for the
// pair — the daemon requires a backfill-established baseline (spec.md §4.3,
// §7 kind 5).
var ErrNoBaseline = errors.New("ingest: daemon requires a backfill baseline")

// epsilon is the minimum representable timestamp increment the store can
// distinguish, used to advance the resume cursor past the last stored trade
// without re-fetching it.
const epsilon = time.Microsecond

// Ingester walks a TradeSource into a Store in fixed windows, one pair at a
// time. It is single-threaded by design: the rate limit lives on the
// TradeSource per process, so intra-process parallelism buys nothing; scale
// out via multiple Ingester instances (see package swarm) instead.
type Ingester struct {
	Source source.TradeSource
	Store  store.Store
	Logger *slog.Logger

	Window    time.Duration // fetch window size, default 15m
	BatchSize int           // commit batch size, default 1000
}

// New builds an Ingester with spec.md §6 defaults for any zero field.
func New(src source.TradeSource, st store.Store, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		Source:    src,
		Store:     st,
		Logger:    logger,
		Window:    15 * time.Minute,
		BatchSize: 1000,
	}
}

// Progress reports one window's outcome, for callers that want machine- or
// human-readable ingestion progress beyond the log stream.
type Progress struct {
	Pair          string
	WindowStart   time.Time
	WindowEnd     time.Time
	TradesWritten int
	Cursor        time.Time
	Until         time.Time
}

// Backfill walks [since, until) for pair, resuming from the store's
// recorded high-water mark when one exists and lies after since.
func (ig *Ingester) Backfill(ctx context.Context, pair string, since, until time.Time) error {
	cursor, err := ig.resumeCursor(ctx, pair, since)
	if err != nil {
		return err
	}

	// runID correlates one backfill run's log lines across a swarm of
	// concurrent Ingester instances hitting the same store (internal/swarm);
	// it never leaves this process, so a random v4 UUID is sufficient.
	runID := uuid.NewString()

	window := ig.Window
	if window <= 0 {
		window = 15 * time.Minute
	}

	for cursor.Before(until) {
		select {
		case <-ctx.Done():
			ig.Logger.Info("ingest: cancelled", "run_id", runID, "pair", pair, "cursor", cursor)
			return ctx.Err()
		default:
		}

		windowEnd := cursor.Add(window)
		if windowEnd.After(until) {
			windowEnd = until
		}

		trades, err := ig.Source.FetchWindow(ctx, pair, cursor, windowEnd)
		if err != nil {
			return fmt.Errorf("ingest: fetch window [%s,%s): %w", cursor, windowEnd, err)
		}

		written, err := ig.writeBatched(ctx, trades)
		if err != nil {
			return fmt.Errorf("ingest: write window [%s,%s): %w", cursor, windowEnd, err)
		}

		ig.Logger.Info("ingest: window complete",
			"run_id", runID,
			"pair", pair,
			"window_start", cursor,
			"window_end", windowEnd,
			"trades", written,
			"eta_windows_remaining", int64(until.Sub(windowEnd)/window))

		cursor = windowEnd
	}
	return nil
}

// writeBatched partitions trades into BatchSize-sized commits, per spec.md
// §4.3's checkpointing guarantee: a crash loses at most one batch.
func (ig *Ingester) writeBatched(ctx context.Context, trades []model.Trade) (int, error) {
	batchSize := ig.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	written := 0
	for start := 0; start < len(trades); start += batchSize {
		end := start + batchSize
		if end > len(trades) {
			end = len(trades)
		}
		batch := trades[start:end]
		if err := ig.Store.InsertTrades(ctx, batch); err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

func (ig *Ingester) resumeCursor(ctx context.Context, pair string, since time.Time) (time.Time, error) {
	maxTS, ok, err := ig.Store.MaxTradeTS(ctx, ig.Source.Name(), pair)
	if err != nil {
		return time.Time{}, fmt.Errorf("ingest: resume cursor: %w", err)
	}
	if !ok {
		return since, nil
	}
	resume := maxTS.Add(epsilon)
	if resume.Before(since) {
		return since, nil
	}
	return resume, nil
}

// Daemon runs a continuous backfill-to-now loop, sleeping interval between
// cycles, until ctx is cancelled. It requires a prior baseline trade for
// pair — a cold daemon start is a fatal precondition failure (spec.md §7
// kind 5).
func (ig *Ingester) Daemon(ctx context.Context, pair string, interval time.Duration) error {
	_, ok, err := ig.Store.MaxTradeTS(ctx, ig.Source.Name(), pair)
	if err != nil {
		return fmt.Errorf("ingest: daemon baseline check: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: pair=%s", ErrNoBaseline, pair)
	}

	for {
		now := time.Now().UTC()
		maxTS, _, err := ig.Store.MaxTradeTS(ctx, ig.Source.Name(), pair)
		if err != nil {
			return fmt.Errorf("ingest: daemon cycle: %w", err)
		}

		if err := ig.Backfill(ctx, pair, maxTS, now); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				ig.Logger.Info("ingest: daemon stopping", "pair", pair)
				return nil
			}
			return err
		}

		ig.Logger.Info("ingest: daemon cycle complete, sleeping", "pair", pair, "interval", interval)
		select {
		case <-ctx.Done():
			ig.Logger.Info("ingest: daemon stopping", "pair", pair)
			return nil
		case <-time.After(interval):
		}
	}
}
