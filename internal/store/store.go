// Package store defines the persistence boundary between the core pipeline
// and the relational database: an authoritative append-only trade log plus
// per-(bar_type, pair) bar tables, both created idempotently and upserted
// with "do nothing"/"overwrite metadata" conflict policies per spec.md §4.2.
package store

import (
	"context"
	"time"

	"arcana/internal/model"
)

// DayCount is one UTC-day trade count, used by swarm gap validation.
type DayCount struct {
	Day   time.Time // UTC midnight
	Count int64
}

// Store is the persistence contract the Ingester, BarBuilders, and swarm
// planner depend on. Any method may fail with a transient connectivity
// error, which callers treat as retryable by whole-batch replay; failures
// are otherwise fatal to the enclosing operation.
type Store interface {
	// InitSchema idempotently creates the raw_trades table. Bar tables are
	// created lazily, per family/pair, on first InsertBars call.
	InitSchema(ctx context.Context) error

	// InsertTrades upserts a batch of trades, duplicates silently ignored
	// by the (source, trade_id, timestamp) uniqueness constraint. Callers
	// are responsible for batching to the configured commit size.
	InsertTrades(ctx context.Context, trades []model.Trade) error

	// InsertBars upserts a batch of bars keyed by (bar_type, source, pair,
	// time_start). On conflict, metadata is overwritten — required for
	// adaptive families to refresh their recoverable EWMA state on rebuild.
	InsertBars(ctx context.Context, bars []model.Bar) error

	// MaxTradeTS returns the latest stored trade timestamp for
	// (source, pair), or ok=false if no trade is stored yet.
	MaxTradeTS(ctx context.Context, source, pair string) (ts time.Time, ok bool, err error)

	// TradesSince returns trades with timestamp >= ts, ascending.
	TradesSince(ctx context.Context, source, pair string, ts time.Time) ([]model.Trade, error)

	// LastBar returns the most recently emitted bar of the given family for
	// (source, pair), or ok=false if none exists yet.
	LastBar(ctx context.Context, barType, source, pair string) (bar model.Bar, ok bool, err error)

	// CountByDay returns per-UTC-day trade counts in [start, end), used by
	// swarm gap validation. Days with zero trades are simply absent.
	CountByDay(ctx context.Context, source, pair string, start, end time.Time) ([]DayCount, error)

	// ListBars returns every bar of the given family for (source, pair)
	// with time_start in [start, end), ascending. Not part of spec.md's
	// core Store contract; added to back the "bars export" CLI verb,
	// which re-reads already-computed bars rather than replaying trades.
	ListBars(ctx context.Context, barType, source, pair string, start, end time.Time) ([]model.Bar, error)
}
