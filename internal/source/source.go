// Package source defines the TradeSource boundary between the pipeline core
// and a concrete exchange's trade-history HTTP API, plus the Coinbase
// implementation used in production.
package source

import (
	"context"
	"errors"
	"time"

	"arcana/internal/model"
)

// ErrWindowTooBusy is returned by a TradeSource when a single timestamp
// instant holds more trades than the source's page limit, making the
// backward-page-walk cursor unable to advance. Pragmatically unreachable at
// the window sizes the ingester uses, but must be surfaced distinctly
// rather than silently truncating the result.
var ErrWindowTooBusy = errors.New("source: window too busy, cursor cannot advance")

// TradeSource fetches historical trades for one pair over a half-open time
// window. Implementations must dedupe by trade ID across internal pages,
// rate-limit their own requests, and retry transient failures internally —
// callers see only a final, already-deduplicated, ascending slice or a
// fatal error.
type TradeSource interface {
	// FetchWindow returns every trade with start <= timestamp < end for
	// pair, sorted ascending, deduplicated by trade ID.
	FetchWindow(ctx context.Context, pair string, start, end time.Time) ([]model.Trade, error)

	// SupportedPairs lists the pairs this source can serve, for input
	// validation before any network I/O is attempted.
	SupportedPairs() []string

	// Name identifies the source, used as the raw_trades.source column.
	Name() string
}
