// Package bars implements the ten sampling-bar families built on top of
// model.Accumulator: four fixed-threshold families (tick, volume, dollar,
// time) and six adaptive information-driven families (tib, vib, dib, trb,
// vrb, drb) whose emission thresholds track an EWMA of prior bar
// statistics.
package bars

import (
	"arcana/internal/model"
)

// Builder is the common protocol every bar family implements.
//
// Flush forces emission of a partial in-progress bar and must only be
// called at end-of-data or graceful shutdown — never between batches of
// the same logical trade stream, since a premature flush yields a
// below-threshold bar and corrupts the EWMA series of adaptive families.
type Builder interface {
	// ProcessTrade folds trade into the accumulator and returns the
	// emitted bar if the family's emission predicate fires.
	ProcessTrade(trade model.Trade) (*model.Bar, bool)
	// ProcessTrades folds a sequence of trades, returning every bar
	// emitted along the way in order.
	ProcessTrades(trades []model.Trade) []model.Bar
	// Flush force-emits a partial bar, or returns false if the
	// accumulator is empty.
	Flush() (*model.Bar, bool)
	// BarType is the family's table-naming identifier, e.g. "tick_500".
	BarType() string
}

// processTrades is the shared fold loop used by every concrete builder.
func processTrades(b Builder, trades []model.Trade) []model.Bar {
	var emitted []model.Bar
	for _, t := range trades {
		if bar, ok := b.ProcessTrade(t); ok {
			emitted = append(emitted, *bar)
		}
	}
	return emitted
}
