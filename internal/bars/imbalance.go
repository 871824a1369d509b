package bars

import (
	"fmt"

	"github.com/shopspring/decimal"

	"arcana/internal/model"
)

// unitFunc returns the per-trade unit magnitude for an imbalance/run
// family: 1 for tick-based families, size for volume-based, price*size
// for dollar-based.
type unitFunc func(model.Trade) decimal.Decimal

func unitTick(model.Trade) decimal.Decimal    { return decimal.NewFromInt(1) }
func unitVolume(t model.Trade) decimal.Decimal { return t.Size }
func unitDollar(t model.Trade) decimal.Decimal { return t.DollarValue() }

// ImbalanceBuilder implements the tib/vib/dib families: a running signed
// quantity theta accumulates sign(trade)*unit(trade) within the active
// bar, emitting once |theta| crosses the EWMA-estimated expected
// imbalance.
type ImbalanceBuilder struct {
	family       string // "tib", "vib", or "dib"
	window       int
	unit         unitFunc
	source, pair string

	acc   model.Accumulator
	sign  signState
	theta decimal.Decimal
	ewma  ewmaState
}

// NewImbalanceBuilder constructs an imbalance builder. priorBar is the
// Store.LastBar result for this (bar_type, source, pair), or nil for a
// cold start.
func NewImbalanceBuilder(family string, window int, unit unitFunc, source, pair string, priorBar *model.Bar) *ImbalanceBuilder {
	b := &ImbalanceBuilder{
		family: family,
		window: window,
		unit:   unit,
		source: source,
		pair:   pair,
		sign:   newSignState(),
		ewma:   newEWMAState(window),
	}
	if priorBar != nil {
		b.ewma.seedFrom(priorBar.Metadata)
		if v, ok := priorBar.Metadata[model.MetaLastSign]; ok {
			if n, ok := toInt64(v); ok && n != 0 {
				b.sign.prevSign = int(n)
			}
		}
	}
	return b
}

func (b *ImbalanceBuilder) BarType() string { return fmt.Sprintf("%s_%d", b.family, b.window) }

func (b *ImbalanceBuilder) ProcessTrade(t model.Trade) (*model.Bar, bool) {
	b.acc.Add(t)
	s := b.sign.next(t)
	b.theta = b.theta.Add(decimal.NewFromInt(int64(s)).Mul(b.unit(t)))

	absTheta := b.theta.Abs()
	threshold := b.ewma.threshold()
	var fire bool
	if b.ewma.barCount == 0 {
		// Bootstrap: emit as soon as any nonzero imbalance has formed.
		fire = absTheta.GreaterThan(decimal.Zero)
	} else {
		fire = absTheta.GreaterThanOrEqual(threshold)
	}
	if !fire {
		return nil, false
	}

	b.ewma.update(absTheta)
	meta := b.ewma.metadata(b.sign.prevSign)
	bar := b.acc.EmitBar(b.BarType(), b.source, b.pair, meta)
	b.acc.Reset()
	b.theta = decimal.Zero
	return &bar, true
}

func (b *ImbalanceBuilder) ProcessTrades(trades []model.Trade) []model.Bar {
	return processTrades(b, trades)
}

func (b *ImbalanceBuilder) Flush() (*model.Bar, bool) {
	if b.acc.Empty() {
		return nil, false
	}
	// A forced flush does not update EWMA state: the bar is below
	// threshold by construction and must not corrupt the series.
	meta := b.ewma.metadata(b.sign.prevSign)
	bar := b.acc.EmitBar(b.BarType(), b.source, b.pair, meta)
	b.acc.Reset()
	b.theta = decimal.Zero
	return &bar, true
}
