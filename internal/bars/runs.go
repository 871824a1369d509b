package bars

import (
	"fmt"

	"github.com/shopspring/decimal"

	"arcana/internal/model"
)

// RunBuilder implements the trb/vrb/drb families: tracks the current run
// of same-signed trades within the active bar, emitting once the maximum
// run magnitude seen so far crosses the EWMA-estimated expected run.
type RunBuilder struct {
	family       string // "trb", "vrb", or "drb"
	window       int
	unit         unitFunc
	source, pair string

	acc    model.Accumulator
	sign   signState
	runSig int // sign of the current run
	runMag decimal.Decimal
	maxRun decimal.Decimal
	ewma   ewmaState
}

// NewRunBuilder constructs a run builder. priorBar is the Store.LastBar
// result for this (bar_type, source, pair), or nil for a cold start.
func NewRunBuilder(family string, window int, unit unitFunc, source, pair string, priorBar *model.Bar) *RunBuilder {
	b := &RunBuilder{
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

func (b *RunBuilder) BarType() string { return fmt.Sprintf("%s_%d", b.family, b.window) }

func (b *RunBuilder) ProcessTrade(t model.Trade) (*model.Bar, bool) {
	b.acc.Add(t)
	s := b.sign.next(t)
	unit := b.unit(t)

	if b.runSig == s {
		b.runMag = b.runMag.Add(unit)
	} else {
		b.runSig = s
		b.runMag = unit
	}
	if b.runMag.GreaterThan(b.maxRun) {
		b.maxRun = b.runMag
	}

	threshold := b.ewma.threshold()
	var fire bool
	if b.ewma.barCount == 0 {
		fire = b.maxRun.GreaterThan(decimal.Zero)
	} else {
		fire = b.maxRun.GreaterThanOrEqual(threshold)
	}
	if !fire {
		return nil, false
	}

	b.ewma.update(b.maxRun)
	meta := b.ewma.metadata(b.sign.prevSign)
	bar := b.acc.EmitBar(b.BarType(), b.source, b.pair, meta)
	b.acc.Reset()
	b.runSig = 0
	b.runMag = decimal.Zero
	b.maxRun = decimal.Zero
	return &bar, true
}

func (b *RunBuilder) ProcessTrades(trades []model.Trade) []model.Bar {
	return processTrades(b, trades)
}

func (b *RunBuilder) Flush() (*model.Bar, bool) {
	if b.acc.Empty() {
		return nil, false
	}
	meta := b.ewma.metadata(b.sign.prevSign)
	bar := b.acc.EmitBar(b.BarType(), b.source, b.pair, meta)
	b.acc.Reset()
	b.runSig = 0
	b.runMag = decimal.Zero
	b.maxRun = decimal.Zero
	return &bar, true
}
