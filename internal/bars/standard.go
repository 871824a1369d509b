package bars

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"arcana/internal/model"
)

// TickBuilder emits a bar once the accumulator has seen N trades.
type TickBuilder struct {
	N            int64
	Source, Pair string
	acc          model.Accumulator
}

func NewTickBuilder(n int64, source, pair string) *TickBuilder {
	return &TickBuilder{N: n, Source: source, Pair: pair}
}

func (b *TickBuilder) BarType() string { return fmt.Sprintf("tick_%d", b.N) }

func (b *TickBuilder) ProcessTrade(t model.Trade) (*model.Bar, bool) {
	b.acc.Add(t)
	if b.acc.TickCount >= b.N {
		bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
		b.acc.Reset()
		return &bar, true
	}
	return nil, false
}

func (b *TickBuilder) ProcessTrades(trades []model.Trade) []model.Bar {
	return processTrades(b, trades)
}

func (b *TickBuilder) Flush() (*model.Bar, bool) {
	if b.acc.Empty() {
		return nil, false
	}
	bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
	b.acc.Reset()
	return &bar, true
}

// VolumeBuilder emits a bar once cumulative base-currency volume reaches V.
type VolumeBuilder struct {
	V            decimal.Decimal
	Source, Pair string
	acc          model.Accumulator
}

func NewVolumeBuilder(v decimal.Decimal, source, pair string) *VolumeBuilder {
	return &VolumeBuilder{V: v, Source: source, Pair: pair}
}

func (b *VolumeBuilder) BarType() string { return fmt.Sprintf("volume_%s", b.V.String()) }

func (b *VolumeBuilder) ProcessTrade(t model.Trade) (*model.Bar, bool) {
	b.acc.Add(t)
	if b.acc.Volume.GreaterThanOrEqual(b.V) {
		bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
		b.acc.Reset()
		return &bar, true
	}
	return nil, false
}

func (b *VolumeBuilder) ProcessTrades(trades []model.Trade) []model.Bar {
	return processTrades(b, trades)
}

func (b *VolumeBuilder) Flush() (*model.Bar, bool) {
	if b.acc.Empty() {
		return nil, false
	}
	bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
	b.acc.Reset()
	return &bar, true
}

// DollarBuilder emits a bar once cumulative quote-currency dollar volume
// reaches D.
type DollarBuilder struct {
	D            decimal.Decimal
	Source, Pair string
	acc          model.Accumulator
}

func NewDollarBuilder(d decimal.Decimal, source, pair string) *DollarBuilder {
	return &DollarBuilder{D: d, Source: source, Pair: pair}
}

func (b *DollarBuilder) BarType() string { return fmt.Sprintf("dollar_%s", b.D.String()) }

func (b *DollarBuilder) ProcessTrade(t model.Trade) (*model.Bar, bool) {
	b.acc.Add(t)
	if b.acc.DollarVolume.GreaterThanOrEqual(b.D) {
		bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
		b.acc.Reset()
		return &bar, true
	}
	return nil, false
}

func (b *DollarBuilder) ProcessTrades(trades []model.Trade) []model.Bar {
	return processTrades(b, trades)
}

func (b *DollarBuilder) Flush() (*model.Bar, bool) {
	if b.acc.Empty() {
		return nil, false
	}
	bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
	b.acc.Reset()
	return &bar, true
}

// TimeBuilder emits a bar whenever a trade's epoch-anchored bucket
// floor(ts/period) advances past the accumulator's current bucket. Empty
// clock intervals produce no bars: the bucket only exists once a trade
// anchors it.
type TimeBuilder struct {
	Period       time.Duration
	Spec         string // e.g. "30s", "5m", "1h", "1d" — used for BarType
	Source, Pair string
	acc          model.Accumulator
}

func NewTimeBuilder(period time.Duration, spec, source, pair string) *TimeBuilder {
	return &TimeBuilder{Period: period, Spec: spec, Source: source, Pair: pair}
}

func (b *TimeBuilder) BarType() string { return fmt.Sprintf("time_%s", b.Spec) }

func (b *TimeBuilder) bucket(ts time.Time) int64 {
	return ts.UnixNano() / b.Period.Nanoseconds()
}

func (b *TimeBuilder) ProcessTrade(t model.Trade) (*model.Bar, bool) {
	if b.acc.Empty() {
		b.acc.Add(t)
		return nil, false
	}
	if b.bucket(t.Timestamp) > b.bucket(b.acc.TimeStart) {
		bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
		b.acc.Reset()
		b.acc.Add(t)
		return &bar, true
	}
	b.acc.Add(t)
	return nil, false
}

func (b *TimeBuilder) ProcessTrades(trades []model.Trade) []model.Bar {
	return processTrades(b, trades)
}

func (b *TimeBuilder) Flush() (*model.Bar, bool) {
	if b.acc.Empty() {
		return nil, false
	}
	bar := b.acc.EmitBar(b.BarType(), b.Source, b.Pair, nil)
	b.acc.Reset()
	return &bar, true
}
