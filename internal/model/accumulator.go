package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accumulator is mutable, in-memory state for the bar currently being
// built. It is empty iff TickCount == 0. Non-empty invariants:
// Low <= Open,Close <= High; Low <= VWAP <= High; TimeStart <= TimeEnd;
// Volume > 0.
type Accumulator struct {
	TickCount     int64
	Volume        decimal.Decimal
	DollarVolume  decimal.Decimal
	VWAPNumerator decimal.Decimal
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	Close         decimal.Decimal
	TimeStart     time.Time
	TimeEnd       time.Time
}

// Empty reports whether no trade has been folded in since the last reset.
func (a *Accumulator) Empty() bool {
	return a.TickCount == 0
}

// Add folds a trade into the accumulator.
func (a *Accumulator) Add(t Trade) {
	if a.Empty() {
		a.Open = t.Price
		a.High = t.Price
		a.Low = t.Price
		a.TimeStart = t.Timestamp
	} else {
		if t.Price.GreaterThan(a.High) {
			a.High = t.Price
		}
		if t.Price.LessThan(a.Low) {
			a.Low = t.Price
		}
	}
	a.Close = t.Price
	a.TimeEnd = t.Timestamp

	dollar := t.DollarValue()
	a.Volume = a.Volume.Add(t.Size)
	a.DollarVolume = a.DollarVolume.Add(dollar)
	a.VWAPNumerator = a.VWAPNumerator.Add(dollar)
	a.TickCount++
}

// VWAP returns the volume-weighted average price of the accumulated
// trades. Only meaningful when non-empty.
func (a *Accumulator) VWAP() decimal.Decimal {
	if a.Volume.IsZero() {
		return decimal.Zero
	}
	return a.VWAPNumerator.Div(a.Volume)
}

// EmitBar produces an immutable Bar snapshot of the current state. The
// caller is responsible for calling Reset afterwards; EmitBar does not
// mutate the accumulator.
func (a *Accumulator) EmitBar(barType, source, pair string, extra map[string]any) Bar {
	return Bar{
		TimeStart:    a.TimeStart,
		TimeEnd:      a.TimeEnd,
		BarType:      barType,
		Source:       source,
		Pair:         pair,
		Open:         a.Open,
		High:         a.High,
		Low:          a.Low,
		Close:        a.Close,
		VWAP:         a.VWAP(),
		Volume:       a.Volume,
		DollarVolume: a.DollarVolume,
		TickCount:    a.TickCount,
		Metadata:     extra,
	}
}

// Reset clears the accumulator back to empty.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
