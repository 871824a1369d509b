package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is an immutable, statistically sampled aggregate over a contiguous
// run of trades. (BarType, Source, Pair, TimeStart) is the storage
// uniqueness key.
//
// Metadata carries adaptive-family EWMA state ({ewma_expected, ewma_window,
// ewma_bar_count, last_trade_sign}) for tib/vib/dib/trb/vrb/drb bars; it is
// nil for the four fixed-threshold families.
type Bar struct {
	TimeStart    time.Time
	TimeEnd      time.Time
	BarType      string
	Source       string
	Pair         string
	Open         decimal.Decimal
	High         decimal.Decimal
	Low          decimal.Decimal
	Close        decimal.Decimal
	VWAP         decimal.Decimal
	Volume       decimal.Decimal
	DollarVolume decimal.Decimal
	TickCount    int64
	Metadata     map[string]any
}

// TimeSpan returns TimeEnd-TimeStart.
func (b Bar) TimeSpan() time.Duration {
	return b.TimeEnd.Sub(b.TimeStart)
}

// EWMA metadata keys, shared by all six adaptive bar families.
const (
	MetaEWMAExpected = "ewma_expected"
	MetaEWMAWindow   = "ewma_window"
	MetaEWMABarCount = "ewma_bar_count"
	MetaLastSign     = "last_trade_sign"
)
