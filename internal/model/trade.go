// Package model defines the core data types shared by ingestion, storage,
// and bar construction: the trade record, the mutable accumulator that
// folds trades into a candidate bar, and the immutable bar a builder emits.
//
// All monetary quantities use decimal.Decimal end to end — from wire parsing
// through storage — to keep the trade-to-bar path free of floating-point
// drift, per the no-float invariant of the pipeline this package backs.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the aggressor side of a trade as reported by the exchange.
type Side int

const (
	// UnknownSide means the exchange did not report an aggressor side;
	// sign is inferred downstream via the tick rule.
	UnknownSide Side = iota
	Buy
	Sell
)

// String renders Side for logging and metadata.
func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide parses an exchange-reported side string (case-insensitive).
func ParseSide(s string) Side {
	switch strings.ToLower(s) {
	case "buy":
		return Buy
	case "sell":
		return Sell
	default:
		return UnknownSide
	}
}

// Trade is an immutable, exchange-sourced trade record. (source, trade_id)
// is globally unique and is the deduplication key across ingestion and
// storage.
type Trade struct {
	Timestamp time.Time
	TradeID   string
	Source    string
	Pair      string
	Price     decimal.Decimal
	Size      decimal.Decimal
	Side      Side
}

// DollarValue returns price*size, the quote-currency notional of the trade.
func (t Trade) DollarValue() decimal.Decimal {
	return t.Price.Mul(t.Size)
}
