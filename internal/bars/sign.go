package bars

import (
	"github.com/shopspring/decimal"

	"arcana/internal/model"
)

// signState tracks the previous trade's price and inferred sign so the
// tick rule can be applied when a trade's side is unknown.
type signState struct {
	havePrev  bool
	prevPrice decimal.Decimal
	prevSign  int // +1 or -1; initial carry is +1 per spec
}

func newSignState() signState {
	return signState{prevSign: 1}
}

// next computes sign(trade) and advances the carried state.
func (s *signState) next(t model.Trade) int {
	var sign int
	switch t.Side {
	case model.Buy:
		sign = 1
	case model.Sell:
		sign = -1
	default:
		switch {
		case !s.havePrev:
			sign = s.prevSign
		case t.Price.GreaterThan(s.prevPrice):
			sign = 1
		case t.Price.LessThan(s.prevPrice):
			sign = -1
		default:
			sign = s.prevSign
		}
	}
	s.prevPrice = t.Price
	s.prevSign = sign
	s.havePrev = true
	return sign
}
